// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAdminAccessDenied      = "auth.admin_access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Sales
	KeySaleCreated           = "sale.created"
	KeySaleNotFound          = "sale.not_found"
	KeySaleStatusUpdated     = "sale.status_updated"
	KeySaleInvalidTransition = "sale.invalid_transition"
	KeySaleCancelled         = "sale.cancelled"
	KeySaleApproved          = "sale.approved"
	KeySaleRejected          = "sale.rejected"

	// Signature links
	KeyLinkCreated         = "link.created"
	KeyLinkNotFound        = "link.not_found"
	KeyLinkExpired         = "link.expired"
	KeyLinkRevoked         = "link.revoked"
	KeyLinkResent          = "link.resent"
	KeyLinkDDJJPending     = "link.ddjj_pending"
	KeySignatureCompleted  = "link.signature_completed"
	KeyQuestionnaireSaved  = "questionnaire.saved"
	KeyQuestionnaireNeeded = "questionnaire.needed"

	// Documents
	KeyPackageCreated    = "package.created"
	KeyPackageDeleted    = "package.deleted"
	KeyPackageNotFound   = "package.not_found"
	KeyDocumentNotFound  = "document.not_found"
	KeyDocumentGenerated = "document.generated"
)
