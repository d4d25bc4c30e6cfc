// internal/handlers/public.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/i18n"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/services"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/utils"
)

// PublicHandler serves the unauthenticated, token-addressed endpoints the
// signing client uses. The token itself is the whole credential; there is no
// session and no account on this side.
type PublicHandler struct {
	signatureService *services.SignatureService
	saleService      *services.SaleService
}

func NewPublicHandler(signatureService *services.SignatureService, saleService *services.SaleService) *PublicHandler {
	return &PublicHandler{
		signatureService: signatureService,
		saleService:      saleService,
	}
}

// GET /firmar/:token
// GET /signature/:token
func (h *PublicHandler) ResolveLink(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	link, err := h.signatureService.Resolve(token)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"link": gin.H{
			"recipient_type":       link.RecipientType,
			"status":               link.Status,
			"expires_at":           link.ExpiresAt,
			"provider_document_id": link.ProviderDocumentID,
		},
		"sale": gin.H{
			"id":        link.Sale.ID,
			"status":    link.Sale.Status,
			"client":    link.Sale.Client,
			"plan":      link.Sale.Plan,
			"documents": link.Sale.Documents,
		},
		"steps": h.saleService.StepStates(&link.Sale),
	})
}

// GET /questionnaire/:token
func (h *PublicHandler) GetQuestionnaire(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	link, err := h.signatureService.Resolve(c.Param("token"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	if link.Sale.Template == nil {
		utils.NotFoundResponse(c, "document")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyQuestionnaireNeeded),
		"questions": link.Sale.Template.Questions,
		"sale_id":   link.Sale.ID,
	})
}

// POST /questionnaire/:token
func (h *PublicHandler) SubmitQuestionnaire(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	link, err := h.signatureService.Resolve(c.Param("token"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	var req services.SubmitQuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	response, err := h.saleService.SubmitQuestionnaire(&link.Sale, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyQuestionnaireSaved),
		"response": response,
	})
}
