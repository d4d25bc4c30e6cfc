// internal/models/signature_link.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// SignatureLink is the token-based capability that lets a client reach a
// signing or questionnaire session without authentication. A sale carries at
// most one effectively usable link per recipient type; regeneration bumps
// Version so concurrent writers cannot silently overwrite each other.
type SignatureLink struct {
	BaseModel
	SaleID             uuid.UUID     `json:"sale_id" gorm:"type:uuid;not null;index"`
	Token              string        `json:"token" gorm:"size:64;not null;uniqueIndex"`
	RecipientType      RecipientType `json:"recipient_type" gorm:"type:varchar(20);default:'titular';index"`
	RecipientEmail     string        `json:"recipient_email" gorm:"size:255"`
	RecipientPhone     string        `json:"recipient_phone" gorm:"size:50"`
	Status             LinkStatus    `json:"status" gorm:"type:varchar(20);default:'pendiente';index"`
	ExpiresAt          time.Time     `json:"expires_at" gorm:"not null;index"`
	AccessCount        int           `json:"access_count" gorm:"default:0"`
	Version            int           `json:"version" gorm:"default:1"`
	ProviderDocumentID *string       `json:"provider_document_id,omitempty" gorm:"size:255"`
	SignedAt           *time.Time    `json:"signed_at,omitempty"`
	RevokedReason      string        `json:"revoked_reason,omitempty" gorm:"type:text"`
	ErrorMessage       string        `json:"error_message,omitempty" gorm:"type:text"`

	// Relationships
	Sale Sale `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
}

// Expired reports whether the link is past its expiry at the given instant.
func (l *SignatureLink) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// Usable reports whether the link can still open a signing session.
func (l *SignatureLink) Usable(now time.Time) bool {
	if l.Status == LinkStatusRevocado || l.Status == LinkStatusCompletado {
		return false
	}
	return !l.Expired(now)
}
