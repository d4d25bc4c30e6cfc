// internal/models/sale.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Sale struct {
	BaseModel
	CompanyID  uuid.UUID  `json:"company_id" gorm:"type:uuid;not null;index"`
	ClientID   *uuid.UUID `json:"client_id" gorm:"type:uuid;index"`
	PlanID     *uuid.UUID `json:"plan_id" gorm:"type:uuid;index"`
	TemplateID *uuid.UUID `json:"template_id" gorm:"type:uuid;index"`
	SellerID   *uuid.UUID `json:"seller_id" gorm:"type:uuid;index"`
	Status     SaleStatus `json:"status" gorm:"type:varchar(30);default:'borrador';index"`
	Notes      string     `json:"notes,omitempty" gorm:"type:text"`

	// Legacy single-token fields kept for backward compatibility. The
	// signature_links table is the source of truth; these mirror the
	// titular link only.
	SignatureToken     *string    `json:"signature_token,omitempty" gorm:"size:64;index"`
	SignatureExpiresAt *time.Time `json:"signature_expires_at,omitempty"`

	// Relationships
	Company        Company         `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Client         *Client         `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Plan           *Plan           `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	Template       *Template       `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
	Seller         *User           `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Documents      []Document      `json:"documents,omitempty" gorm:"foreignKey:SaleID"`
	SignatureLinks []SignatureLink `json:"signature_links,omitempty" gorm:"foreignKey:SaleID"`
	Traces         []ProcessTrace  `json:"traces,omitempty" gorm:"foreignKey:SaleID"`
}

// ProcessTrace is the append-only audit trail. Rows are only ever inserted,
// in the same transaction as the state change they record, so the trail and
// sales.status cannot drift.
type ProcessTrace struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SaleID    uuid.UUID   `json:"sale_id" gorm:"type:uuid;not null;index"`
	Action    TraceAction `json:"action" gorm:"type:varchar(40);not null;index"`
	Details   string      `json:"details,omitempty" gorm:"type:text"`
	Metadata  JSONB       `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedBy *uuid.UUID  `json:"created_by" gorm:"type:uuid"`
	CreatedAt time.Time   `json:"created_at"`

	// Relationships
	Author *User `json:"author,omitempty" gorm:"foreignKey:CreatedBy"`
}
