// internal/models/catalog.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Client struct {
	BaseModel
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	FirstName string    `json:"first_name" gorm:"size:100;not null"`
	LastName  string    `json:"last_name" gorm:"size:100;not null"`
	Email     string    `json:"email" gorm:"size:255;index"`
	Phone     string    `json:"phone" gorm:"size:50"`
	DNI       string    `json:"dni" gorm:"size:30;index"`

	// Relationships
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Plan struct {
	BaseModel
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"type:decimal(12,2);default:0"`
	Currency    string    `json:"currency" gorm:"size:10;default:'PYG'"`
	Active      bool      `json:"active" gorm:"default:true"`
}

// Template holds both the questionnaire definition (Questions) and the
// document body (Content) with {{placeholder}} markup resolved at generation.
type Template struct {
	BaseModel
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Content     string    `json:"content" gorm:"type:text"`
	Questions   JSONB     `json:"questions" gorm:"type:jsonb"`
	// Placeholders lists the {{field}} names Content expects, so document
	// generation can report unresolved ones.
	Placeholders pq.StringArray `json:"placeholders" gorm:"type:text[]"`
	Active       bool           `json:"active" gorm:"default:true"`
}

// TemplateResponse is the client's completed questionnaire (DDJJ). Its
// existence for a sale's client+template is what unlocks signature issuance.
type TemplateResponse struct {
	BaseModel
	TemplateID uuid.UUID  `json:"template_id" gorm:"type:uuid;not null;index"`
	ClientID   uuid.UUID  `json:"client_id" gorm:"type:uuid;not null;index"`
	SaleID     *uuid.UUID `json:"sale_id" gorm:"type:uuid;index"`
	Responses  JSONB      `json:"responses" gorm:"type:jsonb;not null"`

	// Relationships
	Template Template `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
	Client   Client   `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}
