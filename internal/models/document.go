// internal/models/document.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	BaseModel
	SaleID      uuid.UUID      `json:"sale_id" gorm:"type:uuid;not null;index"`
	TemplateID  *uuid.UUID     `json:"template_id" gorm:"type:uuid;index"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Status      DocumentStatus `json:"status" gorm:"type:varchar(20);default:'pendiente';index"`
	Content     string         `json:"content,omitempty" gorm:"type:text"`
	FileURL     string         `json:"file_url,omitempty" gorm:"type:text"`
	GeneratedAt *time.Time     `json:"generated_at,omitempty"`

	// Relationships
	Sale     Sale      `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
	Template *Template `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
}

// DocumentPackage groups a sale's documents for one signing session. Its
// aggregate status is derived from item documents, never stored.
type DocumentPackage struct {
	BaseModel
	SaleID uuid.UUID `json:"sale_id" gorm:"type:uuid;not null;index"`
	Name   string    `json:"name" gorm:"size:255;not null"`

	// Relationships
	Sale  Sale                  `json:"sale,omitempty" gorm:"foreignKey:SaleID"`
	Items []DocumentPackageItem `json:"items,omitempty" gorm:"foreignKey:PackageID"`
}

type DocumentPackageItem struct {
	BaseModel
	PackageID  uuid.UUID `json:"package_id" gorm:"type:uuid;not null;index"`
	DocumentID uuid.UUID `json:"document_id" gorm:"type:uuid;not null;index"`
	Position   int       `json:"position" gorm:"not null;default:0"`
	Required   bool      `json:"required" gorm:"default:true"`

	// Relationships
	Document Document `json:"document,omitempty" gorm:"foreignKey:DocumentID"`
}
