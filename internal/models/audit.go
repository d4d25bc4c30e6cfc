// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
)

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// NotificationLog records every outbound dispatch attempt, including
// failures. Delivery problems never roll back the business write that
// triggered them; the error lands here instead.
type NotificationLog struct {
	BaseModel
	SaleID       *uuid.UUID          `json:"sale_id" gorm:"type:uuid;index"`
	CompanyID    *uuid.UUID          `json:"company_id" gorm:"type:uuid;index"`
	Channel      NotificationChannel `json:"channel" gorm:"type:varchar(20);not null;index"`
	Recipient    string              `json:"recipient" gorm:"size:255;not null"`
	TemplateName string              `json:"template_name" gorm:"size:100;not null"`
	TemplateData JSONB               `json:"template_data" gorm:"type:jsonb"`
	Status       NotificationStatus  `json:"status" gorm:"type:varchar(20);not null;index"`
	ErrorMessage string              `json:"error_message,omitempty" gorm:"type:text"`
}
