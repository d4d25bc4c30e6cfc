// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleVendedor UserRole = "vendedor"
	UserRoleAuditor  UserRole = "auditor"
)

type SaleStatus string

const (
	SaleStatusBorrador              SaleStatus = "borrador"
	SaleStatusPreparandoDocumentos  SaleStatus = "preparando_documentos"
	SaleStatusEsperandoDDJJ         SaleStatus = "esperando_ddjj"
	SaleStatusEnRevision            SaleStatus = "en_revision"
	SaleStatusAprobadoParaTemplates SaleStatus = "aprobado_para_templates"
	SaleStatusListoParaEnviar       SaleStatus = "listo_para_enviar"
	SaleStatusEnviado               SaleStatus = "enviado"
	SaleStatusFirmado               SaleStatus = "firmado"
	SaleStatusCompletado            SaleStatus = "completado"
	SaleStatusRechazado             SaleStatus = "rechazado"
	SaleStatusCancelado             SaleStatus = "cancelado"
)

type LinkStatus string

const (
	LinkStatusPendiente   LinkStatus = "pendiente"
	LinkStatusVisualizado LinkStatus = "visualizado"
	LinkStatusCompletado  LinkStatus = "completado"
	LinkStatusRevocado    LinkStatus = "revocado"
)

type RecipientType string

const (
	RecipientTypeTitular   RecipientType = "titular"
	RecipientTypeAdherente RecipientType = "adherente"
)

type DocumentStatus string

const (
	DocumentStatusPendiente DocumentStatus = "pendiente"
	DocumentStatusGenerado  DocumentStatus = "generado"
	DocumentStatusFirmado   DocumentStatus = "firmado"
)

type TraceAction string

const (
	TraceVentaCreada            TraceAction = "venta_creada"
	TraceDocumentosCargados     TraceAction = "documentos_cargados"
	TraceDDJJCompletada         TraceAction = "ddjj_completada"
	TraceEnviadoAAuditoria      TraceAction = "enviado_a_auditoria"
	TraceAprobado               TraceAction = "aprobado"
	TraceRechazado              TraceAction = "rechazado"
	TraceTemplatesSeleccionados TraceAction = "templates_seleccionados"
	TraceDocumentosGenerados    TraceAction = "documentos_generados"
	TraceEnlaceFirmaCreado      TraceAction = "enlace_firma_creado"
	TraceFirmaCompletada        TraceAction = "firma_completada"
	TraceVentaCompletada        TraceAction = "venta_completada"
	TraceCambioEstado           TraceAction = "cambio_estado"
	TraceEstadoActualizado      TraceAction = "estado_actualizado"
)

type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelSMS      NotificationChannel = "sms"
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

type NotificationStatus string

const (
	NotificationStatusEnviado NotificationStatus = "enviado"
	NotificationStatusFallido NotificationStatus = "fallido"
)
