// internal/services/signature_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/apperrors"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/utils"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/workflow"
)

// SignatureService owns the signature-link lifecycle: issue, resolve,
// complete, revoke, resend. The links table is canonical; the legacy
// single-token columns on sales mirror the titular link for older readers
// and are never consulted as source of truth.
type SignatureService struct {
	db                  *gorm.DB
	config              *config.Config
	saleService         *SaleService
	notificationService *NotificationService
	esignService        *ESignService
}

type IssueLinkRequest struct {
	RecipientType  models.RecipientType `json:"recipient_type" validate:"omitempty,oneof=titular adherente"`
	RecipientEmail string               `json:"recipient_email" validate:"omitempty,email"`
	RecipientPhone string               `json:"recipient_phone,omitempty"`
	ExpirationDays int                  `json:"expiration_days,omitempty" validate:"omitempty,min=1,max=90"`
}

type ResendLinkRequest struct {
	Version int `json:"version" validate:"required,min=1"`
}

type RevokeLinkRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func NewSignatureService(db *gorm.DB, cfg *config.Config, saleService *SaleService, notificationService *NotificationService, esignService *ESignService) *SignatureService {
	return &SignatureService{
		db:                  db,
		config:              cfg,
		saleService:         saleService,
		notificationService: notificationService,
		esignService:        esignService,
	}
}

// Issue creates a new signature link for one recipient of the sale. The
// questionnaire gate is checked first: a sale with a template but no DDJJ
// response cannot receive a link.
func (s *SignatureService) Issue(saleID, companyID uuid.UUID, actorID *uuid.UUID, req *IssueLinkRequest) (*models.SignatureLink, error) {
	sale, err := s.saleService.Get(saleID, companyID)
	if err != nil {
		return nil, err
	}

	ready, err := s.saleService.ReadyForSignature(sale)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, apperrors.New(apperrors.KindPreconditionFailed,
			"el cliente debe completar la declaración jurada antes de generar el enlace de firma")
	}

	recipientType := req.RecipientType
	if recipientType == "" {
		recipientType = models.RecipientTypeTitular
	}
	recipientEmail := req.RecipientEmail
	recipientPhone := req.RecipientPhone
	if recipientEmail == "" && sale.Client != nil {
		recipientEmail = sale.Client.Email
	}
	if recipientPhone == "" && sale.Client != nil {
		recipientPhone = sale.Client.Phone
	}

	days := req.ExpirationDays
	if days <= 0 {
		days = s.config.Signature.DefaultExpirationDays
	}
	expiresAt := time.Now().Add(time.Duration(days) * 24 * time.Hour)

	var link *models.SignatureLink
	err = s.db.Transaction(func(tx *gorm.DB) error {
		created, err := s.createLinkRow(tx, sale.ID, recipientType, recipientEmail, recipientPhone, expiresAt)
		if err != nil {
			return err
		}
		link = created

		if recipientType == models.RecipientTypeTitular {
			if err := s.syncLegacyToken(tx, sale.ID, link.Token, link.ExpiresAt); err != nil {
				return err
			}
		}

		if workflow.CanTransition(sale.Status, models.SaleStatusEnviado) {
			if err := tx.Model(&models.Sale{}).Where("id = ?", sale.ID).
				Update("status", models.SaleStatusEnviado).Error; err != nil {
				return fmt.Errorf("failed to advance sale: %w", err)
			}
			sale.Status = models.SaleStatusEnviado
		}

		return appendTrace(tx, sale.ID, models.TraceEnlaceFirmaCreado,
			fmt.Sprintf("Enlace de firma generado para %s", recipientType), actorID,
			models.JSONB{"recipient_type": string(recipientType), "expires_at": expiresAt})
	})
	if err != nil {
		return nil, err
	}

	// Provider registration and delivery are decoupled from persistence: a
	// failure on either leaves the link in place with the error attached.
	s.registerWithProvider(sale, link)

	if dispatchErr := s.notifySignatureRequest(sale, link, "solicitud_firma"); dispatchErr != nil {
		link.ErrorMessage = dispatchErr.Error()
		s.db.Model(link).Update("error_message", link.ErrorMessage)
	}

	return link, nil
}

// registerWithProvider hands the latest generated document to the e-signature
// provider and stores the returned id so the completion webhook can be tied
// back to this link. Sales without generated documents skip registration.
func (s *SignatureService) registerWithProvider(sale *models.Sale, link *models.SignatureLink) {
	if s.esignService == nil || len(sale.Documents) == 0 {
		return
	}

	doc := sale.Documents[len(sale.Documents)-1]
	recipientName := "Firmante"
	if sale.Client != nil {
		recipientName = sale.Client.FullName()
	}

	result, err := s.esignService.CreateDocument(context.Background(), doc.Name, []byte(doc.Content),
		[]ESignRecipient{{Name: recipientName, Email: link.RecipientEmail}})
	if err != nil {
		logrus.WithError(err).WithField("link_id", link.ID).Error("Failed to register document with e-sign provider")
		link.ErrorMessage = err.Error()
		s.db.Model(link).Update("error_message", link.ErrorMessage)
		return
	}

	link.ProviderDocumentID = &result.DocumentID
	s.db.Model(link).Update("provider_document_id", result.DocumentID)
}

// Resolve is the only entry point an unauthenticated client uses. It looks
// the token up, rejects expired or revoked ones distinctly, counts the
// access and marks first view.
func (s *SignatureService) Resolve(token string) (*models.SignatureLink, error) {
	var link models.SignatureLink
	err := s.db.Where("token = ?", token).
		Preload("Sale").Preload("Sale.Client").Preload("Sale.Plan").
		Preload("Sale.Template").Preload("Sale.Documents").
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "signature link not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	now := time.Now()
	if !link.Usable(now) {
		if link.Status == models.LinkStatusRevocado {
			return nil, apperrors.New(apperrors.KindNotFound, "signature link was revoked")
		}
		if link.Expired(now) {
			return nil, apperrors.New(apperrors.KindExpired, "signature link has expired")
		}
		// Completed links stay resolvable so the signed state can be shown.
	}

	updates := map[string]interface{}{
		"access_count": gorm.Expr("access_count + 1"),
	}
	if link.Status == models.LinkStatusPendiente {
		updates["status"] = models.LinkStatusVisualizado
		link.Status = models.LinkStatusVisualizado
	}
	if err := s.db.Model(&models.SignatureLink{}).Where("id = ?", link.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to record link access: %w", err)
	}
	link.AccessCount++

	return &link, nil
}

// Complete is invoked by the e-signature provider callback. It closes the
// link and advances the owning sale toward firmado/completado.
func (s *SignatureService) Complete(token string, evidence map[string]interface{}) (*models.SignatureLink, error) {
	var link models.SignatureLink
	err := s.db.Where("token = ?", token).Preload("Sale").First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "signature link not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if link.Status == models.LinkStatusCompletado {
		// Provider callbacks may repeat; completion is idempotent.
		return &link, nil
	}
	if link.Status == models.LinkStatusRevocado {
		return nil, apperrors.New(apperrors.KindPreconditionFailed, "signature link was revoked")
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":    models.LinkStatusCompletado,
			"signed_at": now,
		}
		if pid, ok := evidence["provider_document_id"].(string); ok && pid != "" && link.ProviderDocumentID == nil {
			updates["provider_document_id"] = pid
			link.ProviderDocumentID = &pid
		}
		if err := tx.Model(&models.SignatureLink{}).Where("id = ?", link.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to complete link: %w", err)
		}
		link.Status = models.LinkStatusCompletado
		link.SignedAt = &now

		if err := appendTrace(tx, link.SaleID, models.TraceFirmaCompletada,
			fmt.Sprintf("Firma completada por %s", link.RecipientType), nil,
			models.JSONB(evidence)); err != nil {
			return err
		}

		if workflow.CanTransition(link.Sale.Status, models.SaleStatusFirmado) {
			if err := tx.Model(&models.Sale{}).Where("id = ?", link.SaleID).
				Update("status", models.SaleStatusFirmado).Error; err != nil {
				return fmt.Errorf("failed to advance sale: %w", err)
			}
			link.Sale.Status = models.SaleStatusFirmado
		}

		// All recipients done: the sale itself is complete.
		var open int64
		if err := tx.Model(&models.SignatureLink{}).
			Where("sale_id = ? AND status NOT IN ?", link.SaleID,
				[]models.LinkStatus{models.LinkStatusCompletado, models.LinkStatusRevocado}).
			Count(&open).Error; err != nil {
			return fmt.Errorf("failed to count open links: %w", err)
		}
		if open == 0 && workflow.CanTransition(link.Sale.Status, models.SaleStatusCompletado) {
			if err := tx.Model(&models.Sale{}).Where("id = ?", link.SaleID).
				Update("status", models.SaleStatusCompletado).Error; err != nil {
				return fmt.Errorf("failed to complete sale: %w", err)
			}
			link.Sale.Status = models.SaleStatusCompletado
			return appendTrace(tx, link.SaleID, models.TraceVentaCompletada,
				"Todos los firmantes completaron la firma", nil, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &link, nil
}

// Revoke is staff-initiated and keeps the row for the audit trail.
func (s *SignatureService) Revoke(linkID, companyID uuid.UUID, actorID *uuid.UUID, req *RevokeLinkRequest) (*models.SignatureLink, error) {
	link, err := s.getForCompany(linkID, companyID)
	if err != nil {
		return nil, err
	}

	if link.Status == models.LinkStatusCompletado {
		return nil, apperrors.New(apperrors.KindPreconditionFailed, "a completed link cannot be revoked")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SignatureLink{}).Where("id = ?", link.ID).
			Updates(map[string]interface{}{
				"status":         models.LinkStatusRevocado,
				"revoked_reason": req.Reason,
			}).Error; err != nil {
			return fmt.Errorf("failed to revoke link: %w", err)
		}
		link.Status = models.LinkStatusRevocado
		link.RevokedReason = req.Reason

		return appendTrace(tx, link.SaleID, models.TraceCambioEstado,
			fmt.Sprintf("Enlace de firma revocado: %s", req.Reason), actorID, nil)
	})
	if err != nil {
		return nil, err
	}

	return link, nil
}

// Resend regenerates the token with a fresh expiry. The caller must supply
// the version it read; a concurrent regeneration bumps the version and this
// update then matches zero rows instead of silently overwriting.
func (s *SignatureService) Resend(linkID, companyID uuid.UUID, actorID *uuid.UUID, req *ResendLinkRequest) (*models.SignatureLink, error) {
	link, err := s.getForCompany(linkID, companyID)
	if err != nil {
		return nil, err
	}

	if link.Status == models.LinkStatusCompletado {
		return nil, apperrors.New(apperrors.KindPreconditionFailed, "a completed link cannot be resent")
	}

	token, err := utils.GenerateSignatureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	expiresAt := time.Now().Add(time.Duration(s.config.Signature.DefaultExpirationDays) * 24 * time.Hour)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SignatureLink{}).
			Where("id = ? AND version = ?", link.ID, req.Version).
			Updates(map[string]interface{}{
				"token":          token,
				"expires_at":     expiresAt,
				"status":         models.LinkStatusPendiente,
				"version":        req.Version + 1,
				"revoked_reason": "",
				"error_message":  "",
			})
		if res.Error != nil {
			return fmt.Errorf("failed to regenerate link: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.KindPreconditionFailed,
				"el enlace fue modificado por otra operación, recargue e intente de nuevo")
		}

		link.Token = token
		link.ExpiresAt = expiresAt
		link.Status = models.LinkStatusPendiente
		link.Version = req.Version + 1

		if link.RecipientType == models.RecipientTypeTitular {
			if err := s.syncLegacyToken(tx, link.SaleID, token, expiresAt); err != nil {
				return err
			}
		}

		return appendTrace(tx, link.SaleID, models.TraceEnlaceFirmaCreado,
			fmt.Sprintf("Enlace reenviado para %s con nueva vigencia", link.RecipientType), actorID,
			models.JSONB{"expires_at": expiresAt})
	})
	if err != nil {
		return nil, err
	}

	if dispatchErr := s.notifySignatureRequest(&link.Sale, link, "enlace_renovado"); dispatchErr != nil {
		link.ErrorMessage = dispatchErr.Error()
		s.db.Model(link).Update("error_message", link.ErrorMessage)
	}

	return link, nil
}

func (s *SignatureService) ListForSale(saleID, companyID uuid.UUID) ([]models.SignatureLink, error) {
	if _, err := s.saleService.Get(saleID, companyID); err != nil {
		return nil, err
	}

	var links []models.SignatureLink
	err := s.db.Where("sale_id = ?", saleID).Order("created_at DESC").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch links: %w", err)
	}
	return links, nil
}

// SignatureURL builds the client-facing signing URL for a token.
func (s *SignatureService) SignatureURL(token string) string {
	return fmt.Sprintf("%s/firmar/%s", s.config.Frontend.BaseURL, token)
}

// QuestionnaireURL builds the client-facing questionnaire URL for a token.
func (s *SignatureService) QuestionnaireURL(token string) string {
	return fmt.Sprintf("%s/questionnaire/%s", s.config.Frontend.BaseURL, token)
}

func (s *SignatureService) getForCompany(linkID, companyID uuid.UUID) (*models.SignatureLink, error) {
	var link models.SignatureLink
	err := s.db.Joins("JOIN sales ON sales.id = signature_links.sale_id").
		Where("signature_links.id = ? AND sales.company_id = ?", linkID, companyID).
		Preload("Sale").Preload("Sale.Client").Preload("Sale.Plan").
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "signature link not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &link, nil
}

// createLinkRow inserts the link, retrying once if the random token happens
// to collide with an existing one.
func (s *SignatureService) createLinkRow(tx *gorm.DB, saleID uuid.UUID, recipientType models.RecipientType, email, phone string, expiresAt time.Time) (*models.SignatureLink, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := utils.GenerateSignatureToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}

		link := &models.SignatureLink{
			SaleID:         saleID,
			Token:          token,
			RecipientType:  recipientType,
			RecipientEmail: email,
			RecipientPhone: phone,
			Status:         models.LinkStatusPendiente,
			ExpiresAt:      expiresAt,
			AccessCount:    0,
			Version:        1,
		}

		err = tx.Create(link).Error
		if err == nil {
			return link, nil
		}
		if !strings.Contains(err.Error(), "duplicate key") {
			return nil, fmt.Errorf("failed to create signature link: %w", err)
		}
		logrus.Warn("Signature token collision, regenerating")
	}
	return nil, fmt.Errorf("failed to create signature link: token collision")
}

// syncLegacyToken mirrors the titular link onto the deprecated single-token
// columns still read by older clients.
func (s *SignatureService) syncLegacyToken(tx *gorm.DB, saleID uuid.UUID, token string, expiresAt time.Time) error {
	err := tx.Model(&models.Sale{}).Where("id = ?", saleID).
		Updates(map[string]interface{}{
			"signature_token":      token,
			"signature_expires_at": expiresAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to sync legacy token: %w", err)
	}
	return nil
}

func (s *SignatureService) notifySignatureRequest(sale *models.Sale, link *models.SignatureLink, templateName string) error {
	if link.RecipientEmail == "" {
		return nil
	}

	clientName := "Cliente"
	if sale.Client != nil {
		clientName = sale.Client.FullName()
	}
	planName := ""
	if sale.Plan != nil {
		planName = sale.Plan.Name
	}

	return s.notificationService.Dispatch(&DispatchRequest{
		Channel:      models.ChannelEmail,
		Recipient:    link.RecipientEmail,
		TemplateName: templateName,
		TemplateData: map[string]interface{}{
			"ClientName":   clientName,
			"PlanName":     planName,
			"SignatureURL": s.SignatureURL(link.Token),
			"ExpiresAt":    link.ExpiresAt.Format("02/01/2006 15:04"),
		},
		SaleID:    &sale.ID,
		CompanyID: &sale.CompanyID,
	})
}
