// internal/services/sale_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/apperrors"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/utils"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/workflow"
)

type SaleService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type CreateSaleRequest struct {
	ClientID   *uuid.UUID `json:"client_id,omitempty"`
	PlanID     *uuid.UUID `json:"plan_id,omitempty"`
	TemplateID *uuid.UUID `json:"template_id,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

type ChangeStatusRequest struct {
	Status  models.SaleStatus `json:"status" validate:"required"`
	Comment string            `json:"comment,omitempty"`
}

type SubmitQuestionnaireRequest struct {
	Responses map[string]interface{} `json:"responses" validate:"required"`
}

type SaleSearchParams struct {
	utils.PaginationParams
	Status   *models.SaleStatus `json:"status,omitempty"`
	ClientID *uuid.UUID         `json:"client_id,omitempty"`
	SellerID *uuid.UUID         `json:"seller_id,omitempty"`
}

// StepView is one entry of the derived workflow timeline.
type StepView struct {
	Key   models.SaleStatus  `json:"key"`
	Label string             `json:"label"`
	State workflow.StepState `json:"state"`
}

func NewSaleService(db *gorm.DB, notificationService *NotificationService) *SaleService {
	return &SaleService{
		db:                  db,
		notificationService: notificationService,
	}
}

func (s *SaleService) Create(companyID uuid.UUID, sellerID *uuid.UUID, req *CreateSaleRequest) (*models.Sale, error) {
	sale := &models.Sale{
		CompanyID:  companyID,
		ClientID:   req.ClientID,
		PlanID:     req.PlanID,
		TemplateID: req.TemplateID,
		SellerID:   sellerID,
		Status:     models.SaleStatusBorrador,
		Notes:      req.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
		return appendTrace(tx, sale.ID, models.TraceVentaCreada, "Venta creada en borrador", sellerID, nil)
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Client").Preload("Plan").Preload("Template").First(sale, sale.ID)
	return sale, nil
}

func (s *SaleService) Get(id, companyID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.Where("company_id = ?", companyID).
		Preload("Client").Preload("Plan").Preload("Template").Preload("Seller").
		Preload("Documents").Preload("SignatureLinks").
		First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "sale not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &sale, nil
}

func (s *SaleService) Search(companyID uuid.UUID, params SaleSearchParams) ([]models.Sale, int64, error) {
	query := s.db.Model(&models.Sale{}).Where("company_id = ?", companyID).
		Preload("Client").Preload("Plan")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}
	if params.SellerID != nil {
		query = query.Where("seller_id = ?", *params.SellerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch sales: %w", err)
	}

	return sales, total, nil
}

// ChangeStatus runs one workflow transition. Status update and trace append
// happen in a single transaction so the trail never drifts from the status.
func (s *SaleService) ChangeStatus(saleID, companyID uuid.UUID, actorID *uuid.UUID, req *ChangeStatusRequest) (*models.Sale, error) {
	var sale models.Sale

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", companyID).First(&sale, saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "sale not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !workflow.CanTransition(sale.Status, req.Status) {
			return apperrors.Newf(apperrors.KindPreconditionFailed,
				"transition from %s to %s is not allowed", sale.Status, req.Status)
		}

		previous := sale.Status
		sale.Status = req.Status
		if err := tx.Model(&sale).Update("status", req.Status).Error; err != nil {
			return fmt.Errorf("failed to update sale status: %w", err)
		}

		details := req.Comment
		if details == "" {
			details = fmt.Sprintf("Estado cambiado de %s a %s", previous, req.Status)
		}
		return appendTrace(tx, sale.ID, workflow.ActionFor(req.Status), details, actorID,
			models.JSONB{"from": string(previous), "to": string(req.Status)})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"sale_id": saleID,
		"status":  sale.Status,
	}).Info("Sale status changed")

	return &sale, nil
}

func (s *SaleService) Approve(saleID, companyID uuid.UUID, actorID *uuid.UUID, comment string) (*models.Sale, error) {
	return s.ChangeStatus(saleID, companyID, actorID, &ChangeStatusRequest{
		Status:  models.SaleStatusAprobadoParaTemplates,
		Comment: comment,
	})
}

func (s *SaleService) Reject(saleID, companyID uuid.UUID, actorID *uuid.UUID, reason string) (*models.Sale, error) {
	if reason == "" {
		reason = "Venta rechazada en auditoría"
	}
	return s.ChangeStatus(saleID, companyID, actorID, &ChangeStatusRequest{
		Status:  models.SaleStatusRechazado,
		Comment: reason,
	})
}

func (s *SaleService) Cancel(saleID, companyID uuid.UUID, actorID *uuid.UUID, reason string) (*models.Sale, error) {
	if reason == "" {
		reason = "Venta cancelada"
	}
	return s.ChangeStatus(saleID, companyID, actorID, &ChangeStatusRequest{
		Status:  models.SaleStatusCancelado,
		Comment: reason,
	})
}

// SubmitQuestionnaire stores the client's DDJJ and, when the sale was
// waiting on it, advances the workflow to auditing.
func (s *SaleService) SubmitQuestionnaire(sale *models.Sale, req *SubmitQuestionnaireRequest) (*models.TemplateResponse, error) {
	if sale.TemplateID == nil {
		return nil, apperrors.New(apperrors.KindPreconditionFailed, "sale has no questionnaire template")
	}
	if sale.ClientID == nil {
		return nil, apperrors.New(apperrors.KindPreconditionFailed, "sale has no client assigned")
	}

	response := &models.TemplateResponse{
		TemplateID: *sale.TemplateID,
		ClientID:   *sale.ClientID,
		SaleID:     &sale.ID,
		Responses:  models.JSONB(req.Responses),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(response).Error; err != nil {
			return fmt.Errorf("failed to save questionnaire response: %w", err)
		}

		if err := appendTrace(tx, sale.ID, models.TraceDDJJCompletada,
			"Declaración jurada completada por el cliente", nil, nil); err != nil {
			return err
		}

		if sale.Status == models.SaleStatusEsperandoDDJJ {
			if err := tx.Model(&models.Sale{}).Where("id = ?", sale.ID).
				Update("status", models.SaleStatusEnRevision).Error; err != nil {
				return fmt.Errorf("failed to advance sale: %w", err)
			}
			sale.Status = models.SaleStatusEnRevision
			return appendTrace(tx, sale.ID, models.TraceEnviadoAAuditoria,
				"Enviado a auditoría tras completar la DDJJ", nil, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// ReadyForSignature evaluates the questionnaire gate against the store.
func (s *SaleService) ReadyForSignature(sale *models.Sale) (bool, error) {
	count, err := s.QuestionnaireResponseCount(sale)
	if err != nil {
		return false, err
	}
	return workflow.ReadyForSignature(sale.TemplateID != nil, count), nil
}

func (s *SaleService) QuestionnaireResponseCount(sale *models.Sale) (int64, error) {
	if sale.TemplateID == nil || sale.ClientID == nil {
		return 0, nil
	}
	var count int64
	err := s.db.Model(&models.TemplateResponse{}).
		Where("template_id = ? AND client_id = ?", *sale.TemplateID, *sale.ClientID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count questionnaire responses: %w", err)
	}
	return count, nil
}

// Timeline returns the audit trail, newest first. Traces are the sole source
// of historical truth; sales.status only says where the workflow is now.
func (s *SaleService) Timeline(saleID, companyID uuid.UUID) ([]models.ProcessTrace, error) {
	if _, err := s.Get(saleID, companyID); err != nil {
		return nil, err
	}

	var traces []models.ProcessTrace
	err := s.db.Where("sale_id = ?", saleID).
		Preload("Author").
		Order("created_at DESC").
		Find(&traces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch traces: %w", err)
	}
	return traces, nil
}

// StepStates derives the per-step display state for the sale's current
// status. Pure derivation, recomputed on every call.
func (s *SaleService) StepStates(sale *models.Sale) []StepView {
	views := make([]StepView, 0, len(workflow.Steps))
	for _, step := range workflow.Steps {
		views = append(views, StepView{
			Key:   step.Key,
			Label: step.Label,
			State: workflow.StepStateFor(step.Key, sale.Status),
		})
	}
	return views
}

// appendTrace inserts one audit row. Callers hold the surrounding
// transaction so a trace can never outlive a rolled-back state change.
func appendTrace(tx *gorm.DB, saleID uuid.UUID, action models.TraceAction, details string, actorID *uuid.UUID, metadata models.JSONB) error {
	trace := &models.ProcessTrace{
		SaleID:    saleID,
		Action:    action,
		Details:   details,
		Metadata:  metadata,
		CreatedBy: actorID,
	}
	if err := tx.Create(trace).Error; err != nil {
		return fmt.Errorf("failed to append process trace: %w", err)
	}
	return nil
}
