// internal/services/scheduler_service.go
package services

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/apperrors"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
)

// SchedulerService holds the three reconciliation jobs that keep the
// workflow moving without user action: reminders for links about to expire,
// regeneration of recently expired ones, and bulk document generation.
// Items run concurrently and independently; one failure never aborts its
// siblings, the aggregate result only counts them.
type SchedulerService struct {
	db                  *gorm.DB
	config              *config.Config
	notificationService *NotificationService
	signatureService    *SignatureService
	documentService     *DocumentService
}

type BatchResult struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

func NewSchedulerService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService, signatureService *SignatureService, documentService *DocumentService) *SchedulerService {
	return &SchedulerService{
		db:                  db,
		config:              cfg,
		notificationService: notificationService,
		signatureService:    signatureService,
		documentService:     documentService,
	}
}

const reconcileWindow = 24 * time.Hour

// InReminderWindow reports whether a link expiring at expiresAt should get a
// reminder now: still alive, but gone within the next 24 hours.
func InReminderWindow(expiresAt, now time.Time) bool {
	return expiresAt.After(now) && !expiresAt.After(now.Add(reconcileWindow))
}

// RecentlyExpired reports whether a link expired within the last 24 hours.
// Older ones are considered abandoned and are not resurrected.
func RecentlyExpired(expiresAt, now time.Time) bool {
	return expiresAt.Before(now) && !expiresAt.Before(now.Add(-reconcileWindow))
}

// HoursRemaining returns the hours until expiry, rounded up.
func HoursRemaining(expiresAt, now time.Time) int {
	return int(math.Ceil(expiresAt.Sub(now).Hours()))
}

// SendReminders notifies every recipient whose pending link expires within
// the next 24 hours.
func (s *SchedulerService) SendReminders() (*BatchResult, error) {
	now := time.Now()

	var links []models.SignatureLink
	err := s.db.Joins("JOIN sales ON sales.id = signature_links.sale_id").
		Where("sales.status = ?", models.SaleStatusEnviado).
		Where("signature_links.status IN ?", []models.LinkStatus{models.LinkStatusPendiente, models.LinkStatusVisualizado}).
		Where("signature_links.expires_at > ? AND signature_links.expires_at <= ?", now, now.Add(reconcileWindow)).
		Preload("Sale").Preload("Sale.Client").Preload("Sale.Plan").
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	result := s.settleAll(len(links), func(i int) error {
		link := links[i]
		if link.RecipientEmail == "" {
			return errors.New("link has no recipient email")
		}

		clientName := "Cliente"
		if link.Sale.Client != nil {
			clientName = link.Sale.Client.FullName()
		}
		planName := ""
		if link.Sale.Plan != nil {
			planName = link.Sale.Plan.Name
		}

		return s.notificationService.Dispatch(&DispatchRequest{
			Channel:      models.ChannelEmail,
			Recipient:    link.RecipientEmail,
			TemplateName: "recordatorio_firma",
			TemplateData: map[string]interface{}{
				"ClientName":     clientName,
				"PlanName":       planName,
				"SignatureURL":   s.signatureService.SignatureURL(link.Token),
				"HoursRemaining": HoursRemaining(link.ExpiresAt, now),
			},
			SaleID:    &link.SaleID,
			CompanyID: &link.Sale.CompanyID,
		})
	})

	logrus.WithFields(logrus.Fields{
		"successful": result.Successful,
		"failed":     result.Failed,
		"total":      result.Total,
	}).Info("Reminder job finished")

	return result, nil
}

// ResendExpired regenerates links that expired within the last 24 hours with
// a fresh token and expiry, and sends a new signature request.
func (s *SchedulerService) ResendExpired() (*BatchResult, error) {
	now := time.Now()

	var links []models.SignatureLink
	err := s.db.Joins("JOIN sales ON sales.id = signature_links.sale_id").
		Where("sales.status = ?", models.SaleStatusEnviado).
		Where("signature_links.status IN ?", []models.LinkStatus{models.LinkStatusPendiente, models.LinkStatusVisualizado}).
		Where("signature_links.expires_at < ? AND signature_links.expires_at >= ?", now, now.Add(-reconcileWindow)).
		Preload("Sale").
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	// Resend records dispatch failures on the row without surfacing them, so
	// an error here means the renewal itself did not happen.
	result := s.settleAll(len(links), func(i int) error {
		link := links[i]
		_, err := s.signatureService.Resend(link.ID, link.Sale.CompanyID, nil, &ResendLinkRequest{
			Version: link.Version,
		})
		return err
	})

	logrus.WithFields(logrus.Fields{
		"successful": result.Successful,
		"failed":     result.Failed,
		"total":      result.Total,
	}).Info("Expired link renewal job finished")

	return result, nil
}

// GenerateBulkDocuments renders the template of each given sale into a
// document. Sales without a template count as failures.
func (s *SchedulerService) GenerateBulkDocuments(saleIDs []uuid.UUID) (*BatchResult, error) {
	result := s.settleAll(len(saleIDs), func(i int) error {
		var sale models.Sale
		err := s.db.Preload("Client").Preload("Plan").Preload("Template").
			First(&sale, saleIDs[i]).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "sale not found")
			}
			return err
		}

		_, err = s.documentService.GenerateFromTemplate(&sale, nil)
		return err
	})

	logrus.WithFields(logrus.Fields{
		"successful": result.Successful,
		"failed":     result.Failed,
		"total":      result.Total,
	}).Info("Bulk document generation finished")

	return result, nil
}

// settleAll runs each item in its own goroutine and waits for all of them,
// counting outcomes. There is no fail-fast path and no way to cancel a
// batch once started; partial completion is expected.
func (s *SchedulerService) settleAll(total int, fn func(i int) error) *BatchResult {
	result := &BatchResult{Total: total}
	if total == 0 {
		return result
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := fn(i)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				logrus.WithError(err).WithField("item", i).Warn("Batch item failed")
			} else {
				result.Successful++
			}
		}(i)
	}

	wg.Wait()
	return result
}
