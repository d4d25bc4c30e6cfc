// internal/tests/sale_workflow_test.go

// End-to-end workflow test against a real Postgres instance. Set
// TEST_DATABASE_URL to run it, e.g.
//
//	TEST_DATABASE_URL="host=localhost user=postgres dbname=prepaga_test sslmode=disable"
package tests

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/apperrors"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/database"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/services"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/workflow"
)

type SaleWorkflowTestSuite struct {
	suite.Suite
	db *gorm.DB

	cfg              *config.Config
	saleService      *services.SaleService
	signatureService *services.SignatureService
	documentService  *services.DocumentService

	company  models.Company
	seller   models.User
	client   models.Client
	plan     models.Plan
	template models.Template
}

func (s *SaleWorkflowTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		s.T().Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.db = db

	s.Require().NoError(database.RunMigrations(db))

	s.cfg = &config.Config{
		Signature: config.SignatureConfig{DefaultExpirationDays: 7},
		Frontend:  config.FrontendConfig{BaseURL: "http://localhost:3000"},
	}

	notificationService := services.NewNotificationService(db, s.cfg)
	esignService := services.NewESignService(s.cfg)
	s.saleService = services.NewSaleService(db, notificationService)
	s.signatureService = services.NewSignatureService(db, s.cfg, s.saleService, notificationService, esignService)
	s.documentService = services.NewDocumentService(db, nil)
}

func (s *SaleWorkflowTestSuite) SetupTest() {
	// Each test gets a fresh company so rows never collide across tests.
	s.company = models.Company{Name: "Prepaga Test"}
	s.Require().NoError(s.db.Create(&s.company).Error)

	s.seller = models.User{
		CompanyID: s.company.ID,
		Email:     "vendedor-" + s.company.ID.String() + "@test.com",
		FirstName: "Ana",
		LastName:  "Vendedora",
		Role:      models.UserRoleVendedor,
		Active:    true,
	}
	s.Require().NoError(s.seller.SetPassword("Secreta123!"))
	s.Require().NoError(s.db.Create(&s.seller).Error)

	s.client = models.Client{
		CompanyID: s.company.ID,
		FirstName: "María",
		LastName:  "González",
		Email:     "maria@test.com",
		DNI:       "4123456",
	}
	s.Require().NoError(s.db.Create(&s.client).Error)

	s.plan = models.Plan{CompanyID: s.company.ID, Name: "Plan Oro", Price: 450000, Currency: "PYG"}
	s.Require().NoError(s.db.Create(&s.plan).Error)

	s.template = models.Template{
		CompanyID: s.company.ID,
		Name:      "DDJJ Salud",
		Content:   "Contrato de {{cliente_nombre}} {{cliente_apellido}} para {{plan_nombre}}",
		Questions: models.JSONB{"preguntas": []interface{}{"¿Fuma?", "¿Enfermedades preexistentes?"}},
	}
	s.Require().NoError(s.db.Create(&s.template).Error)
}

func (s *SaleWorkflowTestSuite) createSale() *models.Sale {
	sale, err := s.saleService.Create(s.company.ID, &s.seller.ID, &services.CreateSaleRequest{
		ClientID:   &s.client.ID,
		PlanID:     &s.plan.ID,
		TemplateID: &s.template.ID,
	})
	s.Require().NoError(err)
	return sale
}

func (s *SaleWorkflowTestSuite) submitQuestionnaire(sale *models.Sale) {
	_, err := s.saleService.SubmitQuestionnaire(sale, &services.SubmitQuestionnaireRequest{
		Responses: map[string]interface{}{"fuma": false, "preexistentes": "ninguna"},
	})
	s.Require().NoError(err)
}

func (s *SaleWorkflowTestSuite) TestFullLifecycle() {
	sale := s.createSale()
	assert.Equal(s.T(), models.SaleStatusBorrador, sale.Status)

	// The questionnaire gate blocks issuance while the DDJJ is missing.
	_, err := s.signatureService.Issue(sale.ID, s.company.ID, &s.seller.ID, &services.IssueLinkRequest{})
	assert.True(s.T(), apperrors.IsPreconditionFailed(err))

	s.submitQuestionnaire(sale)

	// Gate opens once a response exists.
	link, err := s.signatureService.Issue(sale.ID, s.company.ID, &s.seller.ID, &services.IssueLinkRequest{})
	s.Require().NoError(err)
	assert.Equal(s.T(), models.LinkStatusPendiente, link.Status)
	assert.Len(s.T(), link.Token, 48)
	assert.WithinDuration(s.T(), time.Now().Add(7*24*time.Hour), link.ExpiresAt, time.Minute,
		"expiry defaults to issuance time plus the configured days")

	// Issuing advanced the sale to enviado and mirrored the legacy token.
	reloaded, err := s.saleService.Get(sale.ID, s.company.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), models.SaleStatusEnviado, reloaded.Status)
	s.Require().NotNil(reloaded.SignatureToken)
	assert.Equal(s.T(), link.Token, *reloaded.SignatureToken)

	// First resolve marks the link as viewed and counts the access.
	resolved, err := s.signatureService.Resolve(link.Token)
	s.Require().NoError(err)
	assert.Equal(s.T(), models.LinkStatusVisualizado, resolved.Status)
	assert.Equal(s.T(), 1, resolved.AccessCount)

	// Completion closes the link and, with no other recipients, the sale.
	completed, err := s.signatureService.Complete(link.Token, map[string]interface{}{"ip": "10.0.0.1"})
	s.Require().NoError(err)
	assert.Equal(s.T(), models.LinkStatusCompletado, completed.Status)
	assert.NotNil(s.T(), completed.SignedAt)

	final, err := s.saleService.Get(sale.ID, s.company.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), models.SaleStatusCompletado, final.Status)

	// Every step now derives as completed except the current last one.
	steps := s.saleService.StepStates(final)
	assert.Equal(s.T(), workflow.StepCurrent, steps[len(steps)-1].State)
	for _, step := range steps[:len(steps)-1] {
		assert.Equal(s.T(), workflow.StepCompleted, step.State)
	}

	// The trail recorded every milestone.
	traces, err := s.saleService.Timeline(sale.ID, s.company.ID)
	s.Require().NoError(err)
	actions := make(map[models.TraceAction]bool)
	for _, trace := range traces {
		actions[trace.Action] = true
	}
	assert.True(s.T(), actions[models.TraceVentaCreada])
	assert.True(s.T(), actions[models.TraceDDJJCompletada])
	assert.True(s.T(), actions[models.TraceEnlaceFirmaCreado])
	assert.True(s.T(), actions[models.TraceFirmaCompletada])
	assert.True(s.T(), actions[models.TraceVentaCompletada])
}

func (s *SaleWorkflowTestSuite) TestCompletionIsIdempotent() {
	sale := s.createSale()
	s.submitQuestionnaire(sale)

	link, err := s.signatureService.Issue(sale.ID, s.company.ID, nil, &services.IssueLinkRequest{})
	s.Require().NoError(err)

	first, err := s.signatureService.Complete(link.Token, nil)
	s.Require().NoError(err)

	second, err := s.signatureService.Complete(link.Token, nil)
	s.Require().NoError(err)
	assert.Equal(s.T(), first.Status, second.Status)

	// The trail holds exactly one completion trace.
	var count int64
	s.db.Model(&models.ProcessTrace{}).
		Where("sale_id = ? AND action = ?", sale.ID, models.TraceFirmaCompletada).
		Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

func (s *SaleWorkflowTestSuite) TestRejectedTransitionLeavesNoTrace() {
	sale := s.createSale()

	_, err := s.saleService.ChangeStatus(sale.ID, s.company.ID, &s.seller.ID, &services.ChangeStatusRequest{
		Status: models.SaleStatusRechazado,
	})
	assert.True(s.T(), apperrors.IsPreconditionFailed(err), "rechazado is only reachable from en_revision")

	var count int64
	s.db.Model(&models.ProcessTrace{}).Where("sale_id = ?", sale.ID).Count(&count)
	assert.Equal(s.T(), int64(1), count, "only the creation trace should exist")
}

func (s *SaleWorkflowTestSuite) TestResendStaleVersionFails() {
	sale := s.createSale()
	s.submitQuestionnaire(sale)

	link, err := s.signatureService.Issue(sale.ID, s.company.ID, nil, &services.IssueLinkRequest{ExpirationDays: 2})
	s.Require().NoError(err)
	oldToken := link.Token
	assert.WithinDuration(s.T(), time.Now().Add(2*24*time.Hour), link.ExpiresAt, time.Minute)

	// First regeneration with the version we read succeeds.
	renewed, err := s.signatureService.Resend(link.ID, s.company.ID, nil, &services.ResendLinkRequest{Version: link.Version})
	s.Require().NoError(err)
	assert.NotEqual(s.T(), oldToken, renewed.Token)
	assert.Equal(s.T(), link.Version+1, renewed.Version)

	// The new expiry is counted from the resend, not the original issuance.
	assert.WithinDuration(s.T(), time.Now().Add(7*24*time.Hour), renewed.ExpiresAt, time.Minute)
	assert.True(s.T(), renewed.ExpiresAt.After(link.ExpiresAt))

	// A second caller still holding the old version loses.
	_, err = s.signatureService.Resend(link.ID, s.company.ID, nil, &services.ResendLinkRequest{Version: link.Version})
	assert.True(s.T(), apperrors.IsPreconditionFailed(err))

	// The old token no longer resolves.
	_, err = s.signatureService.Resolve(oldToken)
	assert.True(s.T(), apperrors.IsNotFound(err))
}

func (s *SaleWorkflowTestSuite) TestRevokedLinkResolvesAsNotFound() {
	sale := s.createSale()
	s.submitQuestionnaire(sale)

	link, err := s.signatureService.Issue(sale.ID, s.company.ID, nil, &services.IssueLinkRequest{})
	s.Require().NoError(err)

	_, err = s.signatureService.Revoke(link.ID, s.company.ID, &s.seller.ID, &services.RevokeLinkRequest{
		Reason: "datos incorrectos",
	})
	s.Require().NoError(err)

	// Revocation is indistinguishable from absence on the public side.
	_, err = s.signatureService.Resolve(link.Token)
	assert.True(s.T(), apperrors.IsNotFound(err))
}

func (s *SaleWorkflowTestSuite) TestExpiredLinkResolvesAsExpired() {
	sale := s.createSale()
	s.submitQuestionnaire(sale)

	link, err := s.signatureService.Issue(sale.ID, s.company.ID, nil, &services.IssueLinkRequest{})
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(&models.SignatureLink{}).Where("id = ?", link.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	// Expiry is reported distinctly so the client can ask for a renewal.
	_, err = s.signatureService.Resolve(link.Token)
	assert.True(s.T(), apperrors.IsExpired(err))
	assert.False(s.T(), apperrors.IsNotFound(err))
}

func (s *SaleWorkflowTestSuite) TestIssueRegistersDocumentWithProvider() {
	sale := s.createSale()
	s.submitQuestionnaire(sale)

	loaded, err := s.saleService.Get(sale.ID, s.company.ID)
	s.Require().NoError(err)
	_, err = s.documentService.GenerateFromTemplate(loaded, &s.seller.ID)
	s.Require().NoError(err)

	link, err := s.signatureService.Issue(sale.ID, s.company.ID, nil, &services.IssueLinkRequest{})
	s.Require().NoError(err)

	// Without provider credentials the service hands back a local id; either
	// way the link row carries the document reference for the callback.
	var stored models.SignatureLink
	s.Require().NoError(s.db.First(&stored, link.ID).Error)
	s.Require().NotNil(stored.ProviderDocumentID)
	assert.True(s.T(), strings.HasPrefix(*stored.ProviderDocumentID, "local-"))
}

func (s *SaleWorkflowTestSuite) TestCompletionPersistsProviderDocumentID() {
	sale := s.createSale()
	s.submitQuestionnaire(sale)

	// No generated document yet, so issuance stores no provider id.
	link, err := s.signatureService.Issue(sale.ID, s.company.ID, nil, &services.IssueLinkRequest{})
	s.Require().NoError(err)
	assert.Nil(s.T(), link.ProviderDocumentID)

	_, err = s.signatureService.Complete(link.Token, map[string]interface{}{
		"provider_document_id": "prov-doc-123",
		"signer":               "maria@test.com",
	})
	s.Require().NoError(err)

	var stored models.SignatureLink
	s.Require().NoError(s.db.First(&stored, link.ID).Error)
	s.Require().NotNil(stored.ProviderDocumentID)
	assert.Equal(s.T(), "prov-doc-123", *stored.ProviderDocumentID)
}

func (s *SaleWorkflowTestSuite) TestDispatchFailureDoesNotBlockLinkWrites() {
	// SMTP pointed at a closed port: every send fails, nothing is skipped.
	badCfg := &config.Config{
		Signature: s.cfg.Signature,
		Frontend:  s.cfg.Frontend,
		Email:     config.EmailConfig{SMTPHost: "127.0.0.1", SMTPPort: "1", FromEmail: "noreply@test.com"},
	}
	badNotifications := services.NewNotificationService(s.db, badCfg)
	badSignatures := services.NewSignatureService(s.db, badCfg, s.saleService, badNotifications, services.NewESignService(badCfg))

	sale := s.createSale()
	s.submitQuestionnaire(sale)

	// The link is persisted and returned despite the failed send, with the
	// failure recorded on the row.
	link, err := badSignatures.Issue(sale.ID, s.company.ID, nil, &services.IssueLinkRequest{})
	s.Require().NoError(err)
	assert.NotEmpty(s.T(), link.ErrorMessage)

	var stored models.SignatureLink
	s.Require().NoError(s.db.First(&stored, link.ID).Error)
	assert.NotEmpty(s.T(), stored.ErrorMessage)

	// Resend behaves the same: the renewal lands even when delivery fails.
	renewed, err := badSignatures.Resend(link.ID, s.company.ID, nil, &services.ResendLinkRequest{Version: link.Version})
	s.Require().NoError(err)
	assert.NotEqual(s.T(), link.Token, renewed.Token)
	assert.NotEmpty(s.T(), renewed.ErrorMessage)
}

func (s *SaleWorkflowTestSuite) TestCompanyScoping() {
	sale := s.createSale()

	other := models.Company{Name: "Otra Prepaga"}
	s.Require().NoError(s.db.Create(&other).Error)

	_, err := s.saleService.Get(sale.ID, other.ID)
	assert.True(s.T(), apperrors.IsNotFound(err))
}

func TestSaleWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(SaleWorkflowTestSuite))
}
