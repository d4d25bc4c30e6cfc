// internal/services/document_service.go
package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/apperrors"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
)

type DocumentService struct {
	db             *gorm.DB
	storageService *StorageService
}

type CreatePackageRequest struct {
	Name        string      `json:"name" validate:"required,min=1,max=255"`
	DocumentIDs []uuid.UUID `json:"document_ids" validate:"required,min=1"`
}

// PackageView is a package with its derived aggregate status attached.
type PackageView struct {
	models.DocumentPackage
	Progress string `json:"progress"`
}

func NewDocumentService(db *gorm.DB, storageService *StorageService) *DocumentService {
	return &DocumentService{
		db:             db,
		storageService: storageService,
	}
}

// CreatePackage groups existing sale documents for one signing session.
// Items are ordered by the position of their id in the request.
func (s *DocumentService) CreatePackage(saleID, companyID uuid.UUID, actorID *uuid.UUID, req *CreatePackageRequest) (*PackageView, error) {
	var sale models.Sale
	if err := s.db.Where("company_id = ?", companyID).First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "sale not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var docCount int64
	if err := s.db.Model(&models.Document{}).
		Where("sale_id = ? AND id IN ?", saleID, req.DocumentIDs).
		Count(&docCount).Error; err != nil {
		return nil, fmt.Errorf("failed to verify documents: %w", err)
	}
	if docCount != int64(len(req.DocumentIDs)) {
		return nil, apperrors.New(apperrors.KindNotFound, "one or more documents do not belong to this sale")
	}

	pkg := &models.DocumentPackage{
		SaleID: saleID,
		Name:   req.Name,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pkg).Error; err != nil {
			return fmt.Errorf("failed to create package: %w", err)
		}

		for i, docID := range req.DocumentIDs {
			item := &models.DocumentPackageItem{
				PackageID:  pkg.ID,
				DocumentID: docID,
				Position:   i,
				Required:   true,
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("failed to create package item: %w", err)
			}
		}

		return appendTrace(tx, saleID, models.TraceDocumentosCargados,
			fmt.Sprintf("Paquete de documentos '%s' creado con %d documentos", req.Name, len(req.DocumentIDs)),
			actorID, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.GetPackage(pkg.ID, companyID)
}

func (s *DocumentService) GetPackage(packageID, companyID uuid.UUID) (*PackageView, error) {
	var pkg models.DocumentPackage
	err := s.db.Joins("JOIN sales ON sales.id = document_packages.sale_id").
		Where("document_packages.id = ? AND sales.company_id = ?", packageID, companyID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Items.Document").
		First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "package not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &PackageView{
		DocumentPackage: pkg,
		Progress:        PackageProgress(pkg.Items),
	}, nil
}

// DeletePackage removes items first, then the package itself, in one
// transaction, so no orphaned items survive.
func (s *DocumentService) DeletePackage(packageID, companyID uuid.UUID) error {
	pkg, err := s.GetPackage(packageID, companyID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("package_id = ?", pkg.ID).
			Delete(&models.DocumentPackageItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete package items: %w", err)
		}
		if err := tx.Delete(&models.DocumentPackage{}, pkg.ID).Error; err != nil {
			return fmt.Errorf("failed to delete package: %w", err)
		}
		return nil
	})
}

// PackageProgress derives the aggregate status of a package from its items.
// Never stored: recomputed on every read.
func PackageProgress(items []models.DocumentPackageItem) string {
	total := len(items)
	signed := 0
	for _, item := range items {
		if item.Document.Status == models.DocumentStatusFirmado {
			signed++
		}
	}

	switch {
	case signed == 0:
		return "pendiente"
	case signed == total:
		return "completo"
	default:
		return fmt.Sprintf("%d/%d firmados", signed, total)
	}
}

// GenerateFromTemplate renders the sale's template into a document row and,
// when storage is configured, uploads the result.
func (s *DocumentService) GenerateFromTemplate(sale *models.Sale, actorID *uuid.UUID) (*models.Document, error) {
	if sale.TemplateID == nil || sale.Template == nil {
		return nil, apperrors.New(apperrors.KindPreconditionFailed, "sale has no template to generate from")
	}

	rendered, missing := RenderTemplateContent(sale.Template.Content, templateData(sale))
	if len(missing) > 0 {
		logrus.WithFields(logrus.Fields{
			"sale_id": sale.ID,
			"missing": missing,
		}).Warn("Template placeholders left unresolved")
	}

	now := time.Now()
	doc := &models.Document{
		SaleID:      sale.ID,
		TemplateID:  sale.TemplateID,
		Name:        sale.Template.Name,
		Status:      models.DocumentStatusGenerado,
		Content:     rendered,
		GeneratedAt: &now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		return appendTrace(tx, sale.ID, models.TraceDocumentosGenerados,
			fmt.Sprintf("Documento '%s' generado desde template", doc.Name), actorID, nil)
	})
	if err != nil {
		return nil, err
	}

	// Upload is best-effort: the inline content is already persisted.
	if s.storageService != nil && s.storageService.Configured() {
		stored, err := s.storageService.UploadDocument(sale.ID, doc.Name+".html", []byte(rendered), "text/html")
		if err != nil {
			logrus.WithError(err).WithField("document_id", doc.ID).Error("Failed to upload generated document")
		} else if stored != nil {
			doc.FileURL = stored.URL
			s.db.Model(doc).Update("file_url", stored.URL)
		}
	}

	return doc, nil
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// RenderTemplateContent substitutes {{field}} placeholders and reports the
// ones no data was available for.
func RenderTemplateContent(content string, data map[string]string) (string, []string) {
	var missing []string
	rendered := placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := data[key]; ok {
			return value
		}
		missing = append(missing, key)
		return match
	})
	return rendered, missing
}

func templateData(sale *models.Sale) map[string]string {
	data := map[string]string{
		"fecha": time.Now().Format("02/01/2006"),
	}
	if sale.Client != nil {
		data["cliente_nombre"] = sale.Client.FirstName
		data["cliente_apellido"] = sale.Client.LastName
		data["cliente_email"] = sale.Client.Email
		data["cliente_telefono"] = sale.Client.Phone
		data["cliente_dni"] = sale.Client.DNI
	}
	if sale.Plan != nil {
		data["plan_nombre"] = sale.Plan.Name
		data["plan_precio"] = fmt.Sprintf("%.2f %s", sale.Plan.Price, sale.Plan.Currency)
	}
	return data
}
