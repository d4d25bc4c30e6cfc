// internal/handlers/document.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/i18n"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/services"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/utils"
)

type DocumentHandler struct {
	documentService *services.DocumentService
	saleService     *services.SaleService
}

func NewDocumentHandler(documentService *services.DocumentService, saleService *services.SaleService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		saleService:     saleService,
	}
}

// POST /v1/sales/:id/packages
func (h *DocumentHandler) CreatePackage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, companyID, ok := currentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid sale ID", nil)
		return
	}

	var req services.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	pkg, err := h.documentService.CreatePackage(saleID, companyID, &userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPackageCreated),
		"package": pkg,
	})
}

// GET /v1/packages/:id
func (h *DocumentHandler) GetPackage(c *gin.Context) {
	_, companyID, ok := currentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid package ID", nil)
		return
	}

	pkg, err := h.documentService.GetPackage(packageID, companyID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"package": pkg,
	})
}

// DELETE /v1/packages/:id
func (h *DocumentHandler) DeletePackage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	_, companyID, ok := currentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid package ID", nil)
		return
	}

	if err := h.documentService.DeletePackage(packageID, companyID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPackageDeleted),
	})
}

// POST /v1/sales/:id/documents/generate
func (h *DocumentHandler) GenerateDocument(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, companyID, ok := currentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid sale ID", nil)
		return
	}

	sale, err := h.saleService.Get(saleID, companyID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	doc, err := h.documentService.GenerateFromTemplate(sale, &userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyDocumentGenerated),
		"document": doc,
	})
}
