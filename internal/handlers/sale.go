// internal/handlers/sale.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/i18n"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/services"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/utils"
)

type SaleHandler struct {
	saleService *services.SaleService
}

func NewSaleHandler(saleService *services.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// POST /v1/sales
func (h *SaleHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, companyID, ok := currentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	sale, err := h.saleService.Create(companyID, &userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySaleCreated),
		"sale":    sale,
	})
}

// GET /v1/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	_, companyID, ok := currentIdentity(c)
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

	utils.SuccessResponse(c, gin.H{
		"sale":  sale,
		"steps": h.saleService.StepStates(sale),
	})
}

// GET /v1/sales
func (h *SaleHandler) List(c *gin.Context) {
	_, companyID, ok := currentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := services.SaleSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if status := c.Query("status"); status != "" {
		s := models.SaleStatus(status)
		params.Status = &s
	}
	if clientID := c.Query("client_id"); clientID != "" {
		if parsed, err := uuid.Parse(clientID); err == nil {
			params.ClientID = &parsed
		}
	}
	if sellerID := c.Query("seller_id"); sellerID != "" {
		if parsed, err := uuid.Parse(sellerID); err == nil {
			params.SellerID = &parsed
		}
	}

	sales, total, err := h.saleService.Search(companyID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(sales, total, params.PaginationParams))
}

// PUT /v1/sales/:id/status
func (h *SaleHandler) ChangeStatus(c *gin.Context) {
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

	var req services.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	sale, err := h.saleService.ChangeStatus(saleID, companyID, &userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySaleStatusUpdated),
		"sale":    sale,
	})
}

// POST /v1/sales/:id/approve
func (h *SaleHandler) Approve(c *gin.Context) {
	h.decide(c, i18n.KeySaleApproved, h.saleService.Approve)
}

// POST /v1/sales/:id/reject
func (h *SaleHandler) Reject(c *gin.Context) {
	h.decide(c, i18n.KeySaleRejected, h.saleService.Reject)
}

// POST /v1/sales/:id/cancel
func (h *SaleHandler) Cancel(c *gin.Context) {
	h.decide(c, i18n.KeySaleCancelled, h.saleService.Cancel)
}

func (h *SaleHandler) decide(c *gin.Context, messageKey string, fn func(saleID, companyID uuid.UUID, actorID *uuid.UUID, comment string) (*models.Sale, error)) {
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

	var req struct {
		Comment string `json:"comment,omitempty"`
		Reason  string `json:"reason,omitempty"`
	}
	// Body is optional for these endpoints
	c.ShouldBindJSON(&req)

	comment := req.Comment
	if comment == "" {
		comment = req.Reason
	}

	sale, err := fn(saleID, companyID, &userID, comment)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, messageKey),
		"sale":    sale,
	})
}

// GET /v1/sales/:id/traces
func (h *SaleHandler) Traces(c *gin.Context) {
	_, companyID, ok := currentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid sale ID", nil)
		return
	}

	traces, err := h.saleService.Timeline(saleID, companyID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"traces": traces,
	})
}
