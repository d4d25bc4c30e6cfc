// internal/handlers/signature.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/i18n"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/services"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/utils"
)

type SignatureHandler struct {
	signatureService *services.SignatureService
}

func NewSignatureHandler(signatureService *services.SignatureService) *SignatureHandler {
	return &SignatureHandler{
		signatureService: signatureService,
	}
}

// POST /v1/sales/:id/signature-links
func (h *SignatureHandler) Issue(c *gin.Context) {
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

	var req services.IssueLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	link, err := h.signatureService.Issue(saleID, companyID, &userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyLinkCreated),
		"link":          link,
		"signature_url": h.signatureService.SignatureURL(link.Token),
	})
}

// GET /v1/sales/:id/signature-links
func (h *SignatureHandler) ListForSale(c *gin.Context) {
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

	links, err := h.signatureService.ListForSale(saleID, companyID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"links": links,
	})
}

// POST /v1/signature-links/:id/resend
func (h *SignatureHandler) Resend(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, companyID, ok := currentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid link ID", nil)
		return
	}

	var req services.ResendLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	link, err := h.signatureService.Resend(linkID, companyID, &userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyLinkResent),
		"link":          link,
		"signature_url": h.signatureService.SignatureURL(link.Token),
	})
}

// POST /v1/signature-links/:id/revoke
func (h *SignatureHandler) Revoke(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, companyID, ok := currentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid link ID", nil)
		return
	}

	var req services.RevokeLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	link, err := h.signatureService.Revoke(linkID, companyID, &userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyLinkRevoked),
		"link":    link,
	})
}
