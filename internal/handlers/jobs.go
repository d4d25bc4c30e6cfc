// internal/handlers/jobs.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/i18n"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/services"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/utils"
)

// JobsHandler exposes the reconciliation jobs for manual runs. The same code
// paths run on the scheduler tickers; these endpoints exist for operators.
type JobsHandler struct {
	schedulerService *services.SchedulerService
}

func NewJobsHandler(schedulerService *services.SchedulerService) *JobsHandler {
	return &JobsHandler{
		schedulerService: schedulerService,
	}
}

// POST /v1/admin/jobs/send-reminders
func (h *JobsHandler) SendReminders(c *gin.Context) {
	result, err := h.schedulerService.SendReminders()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"result": result})
}

// POST /v1/admin/jobs/resend-expired
func (h *JobsHandler) ResendExpired(c *gin.Context) {
	result, err := h.schedulerService.ResendExpired()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"result": result})
}

// POST /v1/admin/jobs/generate-documents
func (h *JobsHandler) GenerateDocuments(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req struct {
		SaleIDs []uuid.UUID `json:"sale_ids" validate:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.schedulerService.GenerateBulkDocuments(req.SaleIDs)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"result": result})
}
