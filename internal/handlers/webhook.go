// internal/handlers/webhook.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/services"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/utils"
)

type WebhookHandler struct {
	esignService     *services.ESignService
	signatureService *services.SignatureService
}

type esignEvent struct {
	Event      string                 `json:"event"`
	Token      string                 `json:"token"`
	DocumentID string                 `json:"document_id"`
	Signer     map[string]interface{} `json:"signer"`
}

func NewWebhookHandler(esignService *services.ESignService, signatureService *services.SignatureService) *WebhookHandler {
	return &WebhookHandler{
		esignService:     esignService,
		signatureService: signatureService,
	}
}

// POST /webhooks/esign
func (h *WebhookHandler) HandleESign(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read payload", nil)
		return
	}

	signature := c.GetHeader("X-Esign-Signature")
	if !h.esignService.VerifyWebhookSignature(payload, signature) {
		logrus.WithField("ip", c.ClientIP()).Warn("E-sign webhook with invalid signature")
		utils.ErrorResponse(c, http.StatusUnauthorized, "INVALID_SIGNATURE", "webhook signature verification failed", nil)
		return
	}

	var event esignEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		utils.BadRequestResponse(c, "Invalid payload", err.Error())
		return
	}

	switch event.Event {
	case "document.completed":
		evidence := map[string]interface{}{
			"provider_document_id": event.DocumentID,
			"signer":               event.Signer,
		}
		link, err := h.signatureService.Complete(event.Token, evidence)
		if err != nil {
			utils.AppErrorResponse(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{
			"link_status": link.Status,
			"sale_status": link.Sale.Status,
		})
	default:
		// Unknown events are acknowledged so the provider stops retrying.
		logrus.WithField("event", event.Event).Info("Ignoring e-sign webhook event")
		utils.SuccessResponse(c, gin.H{"ignored": event.Event})
	}
}
