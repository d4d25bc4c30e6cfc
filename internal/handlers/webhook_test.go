// internal/handlers/webhook_test.go
package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/services"
)

func newWebhookRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	esignService := services.NewESignService(&config.Config{
		ESign: config.ESignConfig{WebhookSecret: secret, TimeoutSecs: 5},
	})
	handler := NewWebhookHandler(esignService, nil)

	r := gin.New()
	r.POST("/webhooks/esign", handler.HandleESign)
	return r
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	r := newWebhookRouter("secret")
	payload := []byte(`{"event":"document.completed","token":"abc"}`)

	req, _ := http.NewRequest(http.MethodPost, "/webhooks/esign", bytes.NewReader(payload))
	req.Header.Set("X-Esign-Signature", sign("wrong-secret", payload))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	r := newWebhookRouter("secret")
	payload := []byte(`{"event":"document.completed","token":"abc"}`)

	req, _ := http.NewRequest(http.MethodPost, "/webhooks/esign", bytes.NewReader(payload))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAcknowledgesUnknownEvents(t *testing.T) {
	r := newWebhookRouter("secret")
	payload := []byte(`{"event":"document.viewed","token":"abc"}`)

	req, _ := http.NewRequest(http.MethodPost, "/webhooks/esign", bytes.NewReader(payload))
	req.Header.Set("X-Esign-Signature", sign("secret", payload))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Unknown events are acknowledged so the provider stops retrying.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "document.viewed")
}
