// internal/services/esign_service_test.go
package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/apperrors"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
)

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	svc := NewESignService(&config.Config{
		ESign: config.ESignConfig{WebhookSecret: "shhh", TimeoutSecs: 5},
	})

	payload := []byte(`{"event":"document.completed","token":"abc"}`)

	t.Run("valid signature", func(t *testing.T) {
		assert.True(t, svc.VerifyWebhookSignature(payload, signPayload("shhh", payload)))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, svc.VerifyWebhookSignature(payload, signPayload("otro", payload)))
	})

	t.Run("tampered payload", func(t *testing.T) {
		sig := signPayload("shhh", payload)
		assert.False(t, svc.VerifyWebhookSignature([]byte(`{"event":"x"}`), sig))
	})

	t.Run("garbage signature", func(t *testing.T) {
		assert.False(t, svc.VerifyWebhookSignature(payload, "not-hex"))
	})

	t.Run("no secret configured rejects everything", func(t *testing.T) {
		unconfigured := NewESignService(&config.Config{ESign: config.ESignConfig{TimeoutSecs: 5}})
		assert.False(t, unconfigured.VerifyWebhookSignature(payload, signPayload("", payload)))
	})
}

func TestCreateDocumentUnconfigured(t *testing.T) {
	svc := NewESignService(&config.Config{ESign: config.ESignConfig{TimeoutSecs: 5}})

	result, err := svc.CreateDocument(context.Background(), "contrato.pdf", []byte("pdf"), nil)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.DocumentID, "local-"))
}

func TestCreateDocumentAgainstProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"document_id":"doc-1","signing_url":"https://provider/sign/doc-1"}`))
	}))
	defer server.Close()

	svc := NewESignService(&config.Config{
		ESign: config.ESignConfig{BaseURL: server.URL, APIKey: "test-key", TimeoutSecs: 5},
	})

	result, err := svc.CreateDocument(context.Background(), "contrato.pdf", []byte("pdf"),
		[]ESignRecipient{{Name: "María", Email: "maria@example.com"}})
	assert.NoError(t, err)
	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Equal(t, "https://provider/sign/doc-1", result.SigningURL)
}

func TestProviderErrorsMapToUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewESignService(&config.Config{
		ESign: config.ESignConfig{BaseURL: server.URL, APIKey: "test-key", TimeoutSecs: 5},
	})

	_, err := svc.GetStatus(context.Background(), "doc-1")
	assert.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
}
