// internal/services/esign_service.go
package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/apperrors"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
)

// ESignService proxies the external e-signature provider. The whole contract
// with it is: hand over recipients plus a file, get back a signing URL, and
// later receive a completion signal on the webhook.
type ESignService struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	httpClient    *http.Client
}

type ESignRecipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CreateDocumentResult struct {
	DocumentID string `json:"document_id"`
	SigningURL string `json:"signing_url"`
}

func NewESignService(cfg *config.Config) *ESignService {
	return &ESignService{
		baseURL:       cfg.ESign.BaseURL,
		apiKey:        cfg.ESign.APIKey,
		webhookSecret: cfg.ESign.WebhookSecret,
		httpClient:    &http.Client{Timeout: time.Duration(cfg.ESign.TimeoutSecs) * time.Second},
	}
}

// CreateDocument registers a file with the provider and returns the signing
// URL to embed in the client-facing page.
func (s *ESignService) CreateDocument(ctx context.Context, name string, file []byte, recipients []ESignRecipient) (*CreateDocumentResult, error) {
	if s.baseURL == "" {
		// Provider not configured (local development): fabricate a local
		// document id so the rest of the workflow keeps moving.
		return &CreateDocumentResult{DocumentID: "local-" + uuid.NewString()}, nil
	}

	payload := map[string]interface{}{
		"name":       name,
		"file":       base64.StdEncoding.EncodeToString(file),
		"recipients": recipients,
	}

	var out CreateDocumentResult
	if err := s.post(ctx, "/documents", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ESignService) GetStatus(ctx context.Context, documentID string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := s.get(ctx, "/documents/"+documentID+"/status", &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (s *ESignService) GetCompletedPDF(ctx context.Context, documentID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := s.get(ctx, "/documents/"+documentID+"/completed", &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 hex signature the provider
// attaches to callback payloads.
func (s *ESignService) VerifyWebhookSignature(payload []byte, signature string) bool {
	if s.webhookSecret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	expectedBytes, _ := hex.DecodeString(expected)
	return hmac.Equal(sigBytes, expectedBytes)
}

func (s *ESignService) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	return s.do(req, out)
}

func (s *ESignService) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	return s.do(req, out)
}

func (s *ESignService) do(req *http.Request, out interface{}) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUpstream, "e-sign provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apperrors.Newf(apperrors.KindUpstream, "e-sign provider returned %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode e-sign response: %w", err)
		}
	}
	return nil
}
