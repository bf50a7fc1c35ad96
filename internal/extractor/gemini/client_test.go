package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanscore/internal/config"
	"scanscore/internal/domain"
	"scanscore/internal/extractor"
)

func testConfig() *config.ProviderConfig {
	return &config.ProviderConfig{Provider: "gemini", APIKey: "test-key", Model: "gemini-1.5-flash"}
}

func geminiReply(text string) string {
	return `{"candidates": [{"content": {"parts": [{"text": ` + mustJSON(text) + `}]}, "finishReason": "STOP"}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestRecognizeText(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(geminiReply("BANK OF THE PHILIPPINE ISLANDS\nDeposit Slip")))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	out, err := c.RecognizeText(context.Background(), domain.ImagePayload{
		Data:        []byte("fake image"),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "BANK OF THE PHILIPPINE ISLANDS\nDeposit Slip", out)

	// The request carries the inline image and the OCR prompt.
	contents := gotBody["contents"].([]interface{})
	parts := contents[0].(map[string]interface{})["parts"].([]interface{})
	require.Len(t, parts, 2)
	inline := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
	assert.Equal(t, "image/jpeg", inline["mime_type"])
	assert.Equal(t, extractor.OCRPrompt, parts[1].(map[string]interface{})["text"])
}

func TestExtractFields(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(geminiReply(`{"document_type": "deposit_slip_front"}`)))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	out, err := c.ExtractFields(context.Background(), "some ocr text", domain.DocumentTypeDepositSlipFront)
	require.NoError(t, err)
	assert.JSONEq(t, `{"document_type": "deposit_slip_front"}`, out)

	genCfg := gotBody["generationConfig"].(map[string]interface{})
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
}

func TestRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "quota exceeded"}`))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	_, err := c.RecognizeText(context.Background(), domain.ImagePayload{Data: []byte("x"), ContentType: "image/jpeg"})
	require.Error(t, err)

	var rlErr *extractor.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "gemini", rlErr.Provider)
	assert.Equal(t, float64(17), rlErr.RetryAfter.Seconds())
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	_, err := c.ExtractFields(context.Background(), "text", domain.DocumentTypeUnknown)
	assert.ErrorContains(t, err, "status 500")
}

func TestEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	_, err := c.ExtractFields(context.Background(), "text", domain.DocumentTypeUnknown)
	assert.ErrorContains(t, err, "no candidates")
}
