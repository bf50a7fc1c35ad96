package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanscore/internal/config"
	"scanscore/internal/domain"
	"scanscore/internal/extractor"
)

func testConfig() *config.ProviderConfig {
	return &config.ProviderConfig{Provider: "openai", APIKey: "test-key", Model: "gpt-4o"}
}

func chatReply(content string) string {
	b, _ := json.Marshal(content)
	return `{"choices": [{"message": {"content": ` + string(b) + `}}]}`
}

func TestRecognizeText(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(chatReply("WITHDRAWAL SLIP\nAccount Number")))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	out, err := c.RecognizeText(context.Background(), domain.ImagePayload{
		Data:        []byte("fake image"),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "WITHDRAWAL SLIP\nAccount Number", out)

	messages := gotBody["messages"].([]interface{})
	content := messages[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, content, 2)
	imageURL := content[0].(map[string]interface{})["image_url"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(imageURL["url"].(string), "data:image/jpeg;base64,"))
}

func TestExtractFields(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(chatReply(`{"document_type": "withdrawal_slip_front"}`)))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	out, err := c.ExtractFields(context.Background(), "ocr text", domain.DocumentTypeWithdrawalFront)
	require.NoError(t, err)
	assert.JSONEq(t, `{"document_type": "withdrawal_slip_front"}`, out)

	respFormat := gotBody["response_format"].(map[string]interface{})
	assert.Equal(t, "json_object", respFormat["type"])
}

func TestRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	_, err := c.ExtractFields(context.Background(), "text", domain.DocumentTypeUnknown)
	require.Error(t, err)

	var rlErr *extractor.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "openai", rlErr.Provider)
}

func TestEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	_, err := c.ExtractFields(context.Background(), "text", domain.DocumentTypeUnknown)
	assert.ErrorContains(t, err, "no choices")
}
