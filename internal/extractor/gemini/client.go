package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scanscore/internal/config"
	"scanscore/internal/domain"
	"scanscore/internal/extractor"
)

const apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Client calls Google's Gemini API for OCR and field extraction. It
// implements port.OCRProvider and port.FieldExtractor.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a Gemini-backed client.
func NewClient(cfg *config.ProviderConfig) *Client {
	return newClient(cfg, "")
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.ProviderConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// RecognizeText sends the image payload with the OCR prompt and returns the
// model's free-text transcription.
func (c *Client) RecognizeText(ctx context.Context, payload domain.ImagePayload) (string, error) {
	parts := []map[string]interface{}{
		{
			"inline_data": map[string]interface{}{
				"mime_type": payload.ContentType,
				"data":      base64.StdEncoding.EncodeToString(payload.Data),
			},
		},
		{"text": extractor.OCRPrompt},
	}
	return c.generate(ctx, parts, nil)
}

// ExtractFields sends the OCR text with the schema prompt and returns the
// model's JSON output as text.
func (c *Client) ExtractFields(ctx context.Context, rawText string, documentType domain.DocumentType) (string, error) {
	parts := []map[string]interface{}{
		{"text": extractor.BuildSchemaPrompt(rawText, documentType)},
	}
	generationConfig := map[string]interface{}{
		"responseMimeType": "application/json",
		"maxOutputTokens":  16384,
	}
	return c.generate(ctx, parts, generationConfig)
}

func (c *Client) generate(ctx context.Context, parts []map[string]interface{}, generationConfig map[string]interface{}) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": parts,
			},
		},
	}
	if generationConfig != nil {
		reqBody["generationConfig"] = generationConfig
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return "", extractor.NewRateLimitError("gemini", fmt.Errorf("status 429: %s", truncate(string(respBody), 200)), retryAfter)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API: no candidates")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from API: no parts")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
