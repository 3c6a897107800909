package provider

// #region imports
import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// #endregion

// #region gemini-client

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent REST endpoint with JSON
// response mode. One client is safe for concurrent candidate calls.
type GeminiClient struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

// NewGeminiClient creates a client for the given model. Per-call
// deadlines are enforced by the caller's context, not here.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultGeminiEndpoint,
		http:     &http.Client{Timeout: 0},
	}
}

// NewGeminiClientWithEndpoint overrides the API base URL. Used for
// testing against a local stub server.
func NewGeminiClientWithEndpoint(apiKey, model, endpoint string) *GeminiClient {
	c := NewGeminiClient(apiKey, model)
	c.endpoint = endpoint
	return c
}

// #endregion gemini-client

// #region wire-types

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// #endregion wire-types

// #region generate

// Generate performs one generateContent call. Connectivity failures and
// 429/5xx statuses are transient; every other failure is permanent.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0.2,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return Response{}, &PermanentError{Err: fmt.Errorf("encode request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, &PermanentError{Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, &TransientError{Err: fmt.Errorf("generate call: %w", err)}
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, &TransientError{Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode != http.StatusOK {
		reason := fmt.Errorf("generate returned %d: %s", httpResp.StatusCode, truncate(payload, 256))
		if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500 {
			return Response{}, &TransientError{Err: reason}
		}
		return Response{}, &PermanentError{Err: reason}
	}

	var decoded geminiResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Response{}, &PermanentError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return Response{}, &PermanentError{Err: fmt.Errorf("response has no candidates")}
	}

	var text string
	for _, part := range decoded.Candidates[0].Content.Parts {
		text += part.Text
	}

	return Response{Text: text}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// #endregion generate
