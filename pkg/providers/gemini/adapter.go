package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harunnryd/kirana/pkg/genai"
	"github.com/harunnryd/kirana/pkg/resilience"
	"github.com/tidwall/gjson"
)

// Adapter talks to the Gemini generateContent REST API.
type Adapter struct {
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
	Client     *http.Client

	breaker *resilience.CircuitBreaker
}

func NewAdapter(apiKey, model string) *Adapter {
	return &Adapter{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (a *Adapter) Name() string { return "gemini" }

// UseCircuitBreaker blocks further requests after repeated rate-limit
// failures.
func (a *Adapter) UseCircuitBreaker(threshold int, cooldown time.Duration) {
	a.breaker = resilience.NewCircuitBreaker(threshold, cooldown)
}

func (a *Adapter) Generate(ctx context.Context, req genai.Request) (genai.Message, error) {
	if a.breaker != nil && !a.breaker.Allow() {
		return genai.Message{}, resilience.RateLimitError{Provider: "gemini", Message: "circuit open"}
	}

	body, err := a.buildRequest(req)
	if err != nil {
		return genai.Message{}, err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", a.BaseURL, a.Model)
	payload, err := a.post(ctx, url, body)
	if a.breaker != nil {
		if err != nil {
			a.breaker.OnError(err)
		} else {
			a.breaker.OnSuccess()
		}
	}
	if err != nil {
		return genai.Message{}, err
	}

	candidate := gjson.GetBytes(payload, "candidates.0.content")
	if !candidate.Exists() {
		return genai.Message{}, errors.New("gemini: response contains no candidates")
	}
	var msg genai.Message
	if err := json.Unmarshal([]byte(candidate.Raw), &msg); err != nil {
		return genai.Message{}, fmt.Errorf("gemini: decode candidate: %w", err)
	}
	if msg.Role == "" {
		msg.Role = genai.RoleModel
	}
	return msg, nil
}

func (a *Adapter) buildRequest(req genai.Request) (*bytes.Buffer, error) {
	payload := map[string]any{
		"contents": req.Messages,
	}
	if req.SystemInstruction != "" {
		payload["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": req.SystemInstruction}},
		}
	}
	if len(req.Tools) > 0 {
		payload["tools"] = []map[string]any{
			{"functionDeclarations": req.Tools},
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return bytes.NewBuffer(b), nil
}

func (a *Adapter) post(ctx context.Context, url string, body *bytes.Buffer) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", a.APIKey)

	resp, err := a.client().Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, resilience.RateLimitError{Provider: "gemini", Message: string(payload)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := gjson.GetBytes(payload, "error.message"); msg.Exists() {
			return nil, fmt.Errorf("gemini: %s", msg.String())
		}
		return nil, fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}
	return payload, nil
}

func (a *Adapter) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return http.DefaultClient
}
