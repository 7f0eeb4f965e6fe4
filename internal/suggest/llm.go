package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// OpenAIProvider completes prompts with the OpenAI Responses API.
type OpenAIProvider struct {
	APIKey  string
	Model   string
	BaseURL string
}

func (p OpenAIProvider) Source() string { return SourceOpenAI }

func (p OpenAIProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("openai: no API key")
	}
	base := p.BaseURL
	if base == "" {
		base = "https://api.openai.com"
	}
	model := p.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	payload, err := json.Marshal(oaRequest{
		Model:           model,
		Input:           []oaMessage{{Role: "user", Content: []oaBlock{{Type: "input_text", Text: prompt}}}},
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	req, err := httpNewRequest(ctx, base+"/v1/responses", "POST", string(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpDo(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("llm status %d", resp.StatusCode)
	}
	text, err := parseOpenAIResponse(resp)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("openai: empty response")
	}
	return text, nil
}

// --- light http helpers (decoupled for testability) ---

var httpNewRequest = defaultNewRequest
var httpDo = defaultDo
