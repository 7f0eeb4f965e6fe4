package suggest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type oaRequest struct {
	Model           string      `json:"model"`
	Input           []oaMessage `json:"input"`
	MaxOutputTokens int         `json:"max_output_tokens,omitempty"`
}

type oaMessage struct {
	Role    string    `json:"role"`
	Content []oaBlock `json:"content"`
}

type oaBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type oaResp struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []oaBlock `json:"content"`
	} `json:"output"`
}

var defaultClient = &http.Client{Timeout: 30 * time.Second}

func defaultNewRequest(ctx context.Context, url, method, body string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
}

func defaultDo(req *http.Request) (*http.Response, error) {
	return defaultClient.Do(req)
}

// parseOpenAIResponse prefers the output_text convenience field and falls back
// to the first text block of the output list.
func parseOpenAIResponse(resp *http.Response) (string, error) {
	var raw oaResp
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	if raw.OutputText != "" {
		return raw.OutputText, nil
	}
	for _, o := range raw.Output {
		for _, c := range o.Content {
			if c.Text != "" {
				return c.Text, nil
			}
		}
	}
	return "", nil
}
