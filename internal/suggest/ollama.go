package suggest

import (
	"context"

	"curator/internal/ollama"
)

// DefaultOllamaModel is the local model used for explanations.
const DefaultOllamaModel = "qwen3:8b"

// OllamaProvider completes prompts on a local Ollama server.
type OllamaProvider struct {
	Client *ollama.Client
	Model  string
}

func (p OllamaProvider) Source() string { return SourceOllama }

func (p OllamaProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	model := p.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	return p.Client.Generate(ctx, model, prompt, maxTokens)
}
