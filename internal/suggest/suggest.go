// Package suggest produces natural-language explanations for recommended creators.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Reason sources. SourceSystem marks the deterministic template, never a model.
const (
	SourceSystem = "System"
	SourceOllama = "Ollama"
	SourceOpenAI = "OpenAI"
)

// ErrNoSummary is returned when no provider could summarize.
var ErrNoSummary = errors.New("no summary available")

// Reason is an explanation and who wrote it.
type Reason struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Generator is the text-generation collaborator.
type Generator interface {
	GenerateReason(ctx context.Context, candidate, matched string, topics []string) (Reason, error)
	Summarize(ctx context.Context, name, research string) (string, error)
}

// Template is the fallback explanation used when no model answers.
func Template(matched string, topics []string) Reason {
	vibe := ""
	if len(topics) > 0 {
		vibe = fmt.Sprintf(" (vibe: %s)", strings.Join(topics, ", "))
	}
	return Reason{Text: fmt.Sprintf("Semantic match with %s%s.", matched, vibe), Source: SourceSystem}
}

func reasonPrompt(candidate, matched string, topics []string) string {
	focus := "similar topics"
	if len(topics) > 0 {
		focus = strings.Join(topics, ", ")
	}
	return fmt.Sprintf("Explain in one short sentence why someone who loves the YouTube creator %q (who focuses on %s) would also like %q. Keep it conversational and brief.",
		matched, focus, candidate)
}

func summaryPrompt(name, research string) string {
	return fmt.Sprintf("Summarize what the YouTube creator %q makes in two sentences, naming their main topics. Use only these search results:\n%s",
		name, trimForPrompt(research, 4000))
}

func trimForPrompt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// cleanReply strips quoting and reasoning tags some local models emit.
func cleanReply(s string) string {
	if i := strings.LastIndex(s, "</think>"); i >= 0 {
		s = s[i+len("</think>"):]
	}
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"“”")
	return strings.TrimSpace(s)
}
