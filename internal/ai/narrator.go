package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/utils"
)

// NarratorConfig selects the model and sampling for narrated answers.
type NarratorConfig struct {
	Provider    string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	// DigestTokenLimit caps the analysis context sent with the question.
	DigestTokenLimit int
}

const systemPrompt = "You are a business analyst. Answer the user's question about an analyzed business file using only the analysis below. Be concise, use bullet points where helpful, and say so when the analysis does not contain the answer."

// Narrator answers questions with a chat model. It satisfies
// analysis.Narrator.
type Narrator struct {
	rt  Runtime
	cfg NarratorConfig
}

var _ analysis.Narrator = (*Narrator)(nil)

// NewNarrator wraps rt. Zero fields in cfg take defaults.
func NewNarrator(rt Runtime, cfg NarratorConfig) *Narrator {
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.DigestTokenLimit <= 0 {
		cfg.DigestTokenLimit = 3000
	}
	return &Narrator{rt: rt, cfg: cfg}
}

// Available reports whether a backend is configured. Hosted providers also
// need an API key.
func (n *Narrator) Available() bool {
	if n == nil || n.rt == nil || n.cfg.Model == "" {
		return false
	}
	return n.cfg.Provider == ProviderOllama || n.cfg.APIKey != ""
}

// Narrate asks the model the question with the analysis digest attached.
func (n *Narrator) Narrate(ctx context.Context, req analysis.NarrationRequest) (string, error) {
	if !n.Available() {
		return "", errors.New("narrator is not configured")
	}
	digest := utils.TruncateToTokenLimit(req.Digest, n.cfg.DigestTokenLimit)
	resp, err := n.rt.Generate(ctx, GenerateRequest{
		Model: n.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Analysis:\n%s\n\nQuestion: %s", digest, req.Question)},
		},
		MaxTokens:   n.cfg.MaxTokens,
		Temperature: n.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("narrate: %w", err)
	}
	text := strings.TrimSpace(resp.Content())
	if text == "" {
		return "", errors.New("narrate: empty completion")
	}
	return text, nil
}
