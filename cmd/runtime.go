package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/ai"
	cfgpkg "github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/config"
)

type runtimeOptions struct {
	ProviderFlag string
	ModelFlag    string
}

// buildNarrator wires the configured provider into an ai.Narrator. The
// returned narrator may be unavailable (e.g. no API key); callers fall back.
func buildNarrator(c *cfgpkg.Global, opts runtimeOptions) (*ai.Narrator, string, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.ProviderFlag))
	if provider == "" {
		provider = c.Provider
	}
	if provider == "local" {
		provider = ai.ProviderOllama
	}
	model := strings.TrimSpace(opts.ModelFlag)
	if model == "" {
		model = c.Model
	}

	rc := ai.RuntimeConfig{
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
		RetryMax:    c.RetryMaxAttempts,
		BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
	}
	if provider == ai.ProviderOllama {
		rc.BaseURL = c.OllamaHost
		rc.HTTPTimeout = time.Duration(c.OllamaTimeoutSec) * time.Second
	}
	rt, ok := ai.GetRuntime(provider, rc)
	if !ok {
		return nil, provider, fmt.Errorf("provider not supported: %s (use %s)", provider, strings.Join(ai.Providers(), "|"))
	}
	n := ai.NewNarrator(rt, ai.NarratorConfig{
		Provider:    provider,
		Model:       model,
		APIKey:      c.APIKey,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	})
	return n, provider, nil
}

// explainAIError turns provider errors into an actionable hint.
func explainAIError(err error, provider, model string) error {
	var (
		authErr *ai.AuthError
		rlErr   *ai.RateLimitError
		nfErr   *ai.ModelNotFoundError
		brErr   *ai.BadRequestError
		qErr    *ai.QuotaExceededError
		sErr    *ai.ServerError
		unreach *ai.UnreachableError
	)
	switch {
	case errors.As(err, &unreach):
		if provider == ai.ProviderOllama {
			return fmt.Errorf("Ollama not reachable at %s. Ensure Ollama is running and 'ollama_host' is correct: %w", unreach.Host, err)
		}
		return fmt.Errorf("endpoint unreachable. Check your network and provider settings: %w", err)
	case errors.As(err, &authErr):
		return fmt.Errorf("authentication failed: set %s_API_KEY (or OPENAI_API_KEY) or 'reportagent config set api_key ...': %w", cfgpkg.EnvPrefix, err)
	case errors.As(err, &rlErr):
		if rlErr.RetryAfter > 0 {
			return fmt.Errorf("rate limited, try again in ~%ds: %w", int(rlErr.RetryAfter.Seconds()), err)
		}
		return fmt.Errorf("rate limited by provider, please retry: %w", err)
	case errors.As(err, &nfErr):
		if provider == ai.ProviderOllama {
			return fmt.Errorf("local model not available (%s). Install it with 'ollama pull %s' or choose another model: %w", model, model, err)
		}
		return fmt.Errorf("model not found (%s). Verify the model name: %w", model, err)
	case errors.As(err, &brErr):
		return fmt.Errorf("request invalid. Try a smaller max_tokens: %w", err)
	case errors.As(err, &qErr):
		return fmt.Errorf("quota/billing issue. Check your provider account: %w", err)
	case errors.As(err, &sErr):
		return fmt.Errorf("provider appears unavailable (server error). Please retry later: %w", err)
	}
	return err
}
