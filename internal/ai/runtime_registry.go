package ai

import (
	"sort"
	"time"
)

// RuntimeFactory builds a Runtime from the generic config below.
type RuntimeFactory func(RuntimeConfig) Runtime

// RuntimeConfig carries the knobs shared by runtimes.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// APIKey authenticates hosted providers.
	APIKey string
	// BaseURL overrides the provider endpoint; for Ollama it is the host.
	BaseURL string
}

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[name] = f }

// GetRuntime creates a Runtime for the given provider if registered.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, bool) {
	if f, ok := registry[name]; ok {
		return f(cfg), true
	}
	return nil, false
}

// Providers lists the registered provider names.
func Providers() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func hostedFactory(defaultURL string) RuntimeFactory {
	return func(c RuntimeConfig) Runtime {
		url := c.BaseURL
		if url == "" {
			url = defaultURL
		}
		return NewClient(c.APIKey, url, c.HTTPTimeout, newRetryPolicy(c.RetryMax, c.BaseDelay, c.MaxDelay, 3, 500*time.Millisecond, 4*time.Second))
	}
}

func init() {
	RegisterRuntime(ProviderOpenAI, hostedFactory("https://api.openai.com/v1"))
	RegisterRuntime(ProviderOpenRouter, hostedFactory("https://openrouter.ai/api/v1"))
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) Runtime {
		return NewOllamaClient(c.BaseURL, c.HTTPTimeout, newRetryPolicy(c.RetryMax, c.BaseDelay, c.MaxDelay, 2, 200*time.Millisecond, time.Second))
	})
}
