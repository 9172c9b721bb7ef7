package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/joescharf/cra/internal/llm"
	"github.com/joescharf/cra/internal/metrics"
	"github.com/joescharf/cra/internal/review"
)

// apiKey returns the configured key for the provider, falling back to the
// provider's conventional environment variable.
func apiKey(provider string) string {
	if k := viper.GetString("llm.api_key"); k != "" {
		return k
	}
	return os.Getenv(llm.APIKeyEnv(provider))
}

// newCompleter creates the model backend from config/env, or returns nil if
// no usable API key is configured.
func newCompleter(ctx context.Context) (llm.Completer, error) {
	provider := viper.GetString("llm.provider")
	key := apiKey(provider)
	if !llm.UsableKey(key) {
		return nil, nil
	}

	c, err := llm.New(ctx, provider, key, viper.GetString("llm.base_url"))
	if err != nil {
		return nil, err
	}
	return llm.WithTimeout(c, viper.GetDuration("llm.timeout")), nil
}

// newReviewer wires the configured backend into a Reviewer. m may be nil.
func newReviewer(ctx context.Context, m *metrics.Recorder) (*review.Reviewer, error) {
	c, err := newCompleter(ctx)
	if err != nil {
		return nil, err
	}

	provider := viper.GetString("llm.provider")
	if c != nil {
		provider = c.Name()
	} else {
		slog.Info("no API key configured, reviews will use the line-count heuristic",
			"provider", provider, "env", llm.APIKeyEnv(provider))
	}

	cfg := review.DefaultConfig(provider)
	cfg.Metrics = m
	cfg.Logger = slog.Default()
	return review.New(c, cfg), nil
}
