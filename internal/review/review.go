package review

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joescharf/cra/internal/llm"
	"github.com/joescharf/cra/internal/metrics"
	"github.com/joescharf/cra/internal/models"
)

// Report paths, used as the metrics label and span attribute.
const (
	PathBackend   = "backend"
	PathFallback  = "fallback"
	PathHeuristic = "heuristic"
	PathError     = "error"
)

const errorSuggestion = "Please check your model backend configuration and API key and try again"

// Config holds reviewer configuration.
type Config struct {
	Models      []string
	Temperature float64
	MaxTokens   int
	// Strict turns an unavailable backend into an error report instead of
	// a heuristic one.
	Strict bool

	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// DefaultConfig returns the review config for provider, reading overrides
// from viper when available.
func DefaultConfig(provider string) Config {
	models := splitModels(viper.GetStringSlice("llm.models"))
	if len(models) == 0 {
		models = llm.DefaultModels[provider]
	}
	if len(models) == 0 {
		models = llm.DefaultModels[llm.ProviderOpenAI]
	}

	temperature := 0.3
	if viper.IsSet("llm.temperature") {
		temperature = viper.GetFloat64("llm.temperature")
	}

	maxTokens := viper.GetInt("llm.max_tokens")
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	return Config{
		Models:      models,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Strict:      viper.GetBool("review.strict"),
	}
}

// splitModels accepts both YAML lists and comma-separated env values such as
// CRA_LLM_MODELS=gpt-4o,gpt-4.
func splitModels(entries []string) []string {
	var out []string
	for _, e := range entries {
		for _, m := range strings.Split(e, ",") {
			if m = strings.TrimSpace(m); m != "" {
				out = append(out, m)
			}
		}
	}
	return out
}

// Reviewer turns a source file into a ReviewReport. It is safe for
// concurrent use.
type Reviewer struct {
	cascade *Cascade
	strict  bool
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// New creates a Reviewer backed by c. Pass a nil completer when no
// credential is configured.
func New(c llm.Completer, cfg Config) *Reviewer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Logger = logger
	return &Reviewer{
		cascade: NewCascade(c, cfg),
		strict:  cfg.Strict,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// Analyze reviews one file. It never fails: backend problems are reported
// inside the returned report.
func (r *Reviewer) Analyze(ctx context.Context, filename, content string) models.ReviewReport {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "review.analyze",
		trace.WithAttributes(
			attribute.String("review.filename", filename),
			attribute.String("review.language", Language(filename)),
		))
	defer span.End()

	report, path := r.analyze(ctx, filename, content)

	span.SetAttributes(attribute.String("review.path", path))
	if path == PathError {
		span.SetStatus(codes.Error, report.Report)
	}
	r.metrics.ObserveReview(path, time.Since(start))
	r.logger.Info("review complete",
		"filename", filename,
		"path", path,
		"overall", report.Scores.Overall,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return report
}

func (r *Reviewer) analyze(ctx context.Context, filename, content string) (models.ReviewReport, string) {
	out := r.cascade.Invoke(ctx, BuildPrompt(filename, content))

	switch out.Kind {
	case OutcomeText:
		if rep, ok := interpret(out.Text); ok {
			return rep, PathBackend
		}
		r.logger.Warn("model answer was not a valid review, using raw text", "model", out.Model)
		return fallbackReport(out.Text), PathFallback
	case OutcomeUnavailable:
		if r.strict {
			return errorReport("no model backend is available"), PathError
		}
		return Heuristic(filename, content), PathHeuristic
	default:
		msg := "unknown backend failure"
		if out.Err != nil {
			msg = out.Err.Error()
		}
		return errorReport(msg), PathError
	}
}

// Close releases resources held by the model backend, if any.
func (r *Reviewer) Close() error {
	if c, ok := r.cascade.completer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func errorReport(msg string) models.ReviewReport {
	return models.ReviewReport{
		Report:      "Error analyzing code: " + msg,
		Scores:      models.ReviewScores{},
		Suggestions: []string{errorSuggestion},
	}
}
