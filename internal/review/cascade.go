package review

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joescharf/cra/internal/llm"
	"github.com/joescharf/cra/internal/metrics"
)

var tracer = otel.Tracer("github.com/joescharf/cra/internal/review")

// OutcomeKind tells the orchestrator what a cascade invocation produced.
type OutcomeKind int

const (
	// OutcomeText means a backend answered.
	OutcomeText OutcomeKind = iota
	// OutcomeUnavailable means no backend could be used: no credential,
	// quota exhausted, or every model was unknown.
	OutcomeUnavailable
	// OutcomeFailed means a backend call failed for any other reason.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeText:
		return "text"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return "failed"
	}
}

// Outcome is the result of one cascade invocation.
type Outcome struct {
	Kind  OutcomeKind
	Text  string
	Model string
	Err   error
}

// Cascade tries an ordered list of models on a single backend until one
// answers.
type Cascade struct {
	completer   llm.Completer
	models      []string
	temperature float64
	maxTokens   int
	metrics     *metrics.Recorder
	logger      *slog.Logger
}

// NewCascade creates a cascade over cfg.Models. A nil completer means no
// credential is configured and every invocation is Unavailable.
func NewCascade(c llm.Completer, cfg Config) *Cascade {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{
		completer:   c,
		models:      append([]string(nil), cfg.Models...),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		metrics:     cfg.Metrics,
		logger:      logger,
	}
}

// Invoke sends prompt to each model in order. It stops at the first answer,
// aborts on quota exhaustion, skips unknown models, and gives up on any other
// error.
func (c *Cascade) Invoke(ctx context.Context, prompt string) Outcome {
	if c.completer == nil {
		c.logger.Debug("no model backend configured")
		return Outcome{Kind: OutcomeUnavailable}
	}

	for _, model := range c.models {
		text, err := c.attempt(ctx, model, prompt)
		if err == nil {
			c.metrics.ObserveAttempt(model, "ok")
			c.logger.Debug("backend answered", "model", model)
			return Outcome{Kind: OutcomeText, Text: text, Model: model}
		}

		failure := llm.Classify(err)
		c.metrics.ObserveAttempt(model, failure.String())

		switch failure {
		case llm.FailureQuota:
			c.logger.Warn("backend quota exhausted", "model", model, "error", err)
			return Outcome{Kind: OutcomeUnavailable, Model: model, Err: err}
		case llm.FailureModelNotFound:
			c.logger.Info("model not available, trying next", "model", model, "error", err)
			continue
		default:
			c.logger.Error("backend call failed", "model", model, "error", err)
			return Outcome{Kind: OutcomeFailed, Model: model, Err: err}
		}
	}

	c.logger.Warn("no configured model is available", "models", c.models)
	return Outcome{Kind: OutcomeUnavailable}
}

func (c *Cascade) attempt(ctx context.Context, model, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "review.backend",
		trace.WithAttributes(
			attribute.String("llm.provider", c.completer.Name()),
			attribute.String("llm.model", model),
		))
	defer span.End()

	text, err := c.completer.Complete(ctx, llm.Request{
		Model:       model,
		System:      SystemPrompt,
		Prompt:      prompt,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return text, nil
}
