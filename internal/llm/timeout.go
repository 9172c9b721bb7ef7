package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
)

// timeoutCompleter bounds every completion with a fixed deadline.
type timeoutCompleter struct {
	inner Completer
	d     time.Duration
}

// WithTimeout wraps c so that each Complete call is cut off after d.
// A non-positive d returns c unchanged.
func WithTimeout(c Completer, d time.Duration) Completer {
	if c == nil || d <= 0 {
		return c
	}
	return &timeoutCompleter{inner: c, d: d}
}

func (tc *timeoutCompleter) Name() string { return tc.inner.Name() }

// Close closes the wrapped completer when it holds resources.
func (tc *timeoutCompleter) Close() error {
	if c, ok := tc.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (tc *timeoutCompleter) Complete(ctx context.Context, req Request) (string, error) {
	t := timeout.New[string](timeout.Config{DefaultTimeout: tc.d})

	start := time.Now()
	out, err := t.Execute(ctx, tc.d, func(ctx context.Context) (string, error) {
		return tc.inner.Complete(ctx, req)
	})
	if err == nil {
		return out, nil
	}
	// Caller cancellation is reported as-is; only our own deadline is a timeout.
	if ctx.Err() == nil && (errors.Is(err, context.DeadlineExceeded) || time.Since(start) >= tc.d) {
		return "", fmt.Errorf("%w: %s after %s", ErrTimeout, req.Model, tc.d)
	}
	return "", err
}
