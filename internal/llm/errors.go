package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrQuotaExhausted signals a billing or rate-limit failure. It applies to
	// the whole account, so no other model on the same credential will succeed.
	ErrQuotaExhausted = errors.New("quota exhausted")

	// ErrModelNotFound signals that the requested model identifier is unknown
	// or not available to this account.
	ErrModelNotFound = errors.New("model not found")

	// ErrTimeout signals that a single completion exceeded its deadline.
	ErrTimeout = errors.New("completion timed out")
)

// Failure is the cascade-relevant category of a completion error.
type Failure int

const (
	FailureOther Failure = iota
	FailureQuota
	FailureModelNotFound
)

func (f Failure) String() string {
	switch f {
	case FailureQuota:
		return "quota"
	case FailureModelNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

var quotaMarkers = []string{
	"insufficient_quota",
	"quota",
	"billing",
	"rate limit",
	"rate_limit",
	"too many requests",
	"resource_exhausted",
}

var notFoundMarkers = []string{
	"model_not_found",
	"does not exist",
	"not_found_error",
	"not found",
}

// Classify maps a completion error onto a Failure category. Typed sentinels
// win; otherwise the provider's error text is searched for known markers.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureOther
	case errors.Is(err, ErrQuotaExhausted):
		return FailureQuota
	case errors.Is(err, ErrModelNotFound):
		return FailureModelNotFound
	case errors.Is(err, ErrTimeout), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureOther
	}

	msg := strings.ToLower(err.Error())
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return FailureQuota
		}
	}
	for _, m := range notFoundMarkers {
		if strings.Contains(msg, m) {
			return FailureModelNotFound
		}
	}
	return FailureOther
}

// wrapStatus attaches a sentinel to an SDK error based on its HTTP status.
func wrapStatus(provider string, status int, err error) error {
	switch status {
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		return fmt.Errorf("%s API call: %w: %w", provider, ErrQuotaExhausted, err)
	case http.StatusNotFound:
		return fmt.Errorf("%s API call: %w: %w", provider, ErrModelNotFound, err)
	default:
		return fmt.Errorf("%s API call: %w", provider, err)
	}
}
