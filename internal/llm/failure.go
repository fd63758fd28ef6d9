package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a gateway failure.
type Kind int

const (
	KindNone Kind = iota
	// KindRateLimited means the provider rejected the call for exceeding a quota (HTTP 429).
	KindRateLimited
	// KindTransient covers network errors and 5xx responses.
	KindTransient
	// KindFatal is everything else: bad credentials, bad requests, cancellation.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure is the error every Gateway implementation returns.
type Failure struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("gateway failure (status %d): %s", f.StatusCode, f.Message)
	}
	return "gateway failure: " + f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// NewFailure builds a Failure, deriving its kind from the status code and message.
func NewFailure(statusCode int, err error) *Failure {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Failure{
		Kind:       classify(statusCode, msg, err),
		StatusCode: statusCode,
		Message:    msg,
		Err:        err,
	}
}

func classify(statusCode int, msg string, err error) Kind {
	switch {
	case statusCode == http.StatusTooManyRequests, strings.Contains(msg, "429"):
		return KindRateLimited
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindFatal
	case statusCode == 0, statusCode >= 500:
		return KindTransient
	default:
		return KindFatal
	}
}

// KindOf classifies any error returned by a gateway. Errors that are not a
// *Failure fall back to looking for "429" in the message.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	if strings.Contains(err.Error(), "429") {
		return KindRateLimited
	}
	return KindFatal
}

// IsRateLimited reports whether err is a throttling failure.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}
