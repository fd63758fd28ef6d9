package llm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFailureClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		want   Kind
	}{
		{name: "status 429", status: 429, err: errors.New("too many requests"), want: KindRateLimited},
		{name: "429 in message only", status: 0, err: errors.New("Error 429: rate limited"), want: KindRateLimited},
		{name: "server error", status: 503, err: errors.New("unavailable"), want: KindTransient},
		{name: "network error", status: 0, err: errors.New("connection refused"), want: KindTransient},
		{name: "bad request", status: 400, err: errors.New("invalid model"), want: KindFatal},
		{name: "unauthorized", status: 401, err: errors.New("invalid api key"), want: KindFatal},
		{name: "cancelled", status: 0, err: errors.Wrap(context.Canceled, "call"), want: KindFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFailure(tt.status, tt.err)
			assert.Equal(t, tt.want, f.Kind)
			assert.Equal(t, tt.want, KindOf(f))
		})
	}
}

func TestKindOfForeignErrors(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindRateLimited, KindOf(errors.New("upstream said 429")))
	assert.Equal(t, KindFatal, KindOf(errors.New("boom")))

	wrapped := errors.Wrap(NewFailure(429, errors.New("slow down")), "research")
	assert.True(t, IsRateLimited(wrapped))
}

func TestFailureMessageKeepsStatus(t *testing.T) {
	f := NewFailure(429, errors.New("quota exceeded"))
	require.Contains(t, f.Error(), "429")
	assert.Equal(t, "rate_limited", f.Kind.String())
}
