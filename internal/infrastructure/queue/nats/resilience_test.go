package nats

import (
	"context"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/hazref/hazsearch/internal/core/domain"
)

func TestClassifyNATSError(t *testing.T) {
	cases := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{"nil", nil, false, false},
		{"canceled", context.Canceled, false, false},
		{"deadline", context.DeadlineExceeded, false, false},
		{"no_servers", nats.ErrNoServers, true, true},
		{"timeout", nats.ErrTimeout, true, true},
		{"closed", nats.ErrConnectionClosed, true, true},
		{"disconnected", fmt.Errorf("publish: %w", nats.ErrDisconnected), true, true},
		{"other", fmt.Errorf("invalid subject"), false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			class := classifyNATSError(tc.err)
			if class.Retryable != tc.retryable || class.RecordFailure != tc.recordFailure {
				t.Fatalf("classification = %+v", class)
			}
		})
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	if err := wrapTemporaryIfNeeded(nil); err != nil {
		t.Fatalf("nil must stay nil, got %v", err)
	}

	wrapped := wrapTemporaryIfNeeded(nats.ErrTimeout)
	if !domain.IsKind(wrapped, domain.ErrTemporary) {
		t.Fatalf("timeout must surface as temporary, got %v", wrapped)
	}

	// Already-tagged errors are not wrapped twice.
	if again := wrapTemporaryIfNeeded(wrapped); again != wrapped {
		t.Fatalf("double wrap: %v", again)
	}

	permanent := fmt.Errorf("invalid subject")
	if err := wrapTemporaryIfNeeded(permanent); err != permanent {
		t.Fatalf("permanent error changed: %v", err)
	}
}
