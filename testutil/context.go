package testutil

import (
	"context"
	"testing"
	"time"
)

// TestContext returns a context tied to the test's lifetime: it is
// canceled on cleanup, so goroutines a test starts get torn down.
func TestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// TestContextWithTimeout is TestContext with an additional deadline,
// for tests exercising blocking retrieval or model calls.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelableContext returns a context plus its cancel func for tests
// that cancel mid-flight; cleanup cancels it regardless.
func CancelableContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx, cancel
}
