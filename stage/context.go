package stage

import (
	"context"

	llm "github.com/randalmurphal/llmkit/claude"

	"github.com/randalmurphal/slrflow/prompt"
	"github.com/randalmurphal/slrflow/trace"
)

// serviceContextKey is a private type for context keys to avoid collisions.
type serviceContextKey string

const (
	llmServiceKey    serviceContextKey = "slrflow.llm"
	promptServiceKey serviceContextKey = "slrflow.prompts"
	traceServiceKey  serviceContextKey = "slrflow.trace"
)

// WithLLMClient adds an LLM client to the context. Strategies that find no
// client fall back to their deterministic generators.
func WithLLMClient(ctx context.Context, client llm.Client) context.Context {
	return context.WithValue(ctx, llmServiceKey, client)
}

// LLMFromContext extracts the LLM client from context, or nil.
func LLMFromContext(ctx context.Context) llm.Client {
	if client, ok := ctx.Value(llmServiceKey).(llm.Client); ok {
		return client
	}
	return nil
}

// MustLLMFromContext extracts the LLM client or panics.
func MustLLMFromContext(ctx context.Context) llm.Client {
	client := LLMFromContext(ctx)
	if client == nil {
		panic("slrflow: llm.Client not found in context")
	}
	return client
}

// WithPromptLoader adds a prompt loader to the context.
func WithPromptLoader(ctx context.Context, loader *prompt.Loader) context.Context {
	return context.WithValue(ctx, promptServiceKey, loader)
}

// PromptLoaderFromContext extracts the prompt loader from context, or nil.
func PromptLoaderFromContext(ctx context.Context) *prompt.Loader {
	if loader, ok := ctx.Value(promptServiceKey).(*prompt.Loader); ok {
		return loader
	}
	return nil
}

// WithTraceManager adds a generation trace manager to the context.
func WithTraceManager(ctx context.Context, mgr trace.Manager) context.Context {
	return context.WithValue(ctx, traceServiceKey, mgr)
}

// TraceManagerFromContext extracts the trace manager from context, or nil.
func TraceManagerFromContext(ctx context.Context) trace.Manager {
	if mgr, ok := ctx.Value(traceServiceKey).(trace.Manager); ok {
		return mgr
	}
	return nil
}
