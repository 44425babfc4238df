package slrflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/slrflow/stage"
)

// FlowState is the state threaded through a composed pipeline flow.
// This shape is compatible with flowgraph's NodeFunc[FlowState].
type FlowState struct {
	Project string
	Results []*stage.Result

	// LastResult is the most recent stage outcome, nil before any
	// stage has run.
	LastResult *stage.Result
}

// NodeFunc processes flow state and returns updated state.
type NodeFunc func(ctx context.Context, state FlowState) (FlowState, error)

// StageNode builds a node that runs one pipeline stage. A blocked
// result stops the flow with an error naming the unmet requirements,
// since downstream nodes depend on the stage's drafts existing.
func StageNode(p *Pipeline, name string, inputs stage.Inputs) NodeFunc {
	return func(ctx context.Context, state FlowState) (FlowState, error) {
		res, err := p.RunStage(ctx, state.Project, name, inputs)
		if err != nil {
			return state, err
		}
		state.LastResult = res
		state.Results = append(state.Results, res)
		if res.Blocked() {
			return state, fmt.Errorf("stage %s blocked: %v", name, res.ValidationErrors)
		}
		return state, nil
	}
}

// ApproveNode builds a node that approves one artifact type, for
// flows where a human already signed off out of band.
func ApproveNode(p *Pipeline, artifactType string) NodeFunc {
	return func(ctx context.Context, state FlowState) (FlowState, error) {
		if _, err := p.ApproveArtifact(ctx, state.Project, artifactType, nil, ""); err != nil {
			return state, err
		}
		return state, nil
	}
}

// WithRetry wraps a node with bounded retries.
func WithRetry(node NodeFunc, maxRetries int) NodeFunc {
	return func(ctx context.Context, state FlowState) (FlowState, error) {
		var lastErr error
		for i := 0; i < maxRetries; i++ {
			result, err := node(ctx, state)
			if err == nil {
				return result, nil
			}
			lastErr = err
		}
		return state, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
	}
}

// WithTiming wraps a node with debug timing logs.
func WithTiming(node NodeFunc, name string) NodeFunc {
	return func(ctx context.Context, state FlowState) (FlowState, error) {
		start := time.Now()
		result, err := node(ctx, state)
		slog.Debug("node completed",
			"node", name, "project", state.Project, "duration", time.Since(start), "err", err)
		return result, err
	}
}

// Sequence chains nodes, stopping at the first error.
func Sequence(nodes ...NodeFunc) NodeFunc {
	return func(ctx context.Context, state FlowState) (FlowState, error) {
		var err error
		for _, node := range nodes {
			state, err = node(ctx, state)
			if err != nil {
				return state, err
			}
		}
		return state, nil
	}
}
