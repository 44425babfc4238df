package slrflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/randalmurphal/slrflow/stage"
	"github.com/randalmurphal/slrflow/stages"
)

func TestStageNode_BlockedStopsFlow(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx := context.Background()

	_, project, _ := p.StartProject(ctx, "an idea")
	node := StageNode(p, stages.StageProblemFraming, nil)

	state, err := node(ctx, FlowState{Project: project})
	if err == nil {
		t.Fatal("blocked stage must stop the flow")
	}
	if !strings.Contains(err.Error(), stages.StageProblemFraming) {
		t.Errorf("error should name the stage: %v", err)
	}
	if state.LastResult != nil {
		t.Error("state from before the node should be returned unchanged")
	}
}

func TestSequence_SetupApproveFraming(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx := context.Background()

	flow := Sequence(
		StageNode(p, stages.StageProjectSetup, stage.Inputs{"raw_idea": "review of grounding methods"}),
		ApproveNode(p, stages.TypeProjectContext),
		StageNode(p, stages.StageProblemFraming, nil),
	)

	state, err := flow(ctx, FlowState{Project: "project_flowtest"})
	if err != nil {
		t.Fatalf("flow: %v", err)
	}
	if len(state.Results) != 2 {
		t.Fatalf("results = %d, want one per stage node", len(state.Results))
	}
	if state.LastResult.Stage != stages.StageProblemFraming {
		t.Errorf("last result = %q", state.LastResult.Stage)
	}
	if !state.LastResult.OK() {
		t.Errorf("framing failed: %v", state.LastResult.ValidationErrors)
	}
}

func TestWithRetry(t *testing.T) {
	attempts := 0
	flaky := func(ctx context.Context, state FlowState) (FlowState, error) {
		attempts++
		if attempts < 3 {
			return state, errors.New("transient")
		}
		return state, nil
	}

	if _, err := WithRetry(flaky, 5)(context.Background(), FlowState{}); err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}

	attempts = 0
	if _, err := WithRetry(flaky, 2)(context.Background(), FlowState{}); err == nil {
		t.Fatal("exhausted retries must fail")
	}
}

func TestWithTiming_PassesThrough(t *testing.T) {
	node := WithTiming(func(ctx context.Context, state FlowState) (FlowState, error) {
		state.Project = "stamped"
		return state, nil
	}, "probe")

	state, err := node(context.Background(), FlowState{})
	if err != nil {
		t.Fatalf("timing wrapper: %v", err)
	}
	if state.Project != "stamped" {
		t.Error("wrapped node's state change lost")
	}
}
