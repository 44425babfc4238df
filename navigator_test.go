package slrflow

import (
	"context"
	"testing"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/stages"
)

func statusByName(t *testing.T, rows []StageStatus, name string) StageStatus {
	t.Helper()
	for _, row := range rows {
		if row.Name == name {
			return row
		}
	}
	t.Fatalf("stage %q not in status report", name)
	return StageStatus{}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestProjectStatus_FreshProject(t *testing.T) {
	p, _ := newTestPipeline(t)
	rows, err := p.ProjectStatus("nothing-yet")
	if err != nil {
		t.Fatalf("ProjectStatus: %v", err)
	}
	if len(rows) != 8 {
		t.Fatalf("rows = %d, want one per stage", len(rows))
	}

	setup := statusByName(t, rows, stages.StageProjectSetup)
	if !setup.Ready || setup.Complete {
		t.Errorf("setup: ready=%v complete=%v", setup.Ready, setup.Complete)
	}

	framing := statusByName(t, rows, stages.StageProblemFraming)
	if framing.Ready {
		t.Error("framing must not be ready without an approved root")
	}
	if len(framing.Unmet) == 0 {
		t.Error("framing should report its unmet requirement")
	}
}

func TestNavigator_Walk(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx := context.Background()

	_, project, err := p.StartProject(ctx, "review of grounding methods in retrieval systems")
	if err != nil {
		t.Fatalf("StartProject: %v", err)
	}

	// The fresh draft is pending review, so setup is not "next" work.
	pending, err := p.PendingApprovals(project)
	if err != nil {
		t.Fatalf("PendingApprovals: %v", err)
	}
	if !contains(pending, stages.TypeProjectContext) {
		t.Errorf("pending = %v, want the root draft", pending)
	}
	next, err := p.NextStages(project)
	if err != nil {
		t.Fatalf("NextStages: %v", err)
	}
	if contains(next, stages.StageProjectSetup) {
		t.Errorf("next = %v; a stage with a draft in review is not next", next)
	}

	// Approving unlocks framing.
	if _, err := p.ApproveArtifact(ctx, project, stages.TypeProjectContext, nil, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	next, _ = p.NextStages(project)
	if !contains(next, stages.StageProblemFraming) {
		t.Errorf("next = %v, want framing after root approval", next)
	}

	rows, _ := p.ProjectStatus(project)
	setup := statusByName(t, rows, stages.StageProjectSetup)
	if !setup.Complete {
		t.Error("setup should be complete once its artifact is approved")
	}
	if setup.Produced[stages.TypeProjectContext] != artifact.StatusApproved {
		t.Errorf("produced status = %v", setup.Produced)
	}

	// A rejected output puts the stage back into next.
	if _, err := p.RunStage(ctx, project, stages.StageProblemFraming, nil); err != nil {
		t.Fatalf("RunStage: %v", err)
	}
	if _, err := p.RejectArtifact(ctx, project, stages.TypeProblemFraming, "restate the gap"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	next, _ = p.NextStages(project)
	if !contains(next, stages.StageProblemFraming) {
		t.Errorf("next = %v, want framing after a rejection", next)
	}
	pending, _ = p.PendingApprovals(project)
	if !contains(pending, stages.TypeConceptModel) {
		t.Errorf("pending = %v, want the sibling concept model draft", pending)
	}
}
