package trace

import (
	"errors"
	"fmt"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(StoreConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)

	if err := s.StartRun("run-1", RunMetadata{Project: "proj_1", Stage: "problem_framing"}); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	s.RecordStep("run-1", Step{Kind: StepPrompt, Label: "critique", Content: "Critique this.", TokensIn: 120})
	s.RecordStep("run-1", Step{Kind: StepResponse, Label: "critique", Content: "Too vague.", TokensOut: 80})

	if err := s.EndRun("run-1", RunStatusCompleted); err != nil {
		t.Fatalf("EndRun: %v", err)
	}

	run, err := s.Load("run-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(run.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(run.Steps))
	}
	if run.Steps[0].ID != 1 || run.Steps[1].ID != 2 {
		t.Error("steps should be numbered sequentially")
	}
	if run.Metadata.TotalTokensIn != 120 || run.Metadata.TotalTokensOut != 80 {
		t.Errorf("token totals = %d/%d", run.Metadata.TotalTokensIn, run.Metadata.TotalTokensOut)
	}
	if run.Metadata.Status != RunStatusCompleted || run.Metadata.EndedAt.IsZero() {
		t.Errorf("metadata = %+v", run.Metadata)
	}
}

func TestStartRun_Duplicate(t *testing.T) {
	s := newTestStore(t)

	s.StartRun("run-1", RunMetadata{Project: "p", Stage: "setup"})
	if err := s.StartRun("run-1", RunMetadata{}); !errors.Is(err, ErrRunExists) {
		t.Errorf("err = %v, want ErrRunExists", err)
	}

	// Finished runs also block reuse of the ID.
	s.EndRun("run-1", RunStatusCompleted)
	if err := s.StartRun("run-1", RunMetadata{}); !errors.Is(err, ErrRunExists) {
		t.Errorf("err = %v, want ErrRunExists after finish", err)
	}
}

func TestRecordStep_NotStarted(t *testing.T) {
	s := newTestStore(t)
	if err := s.RecordStep("ghost", Step{}); !errors.Is(err, ErrRunNotStarted) {
		t.Errorf("err = %v, want ErrRunNotStarted", err)
	}
}

func TestEndRunWithError(t *testing.T) {
	s := newTestStore(t)

	s.StartRun("run-1", RunMetadata{Project: "p", Stage: "query_execution"})
	s.EndRunWithError("run-1", fmt.Errorf("provider timeout"))

	meta, err := s.LoadMeta("run-1")
	if err != nil {
		t.Fatalf("LoadMeta: %v", err)
	}
	if meta.Status != RunStatusFailed || meta.Error != "provider timeout" {
		t.Errorf("meta = %+v", meta)
	}
}

func TestLoad_ActiveRunIsCopied(t *testing.T) {
	s := newTestStore(t)

	s.StartRun("run-1", RunMetadata{Project: "p", Stage: "setup"})
	s.RecordStep("run-1", Step{Kind: StepEvent, Label: "one"})

	run, err := s.Load("run-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	run.Steps[0].Label = "mutated"

	reloaded, _ := s.Load("run-1")
	if reloaded.Steps[0].Label != "one" {
		t.Error("caller mutation leaked into the live run")
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load("ghost"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
	if _, err := s.LoadMeta("ghost"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestList_Filters(t *testing.T) {
	s := newTestStore(t)

	for i, meta := range []RunMetadata{
		{Project: "proj_1", Stage: "setup"},
		{Project: "proj_1", Stage: "problem_framing"},
		{Project: "proj_2", Stage: "setup"},
	} {
		id := fmt.Sprintf("run-%d", i)
		s.StartRun(id, meta)
		s.EndRun(id, RunStatusCompleted)
	}

	all, err := s.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d", len(all))
	}

	byProject, _ := s.List(Filter{Project: "proj_1"})
	if len(byProject) != 2 {
		t.Errorf("project filter = %d, want 2", len(byProject))
	}

	byStage, _ := s.List(Filter{Stage: "setup"})
	if len(byStage) != 2 {
		t.Errorf("stage filter = %d, want 2", len(byStage))
	}

	limited, _ := s.List(Filter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("limit = %d, want 1", len(limited))
	}
}

func TestListActive(t *testing.T) {
	s := newTestStore(t)

	s.StartRun("run-b", RunMetadata{})
	s.StartRun("run-a", RunMetadata{})

	active := s.ListActive()
	if len(active) != 2 || active[0] != "run-a" {
		t.Errorf("active = %v", active)
	}

	s.EndRun("run-a", RunStatusCompleted)
	if got := s.ListActive(); len(got) != 1 || got[0] != "run-b" {
		t.Errorf("active after end = %v", got)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	s.StartRun("run-1", RunMetadata{})
	s.EndRun("run-1", RunStatusCompleted)

	if err := s.Delete("run-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load("run-1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
	// Deleting again is a no-op.
	if err := s.Delete("run-1"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}
