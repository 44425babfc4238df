package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/errors"
	"github.com/randalmurphal/slrflow/store"
)

// stubStrategy is a configurable Strategy for registry tests.
type stubStrategy struct {
	validate func(Inputs) []string
	compute  func(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs Inputs) (*Output, error)
	calls    int
}

func (s *stubStrategy) ValidateInputs(inputs Inputs) []string {
	if s.validate != nil {
		return s.validate(inputs)
	}
	return nil
}

func (s *stubStrategy) Compute(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs Inputs) (*Output, error) {
	s.calls++
	if s.compute != nil {
		return s.compute(ctx, project, prereqs, inputs)
	}
	return &Output{
		Artifacts: []Produced{{Type: "Out", Payload: json.RawMessage(`{"n":1}`)}},
		Metadata:  artifact.Metadata{GeneratorID: "stub"},
	}, nil
}

func newTestRegistry() (*Registry, *artifact.Manager, *store.MemStore) {
	st := store.NewMemStore()
	lm := artifact.NewManager(st)
	return NewRegistry(lm), lm, st
}

func outDef(name string) Definition {
	return Definition{Name: name, Produces: []string{"Out"}}
}

func TestRegister_Duplicate(t *testing.T) {
	r, _, _ := newTestRegistry()

	if err := r.Register(outDef("setup"), &stubStrategy{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := r.Register(outDef("setup"), &stubStrategy{})
	if !errors.IsDuplicateStage(err) {
		t.Errorf("err = %v, want duplicate stage", err)
	}
}

func TestRegister_Invalid(t *testing.T) {
	r, _, _ := newTestRegistry()

	cases := []Definition{
		{Name: "", Produces: []string{"Out"}},
		{Name: "x"},
		{Name: "x", Produces: []string{"Out", "Out"}},
		{Name: "x", Produces: []string{"Out"}, Requires: []Requirement{{Type: "In", MinStatus: "bogus"}}},
	}
	for _, def := range cases {
		if err := r.Register(def, &stubStrategy{}); err == nil {
			t.Errorf("Register(%+v) should fail", def)
		}
	}
}

func TestResolve_UnknownStage(t *testing.T) {
	r, _, _ := newTestRegistry()

	_, err := r.Resolve("proj_1", "nope")
	if !errors.IsUnknownStage(err) {
		t.Errorf("err = %v, want unknown stage", err)
	}
}

func TestResolve_Gating(t *testing.T) {
	r, lm, _ := newTestRegistry()

	def := Definition{
		Name:     "framing",
		Produces: []string{"Out"},
		Requires: []Requirement{{Type: "Root", MinStatus: artifact.StatusApproved}},
	}
	r.Register(def, &stubStrategy{})

	// Absent prerequisite.
	ready, err := r.Resolve("proj_1", "framing")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ready.Ready || len(ready.Unmet) != 1 || !ready.Unmet[0].Absent {
		t.Errorf("absent: %+v", ready)
	}

	// Draft does not satisfy an approved requirement.
	lm.CreateDraft("proj_1", "Root", []byte(`{}`), artifact.Metadata{GeneratorID: "t"})
	ready, _ = r.Resolve("proj_1", "framing")
	if ready.Ready {
		t.Error("draft should not satisfy approved requirement")
	}
	if ready.Unmet[0].Actual != artifact.StatusDraft {
		t.Errorf("actual = %s", ready.Unmet[0].Actual)
	}

	// Approved satisfies.
	lm.Approve("proj_1", "Root", nil, "")
	ready, _ = r.Resolve("proj_1", "framing")
	if !ready.Ready {
		t.Errorf("approved should satisfy: %+v", ready.Unmet)
	}
}

func TestResolve_RejectedNeverSatisfies(t *testing.T) {
	r, lm, _ := newTestRegistry()

	def := Definition{
		Name:     "framing",
		Produces: []string{"Out"},
		Requires: []Requirement{{Type: "Root", MinStatus: artifact.StatusDraft}},
	}
	r.Register(def, &stubStrategy{})

	lm.CreateDraft("proj_1", "Root", []byte(`{}`), artifact.Metadata{GeneratorID: "t"})
	lm.Reject("proj_1", "Root", "")

	ready, _ := r.Resolve("proj_1", "framing")
	if ready.Ready {
		t.Error("rejected artifact must not satisfy any requirement")
	}
}

func TestRun_GateBlockedZeroWrites(t *testing.T) {
	r, _, st := newTestRegistry()

	def := Definition{
		Name:     "framing",
		Produces: []string{"Out"},
		Requires: []Requirement{{Type: "Root", MinStatus: artifact.StatusApproved}},
	}
	strat := &stubStrategy{}
	r.Register(def, strat)

	res, err := r.Run(context.Background(), "proj_1", "framing", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Blocked() || res.OK() {
		t.Errorf("result should be blocked: %+v", res)
	}
	if len(res.Artifacts) != 0 {
		t.Error("blocked run must produce no artifacts")
	}
	if !strings.Contains(res.ValidationErrors[0], "Root") ||
		!strings.Contains(res.ValidationErrors[0], "approved") {
		t.Errorf("error should name type and required status: %q", res.ValidationErrors[0])
	}
	if strat.calls != 0 {
		t.Error("strategy must not run when blocked")
	}
	if st.Puts() != 0 {
		t.Errorf("blocked run wrote %d times, want 0", st.Puts())
	}
}

func TestRun_InputValidationZeroWrites(t *testing.T) {
	r, _, st := newTestRegistry()

	strat := &stubStrategy{
		validate: func(in Inputs) []string {
			if in.String("seed") == "" {
				return []string{"seed must be a non-empty string"}
			}
			return nil
		},
	}
	r.Register(outDef("setup"), strat)

	res, err := r.Run(context.Background(), "proj_1", "setup", Inputs{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Blocked() {
		t.Error("result should carry validation errors")
	}
	if strat.calls != 0 || st.Puts() != 0 {
		t.Errorf("no side effects expected: calls=%d puts=%d", strat.calls, st.Puts())
	}
}

func TestRun_PersistsDrafts(t *testing.T) {
	r, lm, _ := newTestRegistry()
	r.Register(outDef("setup"), &stubStrategy{})

	res, err := r.Run(context.Background(), "proj_1", "setup", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK() {
		t.Fatalf("result not OK: %+v", res)
	}

	env, ok, _ := lm.Get("proj_1", "Out")
	if !ok || env.Status != artifact.StatusDraft {
		t.Errorf("persisted artifact: ok=%v status=%s", ok, env.Status)
	}
	if string(env.Payload) != `{"n":1}` {
		t.Errorf("payload = %s", env.Payload)
	}
}

func TestRun_SecondDraftReplacesFirst(t *testing.T) {
	r, lm, _ := newTestRegistry()

	n := 0
	strat := &stubStrategy{
		compute: func(context.Context, string, map[string]artifact.Envelope, Inputs) (*Output, error) {
			n++
			return &Output{
				Artifacts: []Produced{{Type: "Out", Payload: json.RawMessage(fmt.Sprintf(`{"run":%d}`, n))}},
				Metadata:  artifact.Metadata{GeneratorID: "stub"},
			}, nil
		},
	}
	r.Register(outDef("setup"), strat)

	r.Run(context.Background(), "proj_1", "setup", nil)
	r.Run(context.Background(), "proj_1", "setup", nil)

	env, _, _ := lm.Get("proj_1", "Out")
	if string(env.Payload) != `{"run":2}` {
		t.Errorf("payload = %s, want second run", env.Payload)
	}
	types, _ := lm.List("proj_1")
	if len(types) != 1 {
		t.Errorf("artifact count = %d, want 1", len(types))
	}
}

func TestRun_RefusesToClobberApproved(t *testing.T) {
	r, lm, _ := newTestRegistry()
	r.Register(outDef("setup"), &stubStrategy{})

	r.Run(context.Background(), "proj_1", "setup", nil)
	lm.Approve("proj_1", "Out", nil, "")

	_, err := r.Run(context.Background(), "proj_1", "setup", nil)
	if !errors.IsInvalidTransition(err) {
		t.Errorf("err = %v, want invalid transition", err)
	}

	env, _, _ := lm.Get("proj_1", "Out")
	if env.Status != artifact.StatusApproved {
		t.Error("approved artifact must be untouched")
	}
}

func TestRun_UndeclaredProduceFails(t *testing.T) {
	r, _, st := newTestRegistry()

	strat := &stubStrategy{
		compute: func(context.Context, string, map[string]artifact.Envelope, Inputs) (*Output, error) {
			return &Output{
				Artifacts: []Produced{{Type: "Sneaky", Payload: json.RawMessage(`{}`)}},
			}, nil
		},
	}
	r.Register(outDef("setup"), strat)

	if _, err := r.Run(context.Background(), "proj_1", "setup", nil); err == nil {
		t.Fatal("undeclared artifact type should fail")
	}
	if st.Puts() != 0 {
		t.Error("failed run must not persist")
	}
}

func TestRun_ComputeErrorNoPersistence(t *testing.T) {
	r, _, st := newTestRegistry()

	strat := &stubStrategy{
		compute: func(context.Context, string, map[string]artifact.Envelope, Inputs) (*Output, error) {
			return nil, fmt.Errorf("model provider unreachable")
		},
	}
	r.Register(outDef("setup"), strat)

	_, err := r.Run(context.Background(), "proj_1", "setup", nil)
	if !errors.IsInfrastructure(err) {
		t.Errorf("err = %v, want infrastructure", err)
	}
	if st.Puts() != 0 {
		t.Error("failed compute must not persist")
	}
}

func TestRun_PrereqsPassedToStrategy(t *testing.T) {
	r, lm, _ := newTestRegistry()

	var seen map[string]artifact.Envelope
	def := Definition{
		Name:     "framing",
		Produces: []string{"Out"},
		Requires: []Requirement{{Type: "Root", MinStatus: artifact.StatusApproved}},
	}
	strat := &stubStrategy{
		compute: func(_ context.Context, _ string, prereqs map[string]artifact.Envelope, _ Inputs) (*Output, error) {
			seen = prereqs
			return &Output{
				Artifacts: []Produced{{Type: "Out", Payload: json.RawMessage(`{}`)}},
			}, nil
		},
	}
	r.Register(def, strat)

	lm.CreateDraft("proj_1", "Root", []byte(`{"title":"T"}`), artifact.Metadata{GeneratorID: "t"})
	lm.Approve("proj_1", "Root", nil, "")

	if _, err := r.Run(context.Background(), "proj_1", "framing", nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env, ok := seen["Root"]; !ok || env.Status != artifact.StatusApproved {
		t.Errorf("strategy saw prereqs %+v", seen)
	}
}

func TestRun_DisjointStagesConcurrently(t *testing.T) {
	r, lm, _ := newTestRegistry()

	lm.CreateDraft("proj_1", "Root", []byte(`{}`), artifact.Metadata{GeneratorID: "t"})
	lm.Approve("proj_1", "Root", nil, "")

	req := []Requirement{{Type: "Root", MinStatus: artifact.StatusApproved}}
	mkStrat := func(typ string) *stubStrategy {
		return &stubStrategy{
			compute: func(context.Context, string, map[string]artifact.Envelope, Inputs) (*Output, error) {
				return &Output{Artifacts: []Produced{{Type: typ, Payload: json.RawMessage(`{}`)}}}, nil
			},
		}
	}
	r.Register(Definition{Name: "left", Produces: []string{"Left"}, Requires: req}, mkStrat("Left"))
	r.Register(Definition{Name: "right", Produces: []string{"Right"}, Requires: req}, mkStrat("Right"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, name := range []string{"left", "right"} {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			res, err := r.Run(context.Background(), "proj_1", name, nil)
			if err == nil && !res.OK() {
				err = fmt.Errorf("%s not OK: %v", name, res.ValidationErrors)
			}
			errs[i] = err
		}(i, name)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Errorf("concurrent run: %v", err)
		}
	}
	for _, typ := range []string{"Left", "Right"} {
		if _, ok, _ := lm.Get("proj_1", typ); !ok {
			t.Errorf("artifact %s missing after concurrent runs", typ)
		}
	}
}

func TestDefinitions_Ordering(t *testing.T) {
	r, _, _ := newTestRegistry()

	r.Register(Definition{Name: "export", Number: 6, Produces: []string{"Bundle"}}, &stubStrategy{})
	r.Register(Definition{Name: "setup", Number: 0, Produces: []string{"Root"}}, &stubStrategy{})
	r.Register(Definition{Name: "execution", Number: 7, Produces: []string{"Results"}}, &stubStrategy{})

	defs := r.Definitions()
	got := make([]string, len(defs))
	for i, d := range defs {
		got[i] = d.Name
	}
	want := []string{"setup", "export", "execution"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
