package stage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/errors"
)

// Registry maps stage names to their definitions and strategies, answers
// "is this stage runnable now", and executes stages under the lifecycle
// manager's gating. It performs gating, not sequencing: a stage runs the
// moment its declared requirements are satisfied, regardless of its nominal
// number.
type Registry struct {
	lifecycle *artifact.Manager

	mu     sync.RWMutex
	stages map[string]registration
}

type registration struct {
	def      Definition
	strategy Strategy
}

// NewRegistry creates a registry executing against the given lifecycle
// manager.
func NewRegistry(lifecycle *artifact.Manager) *Registry {
	return &Registry{
		lifecycle: lifecycle,
		stages:    make(map[string]registration),
	}
}

// Register adds a stage. Registering the same name twice fails with
// ErrDuplicateStage.
func (r *Registry) Register(def Definition, strategy Strategy) error {
	if err := def.validate(); err != nil {
		return err
	}
	if strategy == nil {
		return fmt.Errorf("stage %q has no strategy", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stages[def.Name]; exists {
		return fmt.Errorf("register %q: %w", def.Name, errors.ErrDuplicateStage)
	}
	r.stages[def.Name] = registration{def: def, strategy: strategy}
	return nil
}

// Definition returns the registered definition for a stage name.
func (r *Registry) Definition(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.stages[name]
	return reg.def, ok
}

// Definitions returns all registered definitions, ordered by nominal number
// then name. The order is for display only.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.stages))
	for _, reg := range r.stages {
		defs = append(defs, reg.def)
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Number != defs[j].Number {
			return defs[i].Number < defs[j].Number
		}
		return defs[i].Name < defs[j].Name
	})
	return defs
}

// Resolve checks each declared requirement against the lifecycle manager.
// The answer is advisory: a prerequisite can change status between Resolve
// and Run, so persistence is guarded again at draft-creation time.
func (r *Registry) Resolve(project, name string) (Readiness, error) {
	r.mu.RLock()
	reg, ok := r.stages[name]
	r.mu.RUnlock()
	if !ok {
		return Readiness{}, fmt.Errorf("resolve %q: %w", name, errors.ErrUnknownStage)
	}

	var unmet []Unmet
	for _, req := range reg.def.Requires {
		status, exists, err := r.lifecycle.StatusOf(project, req.Type)
		if err != nil {
			return Readiness{}, err
		}
		switch {
		case !exists:
			unmet = append(unmet, Unmet{Type: req.Type, Required: req.MinStatus, Absent: true})
		case !status.Satisfies(req.MinStatus):
			unmet = append(unmet, Unmet{Type: req.Type, Required: req.MinStatus, Actual: status})
		}
	}
	return Readiness{Ready: len(unmet) == 0, Unmet: unmet}, nil
}

// Run executes a stage for a project. Gate blocks and input validation
// failures return a Result with validation errors and zero writes; a
// successful computation persists every produced artifact as a draft.
// Unknown stage names and lifecycle protocol violations are hard errors for
// the facade to translate.
func (r *Registry) Run(ctx context.Context, project, name string, inputs Inputs) (*Result, error) {
	r.mu.RLock()
	reg, ok := r.stages[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("run %q: %w", name, errors.ErrUnknownStage)
	}

	ready, err := r.Resolve(project, name)
	if err != nil {
		return nil, err
	}
	if !ready.Ready {
		msgs := make([]string, len(ready.Unmet))
		for i, u := range ready.Unmet {
			msgs[i] = u.String()
		}
		slog.Debug("stage blocked", "stage", name, "project", project, "unmet", len(msgs))
		return blockedResult(name, project, msgs), nil
	}

	if msgs := reg.strategy.ValidateInputs(inputs); len(msgs) > 0 {
		return blockedResult(name, project, msgs), nil
	}

	prereqs, err := r.loadPrereqs(project, reg.def)
	if err != nil {
		return nil, err
	}

	out, err := reg.strategy.Compute(ctx, project, prereqs, inputs)
	if err != nil {
		return nil, errors.Infra(fmt.Sprintf("stage %s compute", name), err)
	}
	if len(out.Artifacts) == 0 {
		return nil, errors.Infra(fmt.Sprintf("stage %s compute", name),
			fmt.Errorf("strategy produced no artifacts"))
	}

	// Pre-flight before persisting anything: every produced type must be
	// declared and must not currently be approved. This keeps a
	// multi-artifact stage from leaving partial state behind when its
	// second draft would be refused. Locks are per (project, type), so a
	// concurrent approve landing between this check and a later
	// CreateDraft can still refuse that draft after earlier ones
	// persisted; closing that window would need a cross-key transaction
	// the Store interface does not offer.
	for _, p := range out.Artifacts {
		if !reg.def.produces(p.Type) {
			return nil, fmt.Errorf("stage %q produced undeclared artifact type %q", name, p.Type)
		}
		status, exists, err := r.lifecycle.StatusOf(project, p.Type)
		if err != nil {
			return nil, err
		}
		if exists && status == artifact.StatusApproved {
			return nil, &errors.TransitionError{
				Project: project, Type: p.Type, Op: "draft", From: string(status),
			}
		}
	}

	result := &Result{
		Stage:    name,
		Project:  project,
		Metadata: out.Metadata,
		Prompts:  out.Prompts,
		Trace:    out.Trace,
	}
	for _, p := range out.Artifacts {
		env, err := r.lifecycle.CreateDraft(project, p.Type, p.Payload, out.Metadata)
		if err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, env)
	}

	slog.Debug("stage completed",
		"stage", name, "project", project, "artifacts", len(result.Artifacts))
	return result, nil
}

// loadPrereqs loads the declared required artifacts. Resolve already vouched
// for them; a vanished artifact between the two steps surfaces as absent
// here and the strategy sees a smaller map.
func (r *Registry) loadPrereqs(project string, def Definition) (map[string]artifact.Envelope, error) {
	prereqs := make(map[string]artifact.Envelope, len(def.Requires))
	for _, req := range def.Requires {
		env, ok, err := r.lifecycle.Get(project, req.Type)
		if err != nil {
			return nil, err
		}
		if ok {
			prereqs[req.Type] = env
		}
	}
	return prereqs, nil
}
