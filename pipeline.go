package slrflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/errors"
	"github.com/randalmurphal/slrflow/notify"
	"github.com/randalmurphal/slrflow/retrieval"
	"github.com/randalmurphal/slrflow/stage"
	"github.com/randalmurphal/slrflow/stages"
)

// projectIDAlphabet is the character set for generated project ids.
const projectIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Config configures a Pipeline.
type Config struct {
	// Store persists artifacts. Required.
	Store artifact.Store

	// Notifier receives workflow events. Defaults to NopNotifier.
	// Notification failures are logged, never returned.
	Notifier notify.Notifier

	// Retrieval executes database queries for the query-execution
	// stage. Optional; without it that stage fails at run time.
	Retrieval *retrieval.Service

	// SkipBuiltin leaves the registry empty so the caller can
	// register a custom stage set.
	SkipBuiltin bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Pipeline is the single entry point callers interact with. It
// translates external requests into orchestrator and lifecycle calls
// and aggregates the results into stage.Result envelopes.
type Pipeline struct {
	lifecycle *artifact.Manager
	registry  *stage.Registry
	notifier  notify.Notifier
	log       *slog.Logger
}

// New creates a pipeline over the given store and registers the
// built-in stage set unless cfg.SkipBuiltin is set.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("slrflow: Config.Store is required")
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NopNotifier{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	lifecycle := artifact.NewManager(cfg.Store)
	registry := stage.NewRegistry(lifecycle)
	if !cfg.SkipBuiltin {
		if err := stages.RegisterBuiltin(registry, stages.Options{Retrieval: cfg.Retrieval}); err != nil {
			return nil, err
		}
	}
	return &Pipeline{
		lifecycle: lifecycle,
		registry:  registry,
		notifier:  cfg.Notifier,
		log:       cfg.Logger,
	}, nil
}

// Registry exposes the stage registry for custom registrations.
func (p *Pipeline) Registry() *stage.Registry { return p.registry }

// Lifecycle exposes the artifact lifecycle manager.
func (p *Pipeline) Lifecycle() *artifact.Manager { return p.lifecycle }

// StartProject creates a new project from a seed idea: it generates a
// project id and runs the project-setup stage, leaving the root
// artifact as a draft for review. An empty seed comes back as a
// validation failure in the result, not an error.
func (p *Pipeline) StartProject(ctx context.Context, seed string) (*stage.Result, string, error) {
	project, err := nanoid.Generate(projectIDAlphabet, 12)
	if err != nil {
		return nil, "", errors.Infra("generate project id", err)
	}
	project = "project_" + project

	res, err := p.RunStage(ctx, project, stages.StageProjectSetup, stage.Inputs{"raw_idea": seed})
	if err != nil {
		return nil, "", err
	}
	if res.OK() {
		p.notify(ctx, notify.Event{
			Type:     notify.EventProjectCreated,
			Project:  project,
			Stage:    stages.StageProjectSetup,
			Message:  "project created from seed idea",
			Severity: notify.SeverityInfo,
		})
	}
	return res, project, nil
}

// RunStage executes a registered stage. Gate blocks and invalid inputs
// come back as validation errors inside the result; an unknown stage
// name is a caller mistake and is folded in the same way. Only
// infrastructure faults surface as hard errors.
func (p *Pipeline) RunStage(ctx context.Context, project, name string, inputs stage.Inputs) (*stage.Result, error) {
	res, err := p.registry.Run(ctx, project, name, inputs)
	switch {
	case errors.IsUnknownStage(err):
		return &stage.Result{
			Stage:            name,
			Project:          project,
			ValidationErrors: []string{fmt.Sprintf("unknown stage %q", name)},
		}, nil
	case err != nil:
		p.notify(ctx, notify.Event{
			Type:     notify.EventStageFailed,
			Project:  project,
			Stage:    name,
			Message:  err.Error(),
			Severity: notify.SeverityError,
		})
		return nil, err
	}

	if res.Blocked() {
		p.notify(ctx, notify.Event{
			Type:     notify.EventStageBlocked,
			Project:  project,
			Stage:    name,
			Message:  strings.Join(res.ValidationErrors, "; "),
			Severity: notify.SeverityWarning,
		})
		return res, nil
	}

	for _, a := range res.Artifacts {
		p.notify(ctx, notify.Event{
			Type:         notify.EventDraftReady,
			Project:      project,
			Stage:        name,
			ArtifactType: a.Type,
			Message:      fmt.Sprintf("%s draft ready for review", a.Type),
			Severity:     notify.SeverityInfo,
		})
	}
	return res, nil
}

// Resolve reports whether a stage's prerequisites are currently met.
// The answer is advisory; draft creation re-checks at write time.
func (p *Pipeline) Resolve(project, name string) (stage.Readiness, error) {
	return p.registry.Resolve(project, name)
}

// ApproveArtifact approves a draft, applying edits as a shallow merge
// onto the payload first.
func (p *Pipeline) ApproveArtifact(ctx context.Context, project, artifactType string, edits map[string]any, notes string) (artifact.Envelope, error) {
	env, err := p.lifecycle.Approve(project, artifactType, edits, notes)
	if err != nil {
		return artifact.Envelope{}, err
	}
	p.notify(ctx, notify.Event{
		Type:         notify.EventArtifactApproved,
		Project:      project,
		ArtifactType: artifactType,
		Message:      fmt.Sprintf("%s approved", artifactType),
		Severity:     notify.SeverityInfo,
	})
	return env, nil
}

// RejectArtifact rejects a draft.
func (p *Pipeline) RejectArtifact(ctx context.Context, project, artifactType, notes string) (artifact.Envelope, error) {
	env, err := p.lifecycle.Reject(project, artifactType, notes)
	if err != nil {
		return artifact.Envelope{}, err
	}
	p.notify(ctx, notify.Event{
		Type:         notify.EventArtifactRejected,
		Project:      project,
		ArtifactType: artifactType,
		Message:      fmt.Sprintf("%s rejected", artifactType),
		Severity:     notify.SeverityWarning,
	})
	return env, nil
}

// ReopenArtifact moves an approved artifact back to draft, the only
// way an approval is ever undone.
func (p *Pipeline) ReopenArtifact(ctx context.Context, project, artifactType string) (artifact.Envelope, error) {
	env, err := p.lifecycle.Reopen(project, artifactType)
	if err != nil {
		return artifact.Envelope{}, err
	}
	p.log.Info("artifact reopened", "project", project, "type", artifactType)
	p.notify(ctx, notify.Event{
		Type:         notify.EventArtifactReopened,
		Project:      project,
		ArtifactType: artifactType,
		Message:      fmt.Sprintf("%s reopened for revision", artifactType),
		Severity:     notify.SeverityWarning,
	})
	return env, nil
}

// GetArtifact loads the current artifact of a type.
func (p *Pipeline) GetArtifact(project, artifactType string) (artifact.Envelope, bool, error) {
	return p.lifecycle.Get(project, artifactType)
}

// ListArtifacts summarizes every artifact the project has.
func (p *Pipeline) ListArtifacts(project string) (map[string]artifact.Summary, error) {
	return p.lifecycle.List(project)
}

// ProjectSummary is one entry of the project listing.
type ProjectSummary struct {
	Project   string    `json:"project"`
	Artifacts int       `json:"artifacts"`
	Updated   time.Time `json:"updated,omitzero"`
}

// ListProjects enumerates known projects with artifact counts.
func (p *Pipeline) ListProjects() ([]ProjectSummary, error) {
	ids, err := p.lifecycle.Projects()
	if err != nil {
		return nil, err
	}
	summaries := make([]ProjectSummary, 0, len(ids))
	for _, id := range ids {
		listing, err := p.lifecycle.List(id)
		if err != nil {
			return nil, err
		}
		s := ProjectSummary{Project: id, Artifacts: len(listing)}
		for _, entry := range listing {
			if entry.GeneratedAt.After(s.Updated) {
				s.Updated = entry.GeneratedAt
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// StageDefinitions lists the registered stages with their declared
// requirements, for UI gating display.
func (p *Pipeline) StageDefinitions() []stage.Definition {
	return p.registry.Definitions()
}

// notify sends an event without letting the sink fail the call.
func (p *Pipeline) notify(ctx context.Context, event notify.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := p.notifier.Notify(ctx, event); err != nil {
		p.log.Warn("notification failed", "type", event.Type, "error", err)
	}
}
