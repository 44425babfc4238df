package stage

import (
	"fmt"
	"time"

	"github.com/randalmurphal/slrflow/artifact"
)

// TraceStep is one recorded step of a stage's generation work, kept for
// audit (prompts sent, completions received, decisions taken).
type TraceStep struct {
	Label   string    `json:"label"` // e.g. "prompt", "completion", "fallback"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Unmet describes one prerequisite a blocked stage is missing.
type Unmet struct {
	Type     string          `json:"type"`
	Required artifact.Status `json:"required"`
	Actual   artifact.Status `json:"actual,omitempty"` // empty when absent
	Absent   bool            `json:"absent,omitempty"`
}

func (u Unmet) String() string {
	if u.Absent {
		return fmt.Sprintf("requires %s at %s: artifact does not exist", u.Type, u.Required)
	}
	return fmt.Sprintf("requires %s at %s: current status is %s", u.Type, u.Required, u.Actual)
}

// Readiness is the advisory answer to "can this stage run now". It is
// UX-facing: the authoritative guard against clobbering approved artifacts
// is the lifecycle manager's own draft precondition.
type Readiness struct {
	Ready bool
	Unmet []Unmet
}

// Result is the uniform envelope every stage run returns. Gate blocks and
// input problems appear as ValidationErrors with no artifacts (soft
// failure); only infrastructure faults surface as hard errors alongside a
// nil result.
type Result struct {
	Stage            string              `json:"stage"`
	Project          string              `json:"project,omitempty"`
	Artifacts        []artifact.Envelope `json:"artifacts,omitempty"`
	Metadata         artifact.Metadata   `json:"metadata,omitempty"`
	Prompts          []string            `json:"prompts,omitempty"`
	Trace            []TraceStep         `json:"trace,omitempty"`
	ValidationErrors []string            `json:"validationErrors,omitempty"`
}

// OK reports whether the run produced artifacts with no validation errors.
func (r *Result) OK() bool {
	return len(r.ValidationErrors) == 0 && len(r.Artifacts) > 0
}

// Blocked reports whether the run was refused before any side effect.
func (r *Result) Blocked() bool {
	return len(r.ValidationErrors) > 0
}

// Artifact returns the produced envelope with the given type, if any.
func (r *Result) Artifact(artifactType string) (artifact.Envelope, bool) {
	for _, a := range r.Artifacts {
		if a.Type == artifactType {
			return a, true
		}
	}
	return artifact.Envelope{}, false
}

// blockedResult builds the soft-failure result for a gate block or input
// problem.
func blockedResult(stageName, project string, msgs []string) *Result {
	return &Result{
		Stage:            stageName,
		Project:          project,
		ValidationErrors: msgs,
	}
}
