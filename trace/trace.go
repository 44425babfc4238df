package trace

import (
	"errors"
	"time"
)

// RunStatus describes the lifecycle state of a recorded run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StepKind classifies a recorded step.
type StepKind string

const (
	// StepPrompt is a prompt sent to a model.
	StepPrompt StepKind = "prompt"
	// StepResponse is a model response.
	StepResponse StepKind = "response"
	// StepEvent is anything else worth recording (a query executed,
	// a validation outcome, a fallback taken).
	StepEvent StepKind = "event"
)

// Sentinel errors for run lifecycle misuse.
var (
	ErrRunExists     = errors.New("run already exists")
	ErrRunNotStarted = errors.New("run not started")
	ErrRunNotFound   = errors.New("run not found")
)

// Step is one recorded unit within a run.
type Step struct {
	ID        int       `json:"id"`
	Kind      StepKind  `json:"kind"`
	Label     string    `json:"label"`
	Content   string    `json:"content,omitempty"`
	TokensIn  int       `json:"tokens_in,omitempty"`
	TokensOut int       `json:"tokens_out,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Meta is the lightweight summary of a run, stored separately from the
// full step list so listings stay cheap.
type Meta struct {
	RunID          string    `json:"run_id"`
	Project        string    `json:"project"`
	Stage          string    `json:"stage"`
	Status         RunStatus `json:"status"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at,omitzero"`
	StepCount      int       `json:"step_count"`
	TotalTokensIn  int       `json:"total_tokens_in,omitempty"`
	TotalTokensOut int       `json:"total_tokens_out,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Run is a complete recorded stage execution.
type Run struct {
	RunID    string `json:"run_id"`
	Metadata Meta   `json:"metadata"`
	Steps    []Step `json:"steps"`
}

// RunMetadata is the caller-supplied part of Meta at run start.
type RunMetadata struct {
	Project string
	Stage   string
}

// Filter narrows run listings.
type Filter struct {
	Project string
	Stage   string
	Status  RunStatus
	After   time.Time
	Before  time.Time
	Limit   int
}

// Manager is the interface for trace operations.
type Manager interface {
	StartRun(runID string, metadata RunMetadata) error
	RecordStep(runID string, step Step) error
	EndRun(runID string, status RunStatus) error
	EndRunWithError(runID string, err error) error

	Load(runID string) (*Run, error)
	LoadMeta(runID string) (*Meta, error)
	List(filter Filter) ([]Meta, error)

	Delete(runID string) error
}
