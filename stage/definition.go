package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/randalmurphal/slrflow/artifact"
)

// Requirement declares one input artifact a stage needs before it may run,
// with the minimum status the artifact must be in.
type Requirement struct {
	Type      string          `json:"type"`
	MinStatus artifact.Status `json:"minStatus"`
}

// Definition is the static registration record for one stage. Definitions
// are registered once at startup and never mutated at runtime.
//
// Number is the stage's nominal label for display only. Gating always flows
// from Requires/Produces: the natural run order is not monotonic in the
// numbering (a later-numbered stage's output can feed an earlier-numbered
// one), so the declared dependency graph is the only ground truth.
type Definition struct {
	Name     string        `json:"name"`
	Number   int           `json:"number"`
	Produces []string      `json:"produces"`
	Requires []Requirement `json:"requires,omitempty"`
}

func (d Definition) validate() error {
	if d.Name == "" {
		return fmt.Errorf("stage definition has no name")
	}
	if len(d.Produces) == 0 {
		return fmt.Errorf("stage %q produces no artifact types", d.Name)
	}
	seen := make(map[string]bool, len(d.Produces))
	for _, p := range d.Produces {
		if p == "" {
			return fmt.Errorf("stage %q produces an empty artifact type", d.Name)
		}
		if seen[p] {
			return fmt.Errorf("stage %q declares %q twice in produces", d.Name, p)
		}
		seen[p] = true
	}
	for _, r := range d.Requires {
		if r.Type == "" {
			return fmt.Errorf("stage %q requires an empty artifact type", d.Name)
		}
		if !r.MinStatus.Valid() {
			return fmt.Errorf("stage %q requires %q with invalid status %q", d.Name, r.Type, r.MinStatus)
		}
	}
	return nil
}

// produces reports whether typ is one of the declared outputs.
func (d Definition) produces(typ string) bool {
	for _, p := range d.Produces {
		if p == typ {
			return true
		}
	}
	return false
}

// Inputs are the caller-supplied parameters for one stage run.
type Inputs map[string]any

// String returns the input named key as a string, or "" if absent or not a
// string.
func (in Inputs) String(key string) string {
	s, _ := in[key].(string)
	return s
}

// Int returns the input named key as an int, or def if absent.
func (in Inputs) Int(key string, def int) int {
	switch v := in[key].(type) {
	case int:
		return v
	case float64: // JSON-decoded numbers
		return int(v)
	}
	return def
}

// Bool returns the input named key as a bool, or def if absent.
func (in Inputs) Bool(key string, def bool) bool {
	if v, ok := in[key].(bool); ok {
		return v
	}
	return def
}

// Produced is one artifact emitted by a strategy computation, before
// persistence.
type Produced struct {
	Type    string
	Payload json.RawMessage
}

// Output is what a strategy computation returns on success. The orchestrator
// persists each produced artifact as a draft through the lifecycle manager;
// strategies never touch the store.
type Output struct {
	Artifacts []Produced
	Metadata  artifact.Metadata
	Prompts   []string    // suggested review questions for the HITL surface
	Trace     []TraceStep // ordered generation steps for audit
}

// Strategy is the pluggable computation behind a stage. Implementations own
// payload construction; they never mutate artifact status and never persist
// anything themselves.
type Strategy interface {
	// ValidateInputs checks caller-supplied inputs before any side effect.
	// A non-empty return aborts the run with no writes.
	ValidateInputs(inputs Inputs) []string

	// Compute produces the stage's draft artifacts from the loaded
	// prerequisite envelopes and the caller inputs. Blocking work must
	// honor ctx; a failure here is a stage-execution error, never a
	// partial write.
	Compute(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs Inputs) (*Output, error)
}
