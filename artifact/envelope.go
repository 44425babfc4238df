package artifact

import (
	"encoding/json"
	"time"
)

// Metadata records how an artifact draft was generated.
type Metadata struct {
	GeneratorID   string    `json:"generatorId"`             // model name or "heuristic"
	Mode          string    `json:"mode,omitempty"`          // "model", "heuristic", "syntax"
	PromptVersion string    `json:"promptVersion,omitempty"` // template version used
	GeneratedAt   time.Time `json:"generatedAt"`
	Notes         string    `json:"notes,omitempty"`
}

// Envelope is the uniform wrapper around every stored artifact. The payload
// is opaque to the lifecycle manager and the orchestrator; only the producing
// stage strategy knows its shape.
type Envelope struct {
	Type       string          `json:"type"`
	Status     Status          `json:"status"`
	Metadata   Metadata        `json:"metadata"`
	ApprovedAt *time.Time      `json:"approvedAt,omitempty"`
	UserNotes  string          `json:"userNotes,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Summary is the per-type listing entry returned by Manager.List.
type Summary struct {
	Status      Status     `json:"status"`
	GeneratedAt time.Time  `json:"generatedAt"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
}

// mergePayload applies edits as a shallow merge onto a JSON object payload.
// A nil payload is treated as an empty object. Non-object payloads cannot
// take edits.
func mergePayload(payload json.RawMessage, edits map[string]any) (json.RawMessage, error) {
	if len(edits) == 0 {
		return payload, nil
	}

	obj := map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &obj); err != nil {
			return nil, err
		}
	}
	for k, v := range edits {
		obj[k] = v
	}
	return json.Marshal(obj)
}
