package stages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	llm "github.com/randalmurphal/llmkit/claude"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/prompt"
	"github.com/randalmurphal/slrflow/stage"
	"github.com/randalmurphal/slrflow/task"
	"github.com/randalmurphal/slrflow/trace"
)

// errNoClient signals that no LLM client is in the context; generating
// strategies treat it as the cue to use their heuristic generator.
var errNoClient = errors.New("no llm client in context")

// recorder accumulates trace steps for a stage run and mirrors them to
// the trace manager when one is in context. Audit recording must never
// fail the stage, so manager errors are swallowed.
type recorder struct {
	mgr   trace.Manager
	runID string
	steps []stage.TraceStep
}

func newRecorder(ctx context.Context, project, stageName string) *recorder {
	r := &recorder{mgr: stage.TraceManagerFromContext(ctx)}
	if r.mgr == nil {
		return r
	}
	id, err := nanoid.New()
	if err != nil {
		r.mgr = nil
		return r
	}
	r.runID = id
	if err := r.mgr.StartRun(id, trace.RunMetadata{Project: project, Stage: stageName}); err != nil {
		r.mgr = nil
	}
	return r
}

func (r *recorder) add(kind trace.StepKind, label, content string, tokensIn, tokensOut int) {
	r.steps = append(r.steps, stage.TraceStep{Label: label, Content: content, At: time.Now().UTC()})
	if r.mgr != nil {
		r.mgr.RecordStep(r.runID, trace.Step{
			Kind: kind, Label: label, Content: content,
			TokensIn: tokensIn, TokensOut: tokensOut,
		})
	}
}

func (r *recorder) prompt(label, content string) {
	r.add(trace.StepPrompt, label, content, 0, 0)
}

func (r *recorder) response(label string, resp *llm.CompletionResponse) {
	r.add(trace.StepResponse, label, resp.Content, resp.Usage.InputTokens, resp.Usage.OutputTokens)
}

func (r *recorder) event(label, content string) {
	r.add(trace.StepEvent, label, content, 0, 0)
}

func (r *recorder) finish(err error) {
	if r.mgr == nil {
		return
	}
	if err != nil {
		r.mgr.EndRunWithError(r.runID, err)
		return
	}
	r.mgr.EndRun(r.runID, trace.RunStatusCompleted)
}

// loaderFrom returns the context's prompt loader or a loader over the
// embedded templates only.
func loaderFrom(ctx context.Context) *prompt.Loader {
	if l := stage.PromptLoaderFromContext(ctx); l != nil {
		return l
	}
	return prompt.NewLoader("")
}

// completeJSON renders the named template, runs it through the LLM
// client with the persona as system prompt, and decodes the JSON
// object in the response into out. Returns errNoClient when the
// context carries no client.
func completeJSON(ctx context.Context, rec *recorder, persona, name string, vars map[string]any, out any) error {
	client := stage.LLMFromContext(ctx)
	if client == nil {
		return errNoClient
	}
	loader := loaderFrom(ctx)

	var system string
	if persona != "" {
		sp, err := loader.Load(persona)
		if err != nil {
			return fmt.Errorf("load persona %s: %w", persona, err)
		}
		system = sp
	}
	userPrompt, err := loader.Render(name, vars)
	if err != nil {
		return fmt.Errorf("render prompt %s: %w", name, err)
	}
	rec.prompt(name, userPrompt)

	resp, err := client.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: userPrompt}},
	})
	if err != nil {
		return fmt.Errorf("complete %s: %w", name, err)
	}
	rec.response(name, resp)

	if err := decodeJSON(resp.Content, out); err != nil {
		return fmt.Errorf("parse %s response: %w", name, err)
	}
	return nil
}

// decodeJSON extracts the outermost JSON object from model output,
// tolerating markdown code fences and surrounding prose.
func decodeJSON(content string, out any) error {
	s := strings.TrimSpace(content)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in model output")
	}
	return json.Unmarshal([]byte(s[start:end+1]), out)
}

// modelMetadata stamps generation metadata for an LLM-produced draft.
func modelMetadata(t task.Type) artifact.Metadata {
	return artifact.Metadata{
		GeneratorID:   string(task.SelectModel(t)),
		Mode:          "model",
		PromptVersion: prompt.Version,
		GeneratedAt:   time.Now().UTC(),
	}
}

// heuristicMetadata stamps metadata for an offline-generated draft.
func heuristicMetadata(notes string) artifact.Metadata {
	return artifact.Metadata{
		GeneratorID: "heuristic",
		Mode:        "heuristic",
		GeneratedAt: time.Now().UTC(),
		Notes:       notes,
	}
}

// syntaxMetadata stamps metadata for deterministically assembled
// drafts (query plans, screening criteria, exports).
func syntaxMetadata(notes string) artifact.Metadata {
	return artifact.Metadata{
		GeneratorID: "syntax-engine",
		Mode:        "syntax",
		GeneratedAt: time.Now().UTC(),
		Notes:       notes,
	}
}

// mustJSON marshals a payload that is built from plain structs and
// cannot fail to encode.
func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("stages: marshal payload: %v", err))
	}
	return b
}

// decodePayload unwraps a prerequisite envelope's payload into a
// typed struct.
func decodePayload[T any](env artifact.Envelope) (T, error) {
	var v T
	if err := json.Unmarshal(env.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return v, nil
}
