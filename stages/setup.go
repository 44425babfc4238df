package stages

import (
	"context"
	"strings"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/stage"
	"github.com/randalmurphal/slrflow/task"
)

// SetupStrategy turns a raw research idea into a draft ProjectContext,
// the root artifact every other stage hangs off.
//
// Inputs: raw_idea (required), suggested_title (optional override).
type SetupStrategy struct{}

func (SetupStrategy) ValidateInputs(inputs stage.Inputs) []string {
	if strings.TrimSpace(inputs.String("raw_idea")) == "" {
		return []string{"raw_idea must be a non-empty string"}
	}
	return nil
}

func (SetupStrategy) Compute(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs stage.Inputs) (*stage.Output, error) {
	rawIdea := strings.TrimSpace(inputs.String("raw_idea"))
	rec := newRecorder(ctx, project, StageProjectSetup)

	var pc ProjectContext
	meta := modelMetadata(task.Extract)
	err := completeJSON(ctx, rec, "persona_methodologist", "project_context",
		map[string]any{"raw_idea": rawIdea}, &pc)
	if err != nil {
		rec.event("fallback", err.Error())
		pc = heuristicProjectContext(rawIdea)
		meta = heuristicMetadata("project context derived without a model")
	}

	if pc.ShortDescription == "" {
		pc.ShortDescription = rawIdea
	}
	if pc.Title == "" {
		pc.Title = titleFromText(rawIdea)
	}
	if title := strings.TrimSpace(inputs.String("suggested_title")); title != "" {
		pc.Title = title
	}

	rec.finish(nil)
	return &stage.Output{
		Artifacts: []stage.Produced{{Type: TypeProjectContext, Payload: mustJSON(pc)}},
		Metadata:  meta,
		Prompts: []string{
			"Review the generated project title and short_description.",
			"Edit the discipline if it was misidentified.",
			"Add or refine initial_keywords and constraints.",
		},
		Trace: rec.steps,
	}, nil
}
