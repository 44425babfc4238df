package stages

import (
	"context"
	"fmt"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/stage"
	"github.com/randalmurphal/slrflow/task"
)

// FramingStrategy decomposes an approved ProjectContext into a
// ProblemFraming and a ConceptModel. The model path runs two passes: a
// critic pass that scores the draft context, then a refinement pass
// that must address every issue the critic raised. Both artifacts come
// out of the second pass.
type FramingStrategy struct{}

func (FramingStrategy) ValidateInputs(stage.Inputs) []string { return nil }

// critiqueResult is the critic pass response shape.
type critiqueResult struct {
	Summary          string   `json:"critique_summary"`
	FeasibilityScore int      `json:"feasibility_score"`
	SpecificIssues   []string `json:"specific_issues"`
}

// framingResult is the refinement pass response shape.
type framingResult struct {
	ProblemStatement string `json:"problem_statement"`
	ResearchGap      string `json:"research_gap"`
	Goals            []string `json:"goals"`
	ScopeIn          []string `json:"scope_in"`
	ScopeOut         []string `json:"scope_out"`
	KeyConcepts      []struct {
		Label       string `json:"label"`
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"key_concepts"`
}

func (FramingStrategy) Compute(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs stage.Inputs) (*stage.Output, error) {
	pc, err := decodePayload[ProjectContext](prereqs[TypeProjectContext])
	if err != nil {
		return nil, err
	}
	rec := newRecorder(ctx, project, StageProblemFraming)

	framing, model, meta, genErr := generateFraming(ctx, rec, pc)
	if genErr != nil {
		rec.event("fallback", genErr.Error())
		framing, model = heuristicProblemFraming(pc)
		meta = heuristicMetadata("problem framing derived without a model")
	}

	rec.finish(nil)
	return &stage.Output{
		Artifacts: []stage.Produced{
			{Type: TypeProblemFraming, Payload: mustJSON(framing)},
			{Type: TypeConceptModel, Payload: mustJSON(model)},
		},
		Metadata: meta,
		Prompts: []string{
			"Review the problem statement and refine if needed.",
			"Edit goals to align with your research objectives.",
			"Adjust scope (in/out) to clarify boundaries.",
			"Review extracted concepts in the concept model.",
		},
		Trace: rec.steps,
	}, nil
}

func generateFraming(ctx context.Context, rec *recorder, pc ProjectContext) (ProblemFraming, ConceptModel, artifact.Metadata, error) {
	var critique critiqueResult
	err := completeJSON(ctx, rec, "persona_critic", "problem_critique", map[string]any{
		"title":       pc.Title,
		"description": pc.ShortDescription,
	}, &critique)
	if err != nil {
		return ProblemFraming{}, ConceptModel{}, artifact.Metadata{}, err
	}
	rec.event("critique", fmt.Sprintf("feasibility %d/10, %d issues", critique.FeasibilityScore, len(critique.SpecificIssues)))

	var refined framingResult
	err = completeJSON(ctx, rec, "persona_methodologist", "problem_refine", map[string]any{
		"context":  string(mustJSON(pc)),
		"critique": string(mustJSON(critique)),
	}, &refined)
	if err != nil {
		return ProblemFraming{}, ConceptModel{}, artifact.Metadata{}, err
	}

	framing := ProblemFraming{
		ProblemStatement: refined.ProblemStatement,
		ResearchGap:      refined.ResearchGap,
		Goals:            refined.Goals,
		ScopeIn:          refined.ScopeIn,
		ScopeOut:         refined.ScopeOut,
	}
	model := ConceptModel{}
	for i, kc := range refined.KeyConcepts {
		model.Concepts = append(model.Concepts, Concept{
			ID:          fmt.Sprintf("concept_%d", i),
			Label:       kc.Label,
			Type:        kc.Type,
			Description: kc.Description,
		})
	}
	return framing, model, modelMetadata(task.Framing), nil
}
