package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/stage"
	"github.com/randalmurphal/slrflow/task"
)

// QuestionsStrategy generates a ResearchQuestionSet from the approved
// ProblemFraming and ConceptModel.
type QuestionsStrategy struct{}

func (QuestionsStrategy) ValidateInputs(stage.Inputs) []string { return nil }

type questionsResult struct {
	Questions []struct {
		Text           string   `json:"text"`
		Type           string   `json:"type"`
		LinkedConcepts []string `json:"linked_concepts"`
		Priority       string   `json:"priority"`
	} `json:"questions"`
}

func (QuestionsStrategy) Compute(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs stage.Inputs) (*stage.Output, error) {
	framing, err := decodePayload[ProblemFraming](prereqs[TypeProblemFraming])
	if err != nil {
		return nil, err
	}
	model, err := decodePayload[ConceptModel](prereqs[TypeConceptModel])
	if err != nil {
		return nil, err
	}
	rec := newRecorder(ctx, project, StageResearchQuestions)

	var set ResearchQuestionSet
	meta := modelMetadata(task.Questions)

	var parsed questionsResult
	genErr := completeJSON(ctx, rec, "persona_methodologist", "research_questions", map[string]any{
		"problem_statement": framing.ProblemStatement,
		"goals":             framing.Goals,
		"concepts":          conceptLines(model.Concepts),
	}, &parsed)
	if genErr == nil && len(parsed.Questions) > 0 {
		for i, q := range parsed.Questions {
			set.Questions = append(set.Questions, ResearchQuestion{
				ID:             fmt.Sprintf("rq_%d", i),
				Text:           q.Text,
				Type:           q.Type,
				LinkedConcepts: q.LinkedConcepts,
				Priority:       q.Priority,
			})
		}
	} else {
		if genErr != nil {
			rec.event("fallback", genErr.Error())
		} else {
			rec.event("fallback", "model returned no questions")
		}
		set = heuristicResearchQuestions(framing, model)
		meta = heuristicMetadata("research questions derived without a model")
	}

	rec.finish(nil)
	return &stage.Output{
		Artifacts: []stage.Produced{{Type: TypeResearchQuestionSet, Payload: mustJSON(set)}},
		Metadata:  meta,
		Prompts: []string{
			"Review each research question for clarity and specificity.",
			"Adjust priority (must_have vs nice_to_have).",
			"Check question types (descriptive/explanatory/evaluative/design).",
		},
		Trace: rec.steps,
	}, nil
}

// conceptLines renders concepts one per line for prompt interpolation.
func conceptLines(concepts []Concept) string {
	var b strings.Builder
	for _, c := range concepts {
		fmt.Fprintf(&b, "- %s [%s]: %s (%s)\n", c.ID, c.Type, c.Label, c.Description)
	}
	return b.String()
}
