package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/stage"
	"github.com/randalmurphal/slrflow/task"
)

// ExpansionStrategy expands the approved ConceptModel into
// SearchConceptBlocks: one block per searchable concept, filled with
// synonyms, spelling variants, and controlled-vocabulary terms.
type ExpansionStrategy struct{}

func (ExpansionStrategy) ValidateInputs(stage.Inputs) []string { return nil }

type blocksResult struct {
	Blocks []struct {
		Label string `json:"label"`
		Terms []struct {
			Text  string `json:"text"`
			Field string `json:"field"`
		} `json:"terms"`
	} `json:"blocks"`
}

func (ExpansionStrategy) Compute(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs stage.Inputs) (*stage.Output, error) {
	model, err := decodePayload[ConceptModel](prereqs[TypeConceptModel])
	if err != nil {
		return nil, err
	}
	questions, err := decodePayload[ResearchQuestionSet](prereqs[TypeResearchQuestionSet])
	if err != nil {
		return nil, err
	}
	rec := newRecorder(ctx, project, StageConceptExpansion)

	var blocks SearchConceptBlocks
	meta := modelMetadata(task.Expand)

	var parsed blocksResult
	genErr := completeJSON(ctx, rec, "persona_librarian", "concept_blocks", map[string]any{
		"questions": questionLines(questions.Questions),
		"concepts":  conceptLines(model.Concepts),
	}, &parsed)
	if genErr == nil && len(parsed.Blocks) > 0 {
		for i, b := range parsed.Blocks {
			block := ConceptBlock{
				ID:    fmt.Sprintf("block_%d", i),
				Label: b.Label,
			}
			for _, t := range b.Terms {
				if strings.TrimSpace(t.Text) != "" {
					block.TermsIncluded = append(block.TermsIncluded, strings.TrimSpace(t.Text))
				}
			}
			block.TermsIncluded = dedupeStrings(block.TermsIncluded)
			blocks.Blocks = append(blocks.Blocks, block)
		}
	} else {
		if genErr != nil {
			rec.event("fallback", genErr.Error())
		} else {
			rec.event("fallback", "model returned no blocks")
		}
		blocks = heuristicConceptBlocks(model)
		meta = heuristicMetadata("concept blocks derived without a model")
	}

	rec.finish(nil)
	return &stage.Output{
		Artifacts: []stage.Produced{{Type: TypeSearchConceptBlocks, Payload: mustJSON(blocks)}},
		Metadata:  meta,
		Prompts: []string{
			"Review each concept block for completeness.",
			"Add domain-specific synonyms or narrower terms.",
			"Specify terms to exclude if needed.",
		},
		Trace: rec.steps,
	}, nil
}

func questionLines(questions []ResearchQuestion) string {
	var b strings.Builder
	for _, q := range questions {
		fmt.Fprintf(&b, "- %s\n", q.Text)
	}
	return b.String()
}
