package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/stage"
)

// ExportStrategy aggregates the approved strategy artifacts into a
// StrategyExportBundle with a markdown protocol summary. It also folds
// in the SearchResults draft: the execution stage runs before export
// even though export carries the lower nominal number, so the bundle
// can report observed hit counts alongside the planned queries.
//
// Inputs: include_markdown (optional bool, default true).
type ExportStrategy struct{}

func (ExportStrategy) ValidateInputs(stage.Inputs) []string { return nil }

func (ExportStrategy) Compute(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs stage.Inputs) (*stage.Output, error) {
	pc, err := decodePayload[ProjectContext](prereqs[TypeProjectContext])
	if err != nil {
		return nil, err
	}
	framing, err := decodePayload[ProblemFraming](prereqs[TypeProblemFraming])
	if err != nil {
		return nil, err
	}
	model, err := decodePayload[ConceptModel](prereqs[TypeConceptModel])
	if err != nil {
		return nil, err
	}
	questions, err := decodePayload[ResearchQuestionSet](prereqs[TypeResearchQuestionSet])
	if err != nil {
		return nil, err
	}
	blocks, err := decodePayload[SearchConceptBlocks](prereqs[TypeSearchConceptBlocks])
	if err != nil {
		return nil, err
	}
	plan, err := decodePayload[DatabaseQueryPlan](prereqs[TypeDatabaseQueryPlan])
	if err != nil {
		return nil, err
	}
	results, err := decodePayload[SearchResults](prereqs[TypeSearchResults])
	if err != nil {
		return nil, err
	}

	var screening *ScreeningCriteria
	if env, ok := prereqs[TypeScreeningCriteria]; ok {
		sc, err := decodePayload[ScreeningCriteria](env)
		if err != nil {
			return nil, err
		}
		screening = &sc
	}

	included := make([]string, 0, len(prereqs))
	for typ := range prereqs {
		included = append(included, typ)
	}

	bundle := StrategyExportBundle{
		Artifacts: dedupeStrings(included),
	}
	if inputs.Bool("include_markdown", true) {
		bundle.Summary = buildMarkdownSummary(pc, framing, model, questions, blocks, plan, screening, results)
	}

	return &stage.Output{
		Artifacts: []stage.Produced{{Type: TypeStrategyExportBundle, Payload: mustJSON(bundle)}},
		Metadata:  syntaxMetadata("bundle assembled from prior artifacts"),
		Prompts: []string{
			"Review the strategy summary for completeness.",
			"Add PRISMA flow elements before publication.",
			"Package citations and the screening log alongside the bundle.",
		},
	}, nil
}

func buildMarkdownSummary(pc ProjectContext, framing ProblemFraming, model ConceptModel, questions ResearchQuestionSet, blocks SearchConceptBlocks, plan DatabaseQueryPlan, screening *ScreeningCriteria, results SearchResults) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Strategy Summary: %s\n\n", pc.Title)

	b.WriteString("## Problem Framing\n")
	b.WriteString(framing.ProblemStatement + "\n\n### Goals\n")
	for _, g := range framing.Goals {
		fmt.Fprintf(&b, "- %s\n", g)
	}

	b.WriteString("\n## Concepts\n")
	for _, c := range firstN(model.Concepts, 20) {
		fmt.Fprintf(&b, "- %s (%s)\n", c.Label, c.Type)
	}

	b.WriteString("\n## Research Questions\n")
	for _, q := range questions.Questions {
		fmt.Fprintf(&b, "- %s\n", q.Text)
	}

	b.WriteString("\n## Search Concept Blocks\n")
	for _, block := range blocks.Blocks {
		fmt.Fprintf(&b, "- %s: %s\n", block.Label, joinN(block.TermsIncluded, 6))
	}

	b.WriteString("\n## Database Queries\n")
	hits := hitsByDatabase(results)
	for _, q := range plan.Queries {
		fmt.Fprintf(&b, "### %s\n```\n%s\n```\n", strings.ToUpper(q.Database), q.Query)
		if q.Complexity != nil {
			fmt.Fprintf(&b, "Complexity: %s | Expected results: %s\n", q.Complexity.Level, q.Complexity.ExpectedResults)
		}
		if n, ok := hits[q.Database]; ok {
			fmt.Fprintf(&b, "Observed hits: %d\n", n)
		}
	}

	fmt.Fprintf(&b, "\n## Retrieval\n%d total hits, %d unique documents after deduplication.\n",
		results.TotalHits, results.Unique)

	if screening != nil {
		b.WriteString("\n## Screening Criteria\n### Inclusion\n")
		for _, c := range screening.Inclusion {
			fmt.Fprintf(&b, "- %s: %s\n", c.ID, c.Text)
		}
		b.WriteString("### Exclusion\n")
		for _, c := range screening.Exclusion {
			fmt.Fprintf(&b, "- %s: %s\n", c.ID, c.Text)
		}
	}
	return b.String()
}

func hitsByDatabase(results SearchResults) map[string]int {
	hits := make(map[string]int, len(results.Executions))
	for _, ex := range results.Executions {
		if ex.Error == "" {
			hits[ex.Database] = ex.Hits
		}
	}
	return hits
}
