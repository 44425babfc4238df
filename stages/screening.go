package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/stage"
)

// ScreeningStrategy derives PRISMA-aligned inclusion and exclusion
// criteria from the concept model's PICO elements, the research
// questions, and the framing scope. Extraction is deterministic: no
// model call, so the criteria are fast to regenerate and predictable.
//
// Inputs: include_study_designs (optional bool, default true) adds the
// standard study-design filters.
type ScreeningStrategy struct{}

func (ScreeningStrategy) ValidateInputs(stage.Inputs) []string { return nil }

// picoElements buckets concept labels by their PICO role.
type picoElements struct {
	population   []string
	intervention []string
	comparison   []string
	outcome      []string
	context      []string
	method       []string
}

func (ScreeningStrategy) Compute(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs stage.Inputs) (*stage.Output, error) {
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

	var plan DatabaseQueryPlan
	if env, ok := prereqs[TypeDatabaseQueryPlan]; ok {
		if plan, err = decodePayload[DatabaseQueryPlan](env); err != nil {
			return nil, err
		}
	}

	includeDesigns := inputs.Bool("include_study_designs", true)
	pico := extractPICO(model)

	criteria := ScreeningCriteria{
		Inclusion: inclusionCriteria(framing, pico, questions, includeDesigns),
		Exclusion: exclusionCriteria(framing, pico, includeDesigns),
		Languages: []string{"English"},
	}
	refineWithComplexity(&criteria, plan)

	return &stage.Output{
		Artifacts: []stage.Produced{{Type: TypeScreeningCriteria, Payload: mustJSON(criteria)}},
		Metadata:  syntaxMetadata("criteria derived from PICO elements without a model"),
		Prompts: []string{
			fmt.Sprintf("Generated %d inclusion and %d exclusion criteria from PICO elements.",
				len(criteria.Inclusion), len(criteria.Exclusion)),
			"Review criteria and adjust for your specific domain.",
			"Consider adding a temporal range (year_from / year_to).",
			"Add language filters beyond English if needed.",
		},
	}, nil
}

func extractPICO(model ConceptModel) picoElements {
	var p picoElements
	for _, c := range model.Concepts {
		switch strings.ToLower(c.Type) {
		case "population", "participant", "sample":
			p.population = append(p.population, c.Label)
		case "intervention", "treatment", "exposure":
			p.intervention = append(p.intervention, c.Label)
		case "comparison", "control", "comparator":
			p.comparison = append(p.comparison, c.Label)
		case "outcome", "result", "effect":
			p.outcome = append(p.outcome, c.Label)
		case "context", "setting", "environment":
			p.context = append(p.context, c.Label)
		case "method", "methodology", "approach":
			p.method = append(p.method, c.Label)
		}
	}
	return p
}

func inclusionCriteria(framing ProblemFraming, pico picoElements, questions ResearchQuestionSet, includeDesigns bool) []Criterion {
	var texts []string

	if len(pico.population) > 0 {
		texts = append(texts, "Studies focusing on: "+joinN(pico.population, 5))
	}
	if len(pico.intervention) > 0 {
		texts = append(texts, "Studies evaluating or implementing: "+joinN(pico.intervention, 5))
	}
	if len(pico.outcome) > 0 {
		texts = append(texts, "Studies reporting outcomes related to: "+joinN(pico.outcome, 5))
	}
	if len(pico.method) > 0 {
		texts = append(texts, "Studies using methods: "+joinN(pico.method, 4))
	}
	if len(pico.context) > 0 {
		texts = append(texts, "Studies conducted in contexts: "+joinN(pico.context, 3))
	}

	primary := 0
	for _, q := range questions.Questions {
		if q.Priority == "must_have" {
			primary++
		}
	}
	if primary > 0 {
		texts = append(texts, fmt.Sprintf("Studies addressing primary research questions (n=%d)", primary))
	}
	for _, scope := range firstN(framing.ScopeIn, 3) {
		texts = append(texts, "Studies within scope: "+scope)
	}

	if includeDesigns {
		texts = append(texts,
			"Peer-reviewed publications (journal articles, conference papers)",
			"Original research studies (empirical data)",
			"Full text available for quality assessment",
		)
	}
	texts = append(texts, "Published in English (or specify other languages as needed)")

	return numberCriteria("IC", texts)
}

func exclusionCriteria(framing ProblemFraming, pico picoElements, includeDesigns bool) []Criterion {
	texts := []string{
		"Non-scholarly sources (blogs, forums, social media, press releases)",
		"Opinion pieces, editorials, and commentaries without empirical data",
	}
	for _, scope := range firstN(framing.ScopeOut, 5) {
		texts = append(texts, "Studies outside scope: "+scope)
	}
	if includeDesigns {
		texts = append(texts,
			"Studies without clear methodology",
			"Duplicate publications (same study, different venues)",
		)
	}
	if len(pico.population) > 0 {
		texts = append(texts, "Studies with populations not matching inclusion criteria")
	}
	if len(pico.intervention) > 0 {
		texts = append(texts, "Studies not evaluating the specified interventions or methods")
	}
	texts = append(texts,
		"Studies not available in full text",
		"Retracted publications",
		"Studies not addressing the research questions despite keyword matches",
	)
	return numberCriteria("EC", texts)
}

// refineWithComplexity tightens or loosens the criteria based on how
// broad the generated queries came out.
func refineWithComplexity(criteria *ScreeningCriteria, plan DatabaseQueryPlan) {
	if len(plan.Queries) == 0 {
		return
	}
	broad, narrow := 0, 0
	for _, q := range plan.Queries {
		if q.Complexity == nil {
			continue
		}
		switch q.Complexity.Level {
		case "very_broad", "broad":
			broad++
		case "very_narrow", "narrow":
			narrow++
		}
	}
	half := len(plan.Queries) / 2
	if broad > 0 && broad >= half {
		criteria.Exclusion = append(criteria.Exclusion, Criterion{
			ID:        fmt.Sprintf("EC%d", len(criteria.Exclusion)+1),
			Text:      "General surveys or overviews unless they specifically address the intervention-outcome relationship",
			Rationale: "queries are broad; narrowing needed during screening",
		})
	}
	if narrow > 0 && narrow >= half {
		criteria.Inclusion = append(criteria.Inclusion, Criterion{
			ID:        fmt.Sprintf("IC%d", len(criteria.Inclusion)+1),
			Text:      "Studies must closely match the specific focus defined in the research questions",
			Rationale: "queries are narrow; matching records are already highly specific",
		})
	}
}

func numberCriteria(prefix string, texts []string) []Criterion {
	out := make([]Criterion, 0, len(texts))
	for i, t := range texts {
		out = append(out, Criterion{ID: fmt.Sprintf("%s%d", prefix, i+1), Text: t})
	}
	return out
}

func joinN(items []string, n int) string {
	return strings.Join(firstN(items, n), ", ")
}
