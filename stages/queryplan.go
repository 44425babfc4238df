package stages

import (
	"context"
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/search"
	"github.com/randalmurphal/slrflow/stage"
)

// databaseNotes carries per-database usage guidance attached to each
// generated query.
var databaseNotes = map[string]string{
	"pubmed":          "Syntax-only: copy into the PubMed search form. Consider adding MeSH terms.",
	"scopus":          "Syntax-only: requires an institutional Scopus login. Copy into the Scopus search form.",
	"openalex":        "Executable through the retrieval service.",
	"arxiv":           "Executable through the retrieval service.",
	"semanticscholar": "Executable through the retrieval service.",
	"crossref":        "Executable through the retrieval service.",
}

// syntaxOnlyDatabases cannot be executed without credentials; their
// queries are generated for copy-paste use only.
var syntaxOnlyDatabases = map[string]bool{
	"pubmed": true,
	"scopus": true,
}

// QueryPlanStrategy renders the approved SearchConceptBlocks into
// database-specific boolean query strings. It is fully deterministic:
// queries come out of the dialect engine, never out of a model, so the
// syntax is valid by construction.
//
// Inputs: databases (optional list of target database names; defaults
// to every supported dialect).
type QueryPlanStrategy struct{}

func (QueryPlanStrategy) ValidateInputs(inputs stage.Inputs) []string {
	var errs []string
	for _, db := range targetDatabases(inputs) {
		if _, err := search.DialectFor(db); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func (QueryPlanStrategy) Compute(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs stage.Inputs) (*stage.Output, error) {
	blocks, err := decodePayload[SearchConceptBlocks](prereqs[TypeSearchConceptBlocks])
	if err != nil {
		return nil, err
	}

	if msgs := validateBlocks(blocks); len(msgs) > 0 {
		return nil, fmt.Errorf("search concept blocks unusable: %s", msgs[0])
	}

	syntaxPlan, blockIDs := toSyntaxPlan(blocks)

	plan := DatabaseQueryPlan{}
	for _, db := range targetDatabases(inputs) {
		queryString, err := search.BuildFor(db, syntaxPlan)
		if err != nil {
			return nil, err
		}
		suffix, err := nanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 6)
		if err != nil {
			return nil, err
		}
		q := DatabaseQuery{
			ID:         fmt.Sprintf("query_%s_%s", db, suffix),
			Database:   db,
			Query:      queryString,
			Blocks:     blockIDs,
			Notes:      databaseNotes[db],
			Executable: !syntaxOnlyDatabases[db],
		}
		q.Complexity = analyzeComplexity(blocks, q)
		plan.Queries = append(plan.Queries, q)
	}

	return &stage.Output{
		Artifacts: []stage.Produced{{Type: TypeDatabaseQueryPlan, Payload: mustJSON(plan)}},
		Metadata:  syntaxMetadata("queries assembled by the dialect engine"),
		Prompts: []string{
			"Review each database query for accuracy.",
			"For PubMed: validate suggested MeSH terms.",
			"Copy syntax-only queries into their database search forms to validate.",
		},
	}, nil
}

// targetDatabases reads the databases input, defaulting to every
// supported dialect.
func targetDatabases(inputs stage.Inputs) []string {
	raw, ok := inputs["databases"]
	if !ok {
		return search.Databases()
	}
	switch v := raw.(type) {
	case []string:
		if len(v) > 0 {
			return v
		}
	case []any: // JSON-decoded inputs
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return search.Databases()
}

func validateBlocks(blocks SearchConceptBlocks) []string {
	if len(blocks.Blocks) == 0 {
		return []string{"no concept blocks defined; review the search-concept-expansion output"}
	}
	var empty []string
	for _, b := range blocks.Blocks {
		if len(b.TermsIncluded) == 0 {
			empty = append(empty, b.Label)
		}
	}
	if len(empty) > 0 {
		return []string{fmt.Sprintf("concept blocks with no search terms: %v", empty)}
	}
	return nil
}

// toSyntaxPlan converts the artifact representation into the dialect
// engine's input form.
func toSyntaxPlan(blocks SearchConceptBlocks) (search.QueryPlan, []string) {
	var plan search.QueryPlan
	ids := make([]string, 0, len(blocks.Blocks))
	for _, b := range blocks.Blocks {
		ids = append(ids, b.ID)
		block := search.ConceptBlock{Label: b.Label}
		for _, term := range b.TermsIncluded {
			block.Add(term)
		}
		plan.Blocks = append(plan.Blocks, block)
	}
	return plan, ids
}

// analyzeComplexity scores a generated query so reviewers can judge
// whether the strategy is likely too broad or too narrow before
// running it.
func analyzeComplexity(blocks SearchConceptBlocks, q DatabaseQuery) *QueryComplexity {
	totalTerms := 0
	excluded := 0
	for _, b := range blocks.Blocks {
		totalTerms += len(b.TermsIncluded)
		excluded += len(b.TermsExcluded)
	}
	numBlocks := len(blocks.Blocks)
	avg := float64(totalTerms) / float64(max(numBlocks, 1))

	c := &QueryComplexity{
		TotalTerms:       totalTerms,
		NumBlocks:        numBlocks,
		AvgTermsPerBlock: avg,
		ExcludedTerms:    excluded,
		QueryLength:      len(q.Query),
	}

	switch {
	case numBlocks == 1 && avg > 15:
		c.Level = "very_broad"
		c.ExpectedResults = "10,000+"
		c.Guidance = "Single concept with many synonyms. Consider adding more concept blocks to narrow scope."
	case numBlocks == 1 && avg > 8:
		c.Level = "broad"
		c.ExpectedResults = "1,000-10,000"
		c.Guidance = "Single concept block. Consider adding outcome or population filters."
	case numBlocks == 1:
		c.Level = "moderate"
		c.ExpectedResults = "100-1,000"
		c.Guidance = "Single focused concept, suitable for exploratory searches."
	case numBlocks >= 6:
		c.Level = "very_narrow"
		c.ExpectedResults = "< 50"
		c.Guidance = "Many AND-joined concept blocks may miss relevant studies. Consider combining related concepts."
	case numBlocks >= 4:
		c.Level = "narrow"
		c.ExpectedResults = "50-500"
		c.Guidance = "Highly specific query. Verify all blocks are essential."
	case avg > 10:
		c.Level = "moderate_broad"
		c.ExpectedResults = "500-5,000"
		c.Guidance = "Multiple concepts with rich synonyms. Expect manual screening effort."
	default:
		c.Level = "balanced"
		c.ExpectedResults = "100-1,000"
		c.Guidance = "Well-balanced query, the recommended complexity for systematic reviews."
	}

	if excluded > 5 {
		c.Guidance += fmt.Sprintf(" Note: %d excluded terms will further narrow results.", excluded)
	}
	if q.Database == "pubmed" && c.QueryLength > 4000 {
		c.Warnings = append(c.Warnings,
			fmt.Sprintf("query exceeds PubMed's 4000 character limit (%d chars)", c.QueryLength))
	}
	if q.Database == "scopus" && c.QueryLength > 2000 {
		c.Warnings = append(c.Warnings,
			fmt.Sprintf("query is very long (%d chars) and may cause Scopus UI issues", c.QueryLength))
	}
	return c
}
