package stages

import (
	"github.com/randalmurphal/slrflow/retrieval"
)

// Artifact type tags. The lifecycle manager treats payloads as opaque;
// these tags are the only shared vocabulary between stages.
const (
	TypeProjectContext       = "ProjectContext"
	TypeProblemFraming       = "ProblemFraming"
	TypeConceptModel         = "ConceptModel"
	TypeResearchQuestionSet  = "ResearchQuestionSet"
	TypeSearchConceptBlocks  = "SearchConceptBlocks"
	TypeDatabaseQueryPlan    = "DatabaseQueryPlan"
	TypeScreeningCriteria    = "ScreeningCriteria"
	TypeStrategyExportBundle = "StrategyExportBundle"
	TypeSearchResults        = "SearchResults"
)

// Stage names as registered by RegisterBuiltin.
const (
	StageProjectSetup      = "project-setup"
	StageProblemFraming    = "problem-framing"
	StageResearchQuestions = "research-questions"
	StageConceptExpansion  = "search-concept-expansion"
	StageQueryPlan         = "database-query-plan"
	StageScreening         = "screening-criteria"
	StageExport            = "strategy-export"
	StageExecution         = "query-execution"
)

// ProjectContext is the root artifact: the structured capture of a raw
// research idea.
type ProjectContext struct {
	Title            string            `json:"title"`
	Discipline       string            `json:"discipline,omitempty"`
	ShortDescription string            `json:"short_description"`
	InitialKeywords  []string          `json:"initial_keywords,omitempty"`
	Constraints      map[string]string `json:"constraints,omitempty"`
}

// ProblemFraming states the research problem, its gap, goals, and
// scope boundaries.
type ProblemFraming struct {
	ProblemStatement string   `json:"problem_statement"`
	ResearchGap      string   `json:"research_gap,omitempty"`
	Goals            []string `json:"goals"`
	ScopeIn          []string `json:"scope_in,omitempty"`
	ScopeOut         []string `json:"scope_out,omitempty"`
	Stakeholders     []string `json:"stakeholders,omitempty"`
}

// Concept is one named element of the research domain. Type loosely
// follows PICO: Population, Intervention, Comparison, Outcome, plus
// Methodology and Context.
type Concept struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// ConceptRelation links two concepts in the model.
type ConceptRelation struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind,omitempty"`
}

// ConceptModel is the decomposition of the problem into concepts and
// their relations.
type ConceptModel struct {
	Concepts  []Concept         `json:"concepts"`
	Relations []ConceptRelation `json:"relations,omitempty"`
}

// ResearchQuestion is one question of the review, typed and linked
// back to the concepts it addresses.
type ResearchQuestion struct {
	Text           string   `json:"text"`
	ID             string   `json:"id"`
	Type           string   `json:"type,omitempty"` // descriptive, explanatory, evaluative, design
	LinkedConcepts []string `json:"linked_concepts,omitempty"`
	Priority       string   `json:"priority,omitempty"` // must_have, nice_to_have
}

// ResearchQuestionSet holds the questions driving the review.
type ResearchQuestionSet struct {
	Questions []ResearchQuestion `json:"questions"`
}

// ConceptBlock is one searchable dimension: a concept expanded into
// synonyms and variants for boolean query construction.
type ConceptBlock struct {
	ID            string   `json:"id"`
	Label         string   `json:"label"`
	Description   string   `json:"description,omitempty"`
	TermsIncluded []string `json:"terms_included"`
	TermsExcluded []string `json:"terms_excluded,omitempty"`
}

// SearchConceptBlocks is the expanded search vocabulary.
type SearchConceptBlocks struct {
	Blocks []ConceptBlock `json:"blocks"`
}

// QueryComplexity summarizes how broad or narrow a generated query is,
// with guidance for the reviewer.
type QueryComplexity struct {
	Level            string   `json:"level"`
	TotalTerms       int      `json:"total_terms"`
	NumBlocks        int      `json:"num_blocks"`
	AvgTermsPerBlock float64  `json:"avg_terms_per_block"`
	ExcludedTerms    int      `json:"excluded_terms,omitempty"`
	QueryLength      int      `json:"query_length"`
	ExpectedResults  string   `json:"expected_results"`
	Guidance         string   `json:"guidance"`
	Warnings         []string `json:"warnings,omitempty"`
}

// DatabaseQuery is one database-specific boolean query string.
type DatabaseQuery struct {
	ID         string           `json:"id"`
	Database   string           `json:"database"`
	Query      string           `json:"query"`
	Blocks     []string         `json:"blocks,omitempty"` // concept block ids folded in
	Notes      string           `json:"notes,omitempty"`
	Executable bool             `json:"executable"`
	Complexity *QueryComplexity `json:"complexity,omitempty"`
}

// DatabaseQueryPlan is the per-database query set.
type DatabaseQueryPlan struct {
	Queries []DatabaseQuery `json:"queries"`
}

// Criterion is one screening rule with its rationale.
type Criterion struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Rationale string `json:"rationale,omitempty"`
}

// ScreeningCriteria is the inclusion/exclusion rule set applied during
// title-and-abstract screening.
type ScreeningCriteria struct {
	Inclusion []Criterion `json:"inclusion"`
	Exclusion []Criterion `json:"exclusion"`
	Languages []string    `json:"languages,omitempty"`
	YearFrom  int         `json:"year_from,omitempty"`
	YearTo    int         `json:"year_to,omitempty"`
}

// StrategyExportBundle aggregates every prior artifact into a
// review-ready package with a markdown summary.
type StrategyExportBundle struct {
	Artifacts []string `json:"artifacts"`
	Summary   string   `json:"summary,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// SearchResults records the outcome of executing the query plan:
// per-database execution summaries plus the deduplicated document set.
type SearchResults struct {
	Executions []retrieval.Execution `json:"executions"`
	Documents  []retrieval.Document  `json:"documents,omitempty"`
	TotalHits  int                   `json:"total_hits"`
	Unique     int                   `json:"unique"`
	Skipped    []string              `json:"skipped,omitempty"` // syntax-only databases not executed
}
