package stages

import (
	"context"
	"fmt"
	"time"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/retrieval"
	"github.com/randalmurphal/slrflow/stage"
)

// ExecutionStrategy runs the approved DatabaseQueryPlan against the
// retrieval providers, fans queries out concurrently, and persists the
// deduplicated document set as a SearchResults draft. Syntax-only
// databases are skipped and listed in the payload; a single failing
// provider is recorded in its execution entry instead of sinking the
// whole stage.
type ExecutionStrategy struct {
	Service *retrieval.Service
}

func (s ExecutionStrategy) ValidateInputs(stage.Inputs) []string { return nil }

func (s ExecutionStrategy) Compute(ctx context.Context, project string, prereqs map[string]artifact.Envelope, inputs stage.Inputs) (*stage.Output, error) {
	if s.Service == nil {
		return nil, fmt.Errorf("query execution needs a retrieval service")
	}
	plan, err := decodePayload[DatabaseQueryPlan](prereqs[TypeDatabaseQueryPlan])
	if err != nil {
		return nil, err
	}
	if len(plan.Queries) == 0 {
		return nil, fmt.Errorf("query plan contains no queries")
	}
	rec := newRecorder(ctx, project, StageExecution)

	queries := make(map[string]string, len(plan.Queries))
	var skipped []string
	for _, q := range plan.Queries {
		if !q.Executable || !s.Service.Executable(q.Database) {
			skipped = append(skipped, q.Database)
			continue
		}
		queries[q.Database] = q.Query
	}
	if len(queries) == 0 {
		rec.finish(nil)
		return nil, fmt.Errorf("no executable queries in the plan (syntax-only: %v)", skipped)
	}

	execs, docs, err := s.Service.ExecuteAll(ctx, queries)
	if err != nil {
		rec.finish(err)
		return nil, err
	}

	totalHits := 0
	for _, ex := range execs {
		totalHits += ex.Hits
		if ex.Error != "" {
			rec.event("search-failed", fmt.Sprintf("%s: %s", ex.Database, ex.Error))
			continue
		}
		rec.event("search", fmt.Sprintf("%s: %d hits in %s", ex.Database, ex.Hits, ex.Duration.Round(time.Millisecond)))
	}

	results := SearchResults{
		Executions: execs,
		Documents:  docs,
		TotalHits:  totalHits,
		Unique:     len(docs),
		Skipped:    skipped,
	}

	rec.finish(nil)
	return &stage.Output{
		Artifacts: []stage.Produced{{Type: TypeSearchResults, Payload: mustJSON(results)}},
		Metadata: artifact.Metadata{
			GeneratorID: "retrieval",
			Mode:        "retrieval",
			GeneratedAt: time.Now().UTC(),
			Notes:       fmt.Sprintf("%d unique documents from %d databases", len(docs), len(queries)),
		},
		Prompts: []string{
			"Review per-database hit counts for plausibility.",
			"Spot-check retrieved titles against the research questions.",
			"Re-run broad queries with refined terms if hit counts are excessive.",
		},
		Trace: rec.steps,
	}, nil
}
