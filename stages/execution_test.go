package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/retrieval"
)

// stubProvider serves canned documents for one database.
type stubProvider struct {
	name string
	docs []retrieval.Document
	err  error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Search(ctx context.Context, query string, limit int) ([]retrieval.Document, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.docs, nil
}

func executionPlan(t *testing.T, queries ...DatabaseQuery) map[string]artifact.Envelope {
	t.Helper()
	return map[string]artifact.Envelope{
		TypeDatabaseQueryPlan: env(t, TypeDatabaseQueryPlan, DatabaseQueryPlan{Queries: queries}),
	}
}

func TestExecutionStrategy_RunsExecutableQueries(t *testing.T) {
	svc := retrieval.NewService([]retrieval.Provider{
		&stubProvider{name: "openalex", docs: []retrieval.Document{
			{Title: "Shared Paper", DOI: "10.1/abc", Provider: "openalex"},
			{Title: "OpenAlex Only", DOI: "10.1/oa", Provider: "openalex"},
		}},
		&stubProvider{name: "arxiv", docs: []retrieval.Document{
			{Title: "Shared Paper", DOI: "10.1/abc", Provider: "arxiv"},
		}},
	})

	prereqs := executionPlan(t,
		DatabaseQuery{Database: "openalex", Query: "grounding", Executable: true},
		DatabaseQuery{Database: "arxiv", Query: "all:grounding", Executable: true},
		DatabaseQuery{Database: "pubmed", Query: "grounding[Title/Abstract]", Executable: false},
	)

	out, err := ExecutionStrategy{Service: svc}.Compute(context.Background(), "p1", prereqs, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if out.Artifacts[0].Type != TypeSearchResults {
		t.Fatalf("artifact type = %q", out.Artifacts[0].Type)
	}

	var results SearchResults
	json.Unmarshal(out.Artifacts[0].Payload, &results)
	if results.TotalHits != 3 {
		t.Errorf("total hits = %d, want 3", results.TotalHits)
	}
	if results.Unique != 2 {
		t.Errorf("unique = %d, want 2 after DOI dedup", results.Unique)
	}
	if len(results.Skipped) != 1 || results.Skipped[0] != "pubmed" {
		t.Errorf("skipped = %v, want [pubmed]", results.Skipped)
	}
	if len(results.Executions) != 2 {
		t.Errorf("executions = %d, want 2", len(results.Executions))
	}
	if out.Metadata.Mode != "retrieval" {
		t.Errorf("mode = %q", out.Metadata.Mode)
	}
}

func TestExecutionStrategy_ProviderFailureIsRecorded(t *testing.T) {
	svc := retrieval.NewService([]retrieval.Provider{
		&stubProvider{name: "openalex", docs: []retrieval.Document{{Title: "A", DOI: "10.1/a"}}},
		&stubProvider{name: "arxiv", err: fmt.Errorf("upstream down")},
	})
	prereqs := executionPlan(t,
		DatabaseQuery{Database: "openalex", Query: "q", Executable: true},
		DatabaseQuery{Database: "arxiv", Query: "q", Executable: true},
	)

	out, err := ExecutionStrategy{Service: svc}.Compute(context.Background(), "p1", prereqs, nil)
	if err != nil {
		t.Fatalf("a single provider failure must not fail the stage: %v", err)
	}

	var results SearchResults
	json.Unmarshal(out.Artifacts[0].Payload, &results)
	failed := 0
	for _, ex := range results.Executions {
		if ex.Error != "" {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("failed executions = %d, want 1", failed)
	}
	if results.Unique != 1 {
		t.Errorf("unique = %d, want results from the healthy provider", results.Unique)
	}
}

func TestExecutionStrategy_NilService(t *testing.T) {
	prereqs := executionPlan(t, DatabaseQuery{Database: "openalex", Query: "q", Executable: true})
	if _, err := (ExecutionStrategy{}).Compute(context.Background(), "p1", prereqs, nil); err == nil {
		t.Fatal("expected error without a retrieval service")
	}
}

func TestExecutionStrategy_AllSyntaxOnly(t *testing.T) {
	svc := retrieval.NewService(nil)
	prereqs := executionPlan(t, DatabaseQuery{Database: "pubmed", Query: "q", Executable: false})
	if _, err := (ExecutionStrategy{Service: svc}).Compute(context.Background(), "p1", prereqs, nil); err == nil {
		t.Fatal("expected error when no query is executable")
	}
}

func TestExecutionStrategy_EmptyPlan(t *testing.T) {
	svc := retrieval.NewService(nil)
	prereqs := executionPlan(t)
	if _, err := (ExecutionStrategy{Service: svc}).Compute(context.Background(), "p1", prereqs, nil); err == nil {
		t.Fatal("expected error for an empty query plan")
	}
}
