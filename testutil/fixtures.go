// Package testutil provides utilities for testing.
package testutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/stages"
)

// SeedIdea is a research idea long enough to exercise the heuristic
// generators end to end.
const SeedIdea = "A systematic review of retrieval augmented generation " +
	"techniques for grounding large language model outputs in scientific literature."

// JSONPayload marshals v for use as an artifact payload.
func JSONPayload(t *testing.T, v any) json.RawMessage {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

// Envelope builds an artifact envelope in the given status around v.
func Envelope(t *testing.T, artifactType string, status artifact.Status, v any) artifact.Envelope {
	t.Helper()

	env := artifact.Envelope{
		Type:    artifactType,
		Status:  status,
		Payload: JSONPayload(t, v),
		Metadata: artifact.Metadata{
			GeneratorID: "fixture",
			Mode:        "heuristic",
			GeneratedAt: time.Now().UTC(),
		},
	}
	if status == artifact.StatusApproved {
		now := time.Now().UTC()
		env.ApprovedAt = &now
	}
	return env
}

// SampleProjectContext is a minimal approved-quality root artifact payload.
func SampleProjectContext() stages.ProjectContext {
	return stages.ProjectContext{
		Title:            "Retrieval Augmented Generation for Literature Grounding",
		Discipline:       "computer science",
		ShortDescription: SeedIdea,
		InitialKeywords:  []string{"retrieval", "augmented", "generation", "grounding", "literature"},
	}
}

// SampleConceptModel returns a concept model with the three concepts
// most fixtures need.
func SampleConceptModel() stages.ConceptModel {
	return stages.ConceptModel{
		Concepts: []stages.Concept{
			{ID: "concept_0", Label: "retrieval augmentation", Type: "intervention"},
			{ID: "concept_1", Label: "language models", Type: "population"},
			{ID: "concept_2", Label: "grounding accuracy", Type: "outcome"},
		},
	}
}

// SampleConceptBlocks returns search concept blocks aligned with
// SampleConceptModel.
func SampleConceptBlocks() stages.SearchConceptBlocks {
	return stages.SearchConceptBlocks{
		Blocks: []stages.ConceptBlock{
			{ID: "block_0", Label: "retrieval augmentation",
				TermsIncluded: []string{"retrieval augmented generation", "RAG"}},
			{ID: "block_1", Label: "language models",
				TermsIncluded: []string{"large language model", "LLM"}},
		},
	}
}
