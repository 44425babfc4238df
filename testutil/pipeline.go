package testutil

import (
	"testing"

	"github.com/randalmurphal/slrflow"
	"github.com/randalmurphal/slrflow/store"
)

// NewMemPipeline builds a pipeline over an in-memory store with the
// built-in stages registered. The store is returned for write-count
// assertions.
func NewMemPipeline(t *testing.T) (*slrflow.Pipeline, *store.MemStore) {
	t.Helper()

	mem := store.NewMemStore()
	p, err := slrflow.New(slrflow.Config{Store: mem})
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}
	return p, mem
}
