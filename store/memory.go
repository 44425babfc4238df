package store

import (
	"sort"
	"sync"

	"github.com/randalmurphal/slrflow/artifact"
)

// MemStore is an in-memory store for tests and examples. Safe for
// concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	projects map[string]map[string]artifact.Envelope
	puts     int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{projects: make(map[string]map[string]artifact.Envelope)}
}

// Put stores the envelope for (project, type).
func (s *MemStore) Put(project, artifactType string, env artifact.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[project]
	if !ok {
		p = make(map[string]artifact.Envelope)
		s.projects[project] = p
	}
	p[artifactType] = env
	s.puts++
	return nil
}

// Get loads the envelope for (project, type).
func (s *MemStore) Get(project, artifactType string) (artifact.Envelope, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	env, ok := s.projects[project][artifactType]
	return env, ok, nil
}

// ListTypes returns the artifact types stored for a project, sorted.
func (s *MemStore) ListTypes(project string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var types []string
	for t := range s.projects[project] {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

// ListProjects returns all project IDs, sorted.
func (s *MemStore) ListProjects() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id := range s.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Puts returns the number of writes performed. Tests use this to assert
// zero-write guarantees.
func (s *MemStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
