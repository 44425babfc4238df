package trace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileStore stores runs as directories of JSON files under
// {baseDir}/runs/{runID}/.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
	active  map[string]*Run
}

// StoreConfig holds configuration for trace storage.
type StoreConfig struct {
	BaseDir string
}

// NewFileStore creates a file-based trace store.
func NewFileStore(config StoreConfig) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(config.BaseDir, "runs"), 0755); err != nil {
		return nil, err
	}
	return &FileStore{
		baseDir: config.BaseDir,
		active:  make(map[string]*Run),
	}, nil
}

// BaseDir returns the base directory for the store.
func (s *FileStore) BaseDir() string {
	return s.baseDir
}

// StartRun begins a new run.
func (s *FileStore) StartRun(runID string, meta RunMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.active[runID]; exists {
		return ErrRunExists
	}
	runDir := s.runDir(runID)
	if _, err := os.Stat(runDir); err == nil {
		return ErrRunExists
	}
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	run := &Run{
		RunID: runID,
		Metadata: Meta{
			RunID:     runID,
			Project:   meta.Project,
			Stage:     meta.Stage,
			Status:    RunStatusRunning,
			StartedAt: time.Now(),
		},
		Steps: make([]Step, 0),
	}

	if err := s.writeMeta(runID, &run.Metadata); err != nil {
		return err
	}

	s.active[runID] = run
	return nil
}

// RecordStep appends a step to an active run.
func (s *FileStore) RecordStep(runID string, step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.active[runID]
	if !ok {
		return ErrRunNotStarted
	}

	step.ID = len(run.Steps) + 1
	if step.Timestamp.IsZero() {
		step.Timestamp = time.Now()
	}
	run.Steps = append(run.Steps, step)

	run.Metadata.TotalTokensIn += step.TokensIn
	run.Metadata.TotalTokensOut += step.TokensOut
	run.Metadata.StepCount = len(run.Steps)
	return nil
}

// EndRun completes a run and flushes it to disk.
func (s *FileStore) EndRun(runID string, status RunStatus) error {
	return s.end(runID, status, "")
}

// EndRunWithError completes a run as failed, recording the error.
func (s *FileStore) EndRunWithError(runID string, err error) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return s.end(runID, RunStatusFailed, msg)
}

func (s *FileStore) end(runID string, status RunStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.active[runID]
	if !ok {
		return ErrRunNotStarted
	}

	run.Metadata.Status = status
	run.Metadata.EndedAt = time.Now()
	run.Metadata.Error = errMsg

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.runDir(runID), "trace.json"), data, 0644); err != nil {
		return err
	}
	if err := s.writeMeta(runID, &run.Metadata); err != nil {
		return err
	}

	delete(s.active, runID)
	return nil
}

// Load retrieves a complete run, active or finished.
func (s *FileStore) Load(runID string) (*Run, error) {
	s.mu.RLock()
	if active, ok := s.active[runID]; ok {
		// Deep copy so callers cannot mutate the live run.
		data, err := json.Marshal(active)
		s.mu.RUnlock()
		if err != nil {
			return nil, err
		}
		var run Run
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, err
		}
		return &run, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.runDir(runID), "trace.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// LoadMeta retrieves just the metadata of a run.
func (s *FileStore) LoadMeta(runID string) (*Meta, error) {
	s.mu.RLock()
	if active, ok := s.active[runID]; ok {
		meta := active.Metadata
		s.mu.RUnlock()
		return &meta, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.runDir(runID), "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// List returns metadata for runs matching the filter, newest first.
func (s *FileStore) List(filter Filter) ([]Meta, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "runs"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var results []Meta
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.LoadMeta(entry.Name())
		if err != nil {
			continue
		}
		if filter.Project != "" && meta.Project != filter.Project {
			continue
		}
		if filter.Stage != "" && meta.Stage != filter.Stage {
			continue
		}
		if filter.Status != "" && meta.Status != filter.Status {
			continue
		}
		if !filter.After.IsZero() && meta.StartedAt.Before(filter.After) {
			continue
		}
		if !filter.Before.IsZero() && meta.StartedAt.After(filter.Before) {
			continue
		}
		results = append(results, *meta)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].StartedAt.After(results[j].StartedAt)
	})

	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}

// Delete removes a run from memory and disk.
func (s *FileStore) Delete(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.active, runID)

	if err := os.RemoveAll(s.runDir(runID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ListActive returns the IDs of runs still in progress.
func (s *FileStore) ListActive() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *FileStore) runDir(runID string) string {
	return filepath.Join(s.baseDir, "runs", runID)
}

func (s *FileStore) writeMeta(runID string, meta *Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.runDir(runID), "metadata.json"), data, 0644)
}
