package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/randalmurphal/slrflow/artifact"
)

// FileStore persists one JSON file per (project, type) key:
//
//	{baseDir}/projects/{project}/{type}.json
//
// Puts are atomic per key: the envelope is written to a temp file in the
// same directory and renamed into place.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a file store rooted at baseDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		baseDir = ".slrflow"
	}
	if err := os.MkdirAll(filepath.Join(baseDir, "projects"), 0o755); err != nil {
		return nil, err
	}
	return &FileStore{baseDir: baseDir}, nil
}

// BaseDir returns the store's root directory.
func (s *FileStore) BaseDir() string {
	return s.baseDir
}

func (s *FileStore) projectDir(project string) string {
	return filepath.Join(s.baseDir, "projects", project)
}

func (s *FileStore) artifactPath(project, artifactType string) string {
	return filepath.Join(s.projectDir(project), artifactType+".json")
}

// Put writes the envelope for (project, type) atomically.
func (s *FileStore) Put(project, artifactType string, env artifact.Envelope) error {
	if err := validKey(project, artifactType); err != nil {
		return err
	}
	dir := s.projectDir(project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Plain Marshal, not MarshalIndent: indenting would rewrite the
	// opaque Payload bytes, and Get must return them as stored.
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+artifactType+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.artifactPath(project, artifactType))
}

// Get loads the envelope for (project, type).
func (s *FileStore) Get(project, artifactType string) (artifact.Envelope, bool, error) {
	if err := validKey(project, artifactType); err != nil {
		return artifact.Envelope{}, false, err
	}
	data, err := os.ReadFile(s.artifactPath(project, artifactType))
	if err != nil {
		if os.IsNotExist(err) {
			return artifact.Envelope{}, false, nil
		}
		return artifact.Envelope{}, false, err
	}

	var env artifact.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return artifact.Envelope{}, false, fmt.Errorf("decode %s/%s: %w", project, artifactType, err)
	}
	return env, true, nil
}

// ListTypes returns the artifact types stored for a project, sorted.
func (s *FileStore) ListTypes(project string) ([]string, error) {
	entries, err := os.ReadDir(s.projectDir(project))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var types []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		types = append(types, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(types)
	return types, nil
}

// ListProjects returns all project IDs with a project directory, sorted.
func (s *FileStore) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "projects"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// validKey rejects keys that would escape the store directory.
func validKey(project, artifactType string) error {
	for _, part := range []string{project, artifactType} {
		if part == "" || part == "." || part == ".." ||
			strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("invalid store key %q", part)
		}
	}
	return nil
}
