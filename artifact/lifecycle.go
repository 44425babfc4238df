package artifact

import (
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/slrflow/errors"
)

// Manager is the single authority for artifact existence and status per
// project. All status transitions go through it; no other component writes
// to the store.
//
// Every mutating operation holds a per-(project, type) lock for its whole
// load-check-save sequence, so concurrent callers never observe a torn
// write and of N concurrent approvals exactly one succeeds.
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a lifecycle manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// keyLock returns the mutex serializing mutations for one (project, type).
func (m *Manager) keyLock(project, artifactType string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := project + "\x00" + artifactType
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// CreateDraft writes a new draft artifact, replacing any existing draft or
// rejected artifact of the same type. It fails with a TransitionError if the
// current artifact is approved: a stage must not clobber an approved result
// without an explicit reopen.
func (m *Manager) CreateDraft(project, artifactType string, payload []byte, meta Metadata) (Envelope, error) {
	l := m.keyLock(project, artifactType)
	l.Lock()
	defer l.Unlock()

	current, ok, err := m.store.Get(project, artifactType)
	if err != nil {
		return Envelope{}, errors.Infra("store get", err)
	}
	if ok && current.Status == StatusApproved {
		return Envelope{}, &errors.TransitionError{
			Project: project,
			Type:    artifactType,
			Op:      "draft",
			From:    string(current.Status),
		}
	}

	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now().UTC()
	}
	env := Envelope{
		Type:     artifactType,
		Status:   StatusDraft,
		Metadata: meta,
		Payload:  payload,
	}
	if err := m.store.Put(project, artifactType, env); err != nil {
		return Envelope{}, errors.Infra("store put", err)
	}

	slog.Debug("artifact draft created",
		"project", project, "type", artifactType, "generator", meta.GeneratorID)
	return env, nil
}

// Approve transitions a draft to approved, applying edits as a shallow merge
// onto the payload and stamping the approval time. Fails with NotFoundError
// if no artifact of that type exists and TransitionError if it is not a
// draft.
func (m *Manager) Approve(project, artifactType string, edits map[string]any, notes string) (Envelope, error) {
	return m.transition(project, artifactType, "approve", StatusApproved, edits, notes)
}

// Reject transitions a draft to rejected. Same preconditions as Approve.
func (m *Manager) Reject(project, artifactType, notes string) (Envelope, error) {
	return m.transition(project, artifactType, "reject", StatusRejected, nil, notes)
}

// Reopen transitions an approved artifact back to draft. This is the only
// legal way to un-approve, and it is always explicit and logged.
func (m *Manager) Reopen(project, artifactType string) (Envelope, error) {
	env, err := m.transition(project, artifactType, "reopen", StatusDraft, nil, "")
	if err == nil {
		slog.Info("artifact reopened", "project", project, "type", artifactType)
	}
	return env, err
}

func (m *Manager) transition(project, artifactType, op string, to Status, edits map[string]any, notes string) (Envelope, error) {
	l := m.keyLock(project, artifactType)
	l.Lock()
	defer l.Unlock()

	env, ok, err := m.store.Get(project, artifactType)
	if err != nil {
		return Envelope{}, errors.Infra("store get", err)
	}
	if !ok {
		return Envelope{}, &errors.NotFoundError{Project: project, Type: artifactType}
	}
	if !canTransition(env.Status, to) {
		return Envelope{}, &errors.TransitionError{
			Project: project,
			Type:    artifactType,
			Op:      op,
			From:    string(env.Status),
		}
	}

	if len(edits) > 0 {
		merged, err := mergePayload(env.Payload, edits)
		if err != nil {
			return Envelope{}, errors.NewValidation("edits cannot be applied: payload is not a JSON object")
		}
		env.Payload = merged
	}

	env.Status = to
	switch to {
	case StatusApproved:
		now := time.Now().UTC()
		env.ApprovedAt = &now
	case StatusDraft:
		// Reopen clears the approval stamp.
		env.ApprovedAt = nil
	}
	if notes != "" {
		env.UserNotes = notes
	}

	if err := m.store.Put(project, artifactType, env); err != nil {
		return Envelope{}, errors.Infra("store put", err)
	}
	return env, nil
}

// Get loads the current envelope for (project, type).
func (m *Manager) Get(project, artifactType string) (Envelope, bool, error) {
	env, ok, err := m.store.Get(project, artifactType)
	if err != nil {
		return Envelope{}, false, errors.Infra("store get", err)
	}
	return env, ok, nil
}

// StatusOf returns the status of (project, type). The second return is
// false when no artifact of that type exists.
func (m *Manager) StatusOf(project, artifactType string) (Status, bool, error) {
	env, ok, err := m.Get(project, artifactType)
	if err != nil || !ok {
		return "", false, err
	}
	return env.Status, true, nil
}

// List returns a per-type summary of every artifact the project has.
func (m *Manager) List(project string) (map[string]Summary, error) {
	types, err := m.store.ListTypes(project)
	if err != nil {
		return nil, errors.Infra("store list types", err)
	}

	out := make(map[string]Summary, len(types))
	for _, t := range types {
		env, ok, err := m.store.Get(project, t)
		if err != nil {
			return nil, errors.Infra("store get", err)
		}
		if !ok {
			continue
		}
		out[t] = Summary{
			Status:      env.Status,
			GeneratedAt: env.Metadata.GeneratedAt,
			ApprovedAt:  env.ApprovedAt,
		}
	}
	return out, nil
}

// Projects returns all project IDs known to the store.
func (m *Manager) Projects() ([]string, error) {
	ids, err := m.store.ListProjects()
	if err != nil {
		return nil, errors.Infra("store list projects", err)
	}
	return ids, nil
}
