package slrflow

import (
	"sort"

	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/stage"
)

// StageStatus is one row of a project's progress report.
type StageStatus struct {
	Name     string                     `json:"name"`
	Number   int                        `json:"number"`
	Ready    bool                       `json:"ready"`
	Unmet    []stage.Unmet              `json:"unmet,omitempty"`
	Produced map[string]artifact.Status `json:"produced,omitempty"`
	Complete bool                       `json:"complete"`
}

// ProjectStatus reports every registered stage's readiness and output
// state for a project. Progress is derived from the declared
// dependency graph, never from the nominal stage numbers: a stage is
// ready the moment its requirements are satisfied, and complete once
// every artifact it produces is approved.
func (p *Pipeline) ProjectStatus(project string) ([]StageStatus, error) {
	defs := p.registry.Definitions()
	statuses := make([]StageStatus, 0, len(defs))
	for _, def := range defs {
		ready, err := p.registry.Resolve(project, def.Name)
		if err != nil {
			return nil, err
		}
		row := StageStatus{
			Name:     def.Name,
			Number:   def.Number,
			Ready:    ready.Ready,
			Unmet:    ready.Unmet,
			Produced: make(map[string]artifact.Status, len(def.Produces)),
			Complete: true,
		}
		for _, typ := range def.Produces {
			status, exists, err := p.lifecycle.StatusOf(project, typ)
			if err != nil {
				return nil, err
			}
			if !exists {
				row.Complete = false
				continue
			}
			row.Produced[typ] = status
			if status != artifact.StatusApproved {
				row.Complete = false
			}
		}
		statuses = append(statuses, row)
	}
	return statuses, nil
}

// NextStages returns the stages worth running now: prerequisites met
// and at least one produced artifact absent or rejected. Stages whose
// drafts are sitting in review are not runnable work; they appear in
// PendingApprovals instead.
func (p *Pipeline) NextStages(project string) ([]string, error) {
	statuses, err := p.ProjectStatus(project)
	if err != nil {
		return nil, err
	}
	var next []string
	for _, row := range statuses {
		if !row.Ready || row.Complete {
			continue
		}
		def, _ := p.registry.Definition(row.Name)
		needsRun := false
		for _, typ := range def.Produces {
			status, ok := row.Produced[typ]
			if !ok || status == artifact.StatusRejected {
				needsRun = true
				break
			}
		}
		if needsRun {
			next = append(next, row.Name)
		}
	}
	return next, nil
}

// PendingApprovals lists artifact types currently sitting in draft,
// awaiting a reviewer decision.
func (p *Pipeline) PendingApprovals(project string) ([]string, error) {
	listing, err := p.lifecycle.List(project)
	if err != nil {
		return nil, err
	}
	var pending []string
	for typ, entry := range listing {
		if entry.Status == artifact.StatusDraft {
			pending = append(pending, typ)
		}
	}
	sort.Strings(pending)
	return pending, nil
}
