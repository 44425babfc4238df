// Package slrflow coordinates human-in-the-loop systematic review
// strategy development: each stage consumes previously approved
// artifacts and drafts new ones that a reviewer must approve before
// dependent stages unlock.
//
// The package is organized into subpackages by domain:
//
//   - artifact: artifact envelopes and the approval state machine
//   - store: file and in-memory artifact persistence
//   - stage: stage definitions, gating, and execution
//   - stages: the built-in stage strategies (setup through export)
//   - search: dialect-aware boolean query construction
//   - retrieval: bibliographic database providers and deduplication
//   - prompt: prompt template loading and rendering
//   - trace: generation audit trails
//   - notify: notification sinks (log, webhook, Slack)
//   - config: layered configuration resolution
//   - errors: shared error taxonomy
//   - task: task-based model selection
//   - testutil: test fixtures and helpers
//
// # Quick Start
//
//	p, _ := slrflow.New(slrflow.Config{Store: store.NewMemStore()})
//
//	res, project, _ := p.StartProject(ctx, "Evaluate grounding in RAG systems.")
//	p.ApproveArtifact(ctx, project, stages.TypeProjectContext, nil, "looks right")
//	res, _ = p.RunStage(ctx, project, stages.StageProblemFraming, nil)
//
// Stages are gated, not sequenced: a stage runs as soon as its declared
// prerequisite artifacts reach their required status, regardless of its
// nominal number.
package slrflow
