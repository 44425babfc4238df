// Package stages provides the built-in stage strategies for systematic
// review strategy development: project setup, problem framing, research
// question generation, search concept expansion, database query
// planning, screening criteria, strategy export, and query execution.
//
// Generating strategies call an LLM client when one is present in the
// context and fall back to deterministic heuristic generators when it
// is not, so the full pipeline remains runnable offline. Query planning
// and screening criteria are always deterministic.
//
// Register the full set with RegisterBuiltin:
//
//	reg := stage.NewRegistry(lifecycle)
//	err := stages.RegisterBuiltin(reg, stages.Options{Retrieval: svc})
package stages
