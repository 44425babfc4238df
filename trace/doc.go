// Package trace records what happened during a stage run: the prompts
// sent, the responses received, and notable events, together with
// token accounting.
//
// A Run is opened when a stage starts, accumulates Steps while the
// stage computes, and is flushed to disk when it ends. Traces give
// reviewers the provenance of a draft artifact without bloating the
// artifact itself.
package trace
