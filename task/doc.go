// Package task provides task-based model selection for generation
// stages.
//
// Core types:
//   - Type: what kind of work a stage is doing (framing, critique,
//     expansion, extraction)
//   - Selector: picks the model tier appropriate for that work
//
// Deep methodological reasoning (problem framing, critique) runs on
// the thinking tier; mechanical extraction and formatting runs on the
// fast tier; everything else uses the default tier.
//
// Example usage:
//
//	selector := task.NewSelector()
//	model := selector.Select(task.Critique)
package task
