// Package prompt loads and renders the prompt templates used by stage
// generators.
//
// Templates are .txt files resolved from a project's .slrflow/prompts/
// or prompts/ directory, falling back to the versions embedded in the
// binary. Projects override a template by shipping a file with the
// same name.
package prompt
