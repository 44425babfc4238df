// Package store provides artifact.Store implementations: a JSON file store
// with atomic per-key writes, and an in-memory store for tests and examples.
package store
