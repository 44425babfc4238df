// Package search translates concept-based query plans into the native
// query syntax of bibliographic databases.
//
// A QueryPlan is a dialect-neutral intermediate representation: concept
// blocks of synonym terms that are OR-joined internally and AND-joined
// against each other. A Dialect knows how one database formats terms,
// field tags, and boolean operators. Build applies a dialect to a plan
// and returns the final query string.
package search
