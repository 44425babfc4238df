// Package retrieval executes search queries against bibliographic
// database APIs and merges the results.
//
// Each supported database is a Provider wrapping a shared HTTP client
// with retries and backoff. The Service fans a query plan out across
// providers concurrently, collects per-database execution summaries,
// and deduplicates the merged document set by DOI, arXiv id, or
// normalized title.
package retrieval
