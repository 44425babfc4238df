package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxResults caps how many documents one query fetches when the
// caller does not say otherwise.
const DefaultMaxResults = 100

// syntaxOnly lists databases queries are generated for but cannot be
// executed against, with the reason.
var syntaxOnly = map[string]string{
	"pubmed": "PubMed execution requires E-utilities credentials: copy the generated query into the PubMed search form",
	"scopus": "Scopus execution requires an institutional API key: copy the generated query into the Scopus search form",
}

// Execution summarizes one query run against one database. Full
// documents ride along but callers keeping lightweight state can drop
// them and retain only the counts.
type Execution struct {
	Database string        `json:"database"`
	Query    string        `json:"query"`
	Hits     int           `json:"hits"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Docs     []Document    `json:"-"`
}

// Service fans queries out across providers and merges the results.
type Service struct {
	providers  map[string]Provider
	maxResults int
	log        *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMaxResults caps the per-database result count.
func WithMaxResults(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithLogger sets the logger used for execution progress.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// NewService creates a Service over the given providers.
func NewService(providers []Provider, opts ...ServiceOption) *Service {
	s := &Service{
		providers:  make(map[string]Provider, len(providers)),
		maxResults: DefaultMaxResults,
		log:        slog.Default(),
	}
	for _, p := range providers {
		s.providers[p.Name()] = p
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Databases lists the executable databases in sorted order.
func (s *Service) Databases() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SyntaxOnly lists databases that only support query generation, with
// the reason execution is unavailable.
func (s *Service) SyntaxOnly() map[string]string {
	out := make(map[string]string, len(syntaxOnly))
	for name, reason := range syntaxOnly {
		out[name] = reason
	}
	return out
}

// Executable reports whether a database can be executed rather than
// only generated for.
func (s *Service) Executable(database string) bool {
	_, ok := s.providers[database]
	return ok
}

// Execute runs one query against one database.
func (s *Service) Execute(ctx context.Context, database, query string) Execution {
	exec := Execution{Database: database, Query: query}

	provider, ok := s.providers[database]
	if !ok {
		if reason, known := syntaxOnly[database]; known {
			exec.Error = reason
		} else {
			exec.Error = fmt.Sprintf("database %q is not supported", database)
		}
		return exec
	}

	start := time.Now()
	docs, err := provider.Search(ctx, query, s.maxResults)
	exec.Duration = time.Since(start)

	if err != nil {
		s.log.Error("search failed",
			"database", database,
			"error", err)
		exec.Error = err.Error()
		return exec
	}

	exec.Hits = len(docs)
	exec.Docs = docs
	s.log.Info("search completed",
		"database", database,
		"hits", exec.Hits,
		"duration", exec.Duration)
	return exec
}

// ExecuteAll runs database-specific queries concurrently and returns
// per-database summaries plus the deduplicated union of all documents.
// A failing database is recorded in its Execution rather than aborting
// the others; only context cancellation stops the whole run.
func (s *Service) ExecuteAll(ctx context.Context, queries map[string]string) ([]Execution, []Document, error) {
	databases := make([]string, 0, len(queries))
	for database := range queries {
		databases = append(databases, database)
	}
	sort.Strings(databases)

	execs := make([]Execution, len(databases))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, database := range databases {
		g.Go(func() error {
			exec := s.Execute(gctx, database, queries[database])
			mu.Lock()
			execs[i] = exec
			mu.Unlock()
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var merged []Document
	for _, exec := range execs {
		merged = append(merged, exec.Docs...)
	}
	unique := Dedup(merged)

	s.log.Info("searches merged",
		"databases", len(databases),
		"total", len(merged),
		"unique", len(unique))
	return execs, unique, nil
}
