package integrationtest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"
	llm "github.com/randalmurphal/llmkit/claude"
	"github.com/randalmurphal/slrflow"
	"github.com/randalmurphal/slrflow/notify"
	"github.com/randalmurphal/slrflow/retrieval"
	"github.com/randalmurphal/slrflow/stage"
	"github.com/randalmurphal/slrflow/store"
	"github.com/randalmurphal/slrflow/trace"
)

// seedIdea is long enough to drive the heuristic generators when a
// stage falls back.
const seedIdea = "A systematic review of retrieval augmented generation " +
	"techniques for grounding large language model outputs in scientific literature."

// newPipeline builds a pipeline over an in-memory store with stub
// search providers for the executable databases.
func newPipeline(t *testing.T, notifier notify.Notifier) *slrflow.Pipeline {
	t.Helper()

	svc := retrieval.NewService([]retrieval.Provider{
		&stubProvider{name: "openalex", docs: []retrieval.Document{
			{Title: "Shared Paper", DOI: "10.1/shared", Provider: "openalex"},
			{Title: "OpenAlex Only", DOI: "10.1/oa", Provider: "openalex"},
		}},
		&stubProvider{name: "arxiv", docs: []retrieval.Document{
			{Title: "Shared Paper", DOI: "10.1/shared", Provider: "arxiv"},
			{Title: "ArXiv Only", ArxivID: "2501.00001", Provider: "arxiv"},
		}},
	})

	p, err := slrflow.New(slrflow.Config{
		Store:     store.NewMemStore(),
		Notifier:  notifier,
		Retrieval: svc,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

// setupContext creates a flowgraph.Context with stage services wired in.
func setupContext(t *testing.T, mockLLM llm.Client) flowgraph.Context {
	t.Helper()

	baseCtx := context.Background()

	if mockLLM != nil {
		baseCtx = stage.WithLLMClient(baseCtx, mockLLM)
	}

	traces, err := trace.NewFileStore(trace.StoreConfig{
		BaseDir: filepath.Join(t.TempDir(), "traces"),
	})
	if err == nil {
		baseCtx = stage.WithTraceManager(baseCtx, traces)
	}

	return flowgraph.NewContext(baseCtx, flowgraph.WithLLM(mockLLM))
}

// mockResponses creates a MockClient with sequential responses.
func mockResponses(responses ...string) *llm.MockClient {
	return llm.NewMockClient("").WithResponses(responses...)
}

// stubProvider serves canned documents for one database.
type stubProvider struct {
	name string
	docs []retrieval.Document
	err  error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Search(ctx context.Context, query string, limit int) ([]retrieval.Document, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.docs, nil
}

// notificationCapture records events for assertions.
type notificationCapture struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *notificationCapture) Notify(ctx context.Context, event notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *notificationCapture) byType(typ notify.EventType) []notify.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []notify.Event
	for _, e := range c.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
