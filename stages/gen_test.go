package stages

import (
	"context"
	"errors"
	"strings"
	"testing"

	llm "github.com/randalmurphal/llmkit/claude"

	"github.com/randalmurphal/slrflow/stage"
	"github.com/randalmurphal/slrflow/trace"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "bare object",
			content: `{"title": "direct"}`,
			want:    "direct",
		},
		{
			name:    "fenced json",
			content: "```json\n{\"title\": \"fenced\"}\n```",
			want:    "fenced",
		},
		{
			name:    "surrounded by prose",
			content: "Here is the result:\n{\"title\": \"prose\"}\nHope that helps!",
			want:    "prose",
		},
		{
			name:    "no object",
			content: "I cannot answer that.",
			wantErr: true,
		},
		{
			name:    "malformed object",
			content: `{"title": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := decodeJSON(tt.content, &p)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeJSON: %v", err)
			}
			if p.Title != tt.want {
				t.Errorf("title = %q, want %q", p.Title, tt.want)
			}
		})
	}
}

func TestCompleteJSON_NoClient(t *testing.T) {
	rec := newRecorder(context.Background(), "p1", "test-stage")
	var out map[string]any
	err := completeJSON(context.Background(), rec, "", "project_context", map[string]any{"raw_idea": "x"}, &out)
	if !errors.Is(err, errNoClient) {
		t.Fatalf("err = %v, want errNoClient", err)
	}
}

func TestCompleteJSON_RendersAndParses(t *testing.T) {
	var gotReq llm.CompletionRequest
	client := llm.NewMockClient("").WithCompleteFunc(func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
		gotReq = req
		return &llm.CompletionResponse{Content: `{"title": "From Model"}`}, nil
	})
	ctx := stage.WithLLMClient(context.Background(), client)
	rec := newRecorder(ctx, "p1", "test-stage")

	var out struct {
		Title string `json:"title"`
	}
	err := completeJSON(ctx, rec, "persona_methodologist", "project_context",
		map[string]any{"raw_idea": "study agent memory"}, &out)
	if err != nil {
		t.Fatalf("completeJSON: %v", err)
	}
	if out.Title != "From Model" {
		t.Errorf("title = %q", out.Title)
	}
	if gotReq.SystemPrompt == "" {
		t.Error("persona should be passed as the system prompt")
	}
	if len(gotReq.Messages) != 1 || !strings.Contains(gotReq.Messages[0].Content, "study agent memory") {
		t.Errorf("user prompt should interpolate the raw idea: %+v", gotReq.Messages)
	}
	if len(rec.steps) != 2 {
		t.Errorf("trace steps = %d, want prompt + response", len(rec.steps))
	}
}

func TestCompleteJSON_UnknownTemplate(t *testing.T) {
	client := llm.NewMockClient(`{}`)
	ctx := stage.WithLLMClient(context.Background(), client)
	rec := newRecorder(ctx, "p1", "test-stage")

	var out map[string]any
	if err := completeJSON(ctx, rec, "", "no_such_template", nil, &out); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRecorder_MirrorsToTraceManager(t *testing.T) {
	mgr, err := trace.NewFileStore(trace.StoreConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := stage.WithTraceManager(context.Background(), mgr)

	rec := newRecorder(ctx, "proj", "problem-framing")
	rec.prompt("problem_critique", "the prompt")
	resp := &llm.CompletionResponse{Content: "the response"}
	resp.Usage.InputTokens = 10
	resp.Usage.OutputTokens = 20
	rec.response("problem_critique", resp)
	rec.event("critique", "feasibility 7/10")
	rec.finish(nil)

	metas, err := mgr.List(trace.Filter{Project: "proj"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("runs = %d, want 1", len(metas))
	}
	meta := metas[0]
	if meta.Stage != "problem-framing" {
		t.Errorf("stage = %q", meta.Stage)
	}
	if meta.Status != trace.RunStatusCompleted {
		t.Errorf("status = %q, want completed", meta.Status)
	}
	if meta.StepCount != 3 {
		t.Errorf("steps = %d, want 3", meta.StepCount)
	}
	if meta.TotalTokensIn != 10 || meta.TotalTokensOut != 20 {
		t.Errorf("tokens = %d/%d, want 10/20", meta.TotalTokensIn, meta.TotalTokensOut)
	}
}

func TestRecorder_NoManagerIsHarmless(t *testing.T) {
	rec := newRecorder(context.Background(), "proj", "stage")
	rec.event("x", "y")
	rec.finish(nil)
	if len(rec.steps) != 1 {
		t.Errorf("steps = %d, want 1", len(rec.steps))
	}
}
