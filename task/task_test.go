package task

import (
	"testing"

	"github.com/randalmurphal/llmkit/model"
)

func TestTierForTask(t *testing.T) {
	tests := []struct {
		typ  Type
		want model.Tier
	}{
		{Framing, model.TierThinking},
		{Critique, model.TierThinking},
		{Questions, model.TierThinking},
		{Expand, model.TierDefault},
		{Screen, model.TierDefault},
		{Refine, model.TierDefault},
		{Extract, model.TierFast},
		{Format, model.TierFast},
		{Summarize, model.TierFast},
		{Type("unknown"), model.TierDefault},
	}
	for _, tt := range tests {
		if got := TierForTask(tt.typ); got != tt.want {
			t.Errorf("TierForTask(%s) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestSelectModel(t *testing.T) {
	if got := SelectModel(Framing); got != model.ModelOpus {
		t.Errorf("SelectModel(Framing) = %v", got)
	}
	if got := SelectModel(Extract); got != model.ModelHaiku {
		t.Errorf("SelectModel(Extract) = %v", got)
	}
	if got := SelectModel(Type("unknown")); got != model.ModelSonnet {
		t.Errorf("SelectModel(unknown) = %v, want default tier fallback", got)
	}
}
