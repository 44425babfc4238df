package task

import (
	"github.com/randalmurphal/llmkit/model"
)

// Type represents the kind of work a generation stage is performing.
// This determines which model tier is appropriate.
type Type string

const (
	// Methodological reasoning - needs the thinking tier
	Framing   Type = "framing"
	Critique  Type = "critique"
	Questions Type = "questions"

	// Standard generation - default tier
	Expand  Type = "expand"
	Screen  Type = "screen"
	Refine  Type = "refine"

	// Mechanical work - can use smaller models
	Extract   Type = "extract"
	Format    Type = "format"
	Summarize Type = "summarize"
)

// DefaultModelMap maps task types to default models.
var DefaultModelMap = map[Type]model.ModelName{
	Framing:   model.ModelOpus,
	Critique:  model.ModelOpus,
	Questions: model.ModelOpus,
	Expand:    model.ModelSonnet,
	Screen:    model.ModelSonnet,
	Refine:    model.ModelSonnet,
	Extract:   model.ModelHaiku,
	Format:    model.ModelHaiku,
	Summarize: model.ModelHaiku,
}

// TierForTask returns the appropriate tier for a task type.
func TierForTask(t Type) model.Tier {
	switch t {
	case Framing, Critique, Questions:
		return model.TierThinking
	case Extract, Format, Summarize:
		return model.TierFast
	default:
		return model.TierDefault
	}
}

// NewSelector creates a model selector configured for review-pipeline
// tasks. It uses the standard task-to-tier mapping.
func NewSelector(opts ...model.SelectorOption) *model.Selector {
	allOpts := append([]model.SelectorOption{
		model.WithTierFunc(func(task any) model.Tier {
			if t, ok := task.(Type); ok {
				return TierForTask(t)
			}
			return model.TierDefault
		}),
	}, opts...)

	return model.NewSelector(allOpts...)
}

// SelectModel selects the appropriate model for a task type.
// Uses the default model map unless overridden.
func SelectModel(t Type) model.ModelName {
	if m, ok := DefaultModelMap[t]; ok {
		return m
	}
	switch TierForTask(t) {
	case model.TierThinking:
		return model.ModelOpus
	case model.TierFast:
		return model.ModelHaiku
	default:
		return model.ModelSonnet
	}
}
