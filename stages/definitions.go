package stages

import (
	"github.com/randalmurphal/slrflow/artifact"
	"github.com/randalmurphal/slrflow/retrieval"
	"github.com/randalmurphal/slrflow/stage"
)

// Options configures the built-in stage set.
type Options struct {
	// Retrieval executes database queries for the query-execution
	// stage. Without it the stage registers but fails at run time.
	Retrieval *retrieval.Service
}

// RegisterBuiltin registers the eight built-in stages. Stage numbers
// are nominal labels: gating flows from the declared requirements, and
// the natural run order is not monotonic in the numbers. The
// query-execution stage (7) feeds the strategy-export stage (6), so a
// full run approves the query plan, executes it, and only then
// assembles the export bundle.
func RegisterBuiltin(r *stage.Registry, opts Options) error {
	approved := func(typ string) stage.Requirement {
		return stage.Requirement{Type: typ, MinStatus: artifact.StatusApproved}
	}
	draft := func(typ string) stage.Requirement {
		return stage.Requirement{Type: typ, MinStatus: artifact.StatusDraft}
	}

	builtin := []struct {
		def      stage.Definition
		strategy stage.Strategy
	}{
		{
			def: stage.Definition{
				Name:     StageProjectSetup,
				Number:   0,
				Produces: []string{TypeProjectContext},
			},
			strategy: SetupStrategy{},
		},
		{
			def: stage.Definition{
				Name:     StageProblemFraming,
				Number:   1,
				Produces: []string{TypeProblemFraming, TypeConceptModel},
				Requires: []stage.Requirement{approved(TypeProjectContext)},
			},
			strategy: FramingStrategy{},
		},
		{
			def: stage.Definition{
				Name:     StageResearchQuestions,
				Number:   2,
				Produces: []string{TypeResearchQuestionSet},
				Requires: []stage.Requirement{
					approved(TypeProblemFraming),
					approved(TypeConceptModel),
				},
			},
			strategy: QuestionsStrategy{},
		},
		{
			def: stage.Definition{
				Name:     StageConceptExpansion,
				Number:   3,
				Produces: []string{TypeSearchConceptBlocks},
				Requires: []stage.Requirement{
					approved(TypeConceptModel),
					approved(TypeResearchQuestionSet),
				},
			},
			strategy: ExpansionStrategy{},
		},
		{
			def: stage.Definition{
				Name:     StageQueryPlan,
				Number:   4,
				Produces: []string{TypeDatabaseQueryPlan},
				Requires: []stage.Requirement{approved(TypeSearchConceptBlocks)},
			},
			strategy: QueryPlanStrategy{},
		},
		{
			def: stage.Definition{
				Name:     StageScreening,
				Number:   5,
				Produces: []string{TypeScreeningCriteria},
				Requires: []stage.Requirement{
					approved(TypeProblemFraming),
					approved(TypeConceptModel),
					approved(TypeResearchQuestionSet),
					draft(TypeDatabaseQueryPlan),
				},
			},
			strategy: ScreeningStrategy{},
		},
		{
			def: stage.Definition{
				Name:     StageExport,
				Number:   6,
				Produces: []string{TypeStrategyExportBundle},
				Requires: []stage.Requirement{
					approved(TypeProjectContext),
					approved(TypeProblemFraming),
					approved(TypeConceptModel),
					approved(TypeResearchQuestionSet),
					approved(TypeSearchConceptBlocks),
					approved(TypeDatabaseQueryPlan),
					draft(TypeScreeningCriteria),
					draft(TypeSearchResults),
				},
			},
			strategy: ExportStrategy{},
		},
		{
			def: stage.Definition{
				Name:     StageExecution,
				Number:   7,
				Produces: []string{TypeSearchResults},
				Requires: []stage.Requirement{approved(TypeDatabaseQueryPlan)},
			},
			strategy: ExecutionStrategy{Service: opts.Retrieval},
		},
	}

	for _, s := range builtin {
		if err := r.Register(s.def, s.strategy); err != nil {
			return err
		}
	}
	return nil
}
