package service

import "time"

// PipelineConfig carries the tunables of the analysis pipeline. Services
// receive it explicitly instead of reading package globals, so tests can
// construct variants without touching the environment.
type PipelineConfig struct {
	// AnalysisTemperature is the generation temperature for structured
	// intent analysis. Kept low so the JSON contract stays stable.
	AnalysisTemperature float64

	// ContextTokenBudget bounds the assembled grounding context, measured
	// with EstimateTokens. Candidates are dropped whole before assembly;
	// the assembler itself never truncates.
	ContextTokenBudget int

	// Retrieval sizes per operation.
	DebateResults      int // debates grounding an intent analysis
	RelatedLawResults  int // related law sections for an intent analysis
	QueryLawResults    int // laws grounding a direct question
	QueryDebateResults int // debates grounding a direct question
	DefaultCitations   int // retrieved debates promoted to citations when the model omits them

	// StatuteCodes are the short codes recognized by the citation
	// resolver's prose pattern.
	StatuteCodes []string

	// MinSemanticQueryLen is the minimum query length for semantic search;
	// shorter queries go straight to the local filter.
	MinSemanticQueryLen int

	// Debounce delays for interactive search. The semantic path waits
	// longer because each keystroke would otherwise cost an embedding call.
	SearchDebounce   time.Duration
	SemanticDebounce time.Duration
}

// DefaultPipelineConfig returns the production configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		AnalysisTemperature: 0.1,
		ContextTokenBudget:  6000,
		DebateResults:       5,
		RelatedLawResults:   3,
		QueryLawResults:     5,
		QueryDebateResults:  3,
		DefaultCitations:    3,
		StatuteCodes:        []string{"IRPA", "IRPR", "CA", "CR"},
		MinSemanticQueryLen: 3,
		SearchDebounce:      300 * time.Millisecond,
		SemanticDebounce:    800 * time.Millisecond,
	}
}
