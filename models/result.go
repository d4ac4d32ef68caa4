package models

import "fmt"

// ErrorKind classifies a PruneError.
type ErrorKind string

const (
	ErrorInput         ErrorKind = "input"
	ErrorPartialData   ErrorKind = "partial_data"
	ErrorDepthExceeded ErrorKind = "depth_exceeded"
	ErrorUnknownSchema ErrorKind = "unknown_schema"
	ErrorEmptyResult   ErrorKind = "empty_result"
	ErrorUnexpected    ErrorKind = "unexpected"
)

// PruneError is a structured, non-fatal failure recorded on a result.
type PruneError struct {
	Stage   string    `json:"stage" yaml:"stage"`
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
}

func (e PruneError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Stage, e.Kind, e.Message)
}

// RemovalStats counts subtrees removed by the AOM filter, per reason.
type RemovalStats map[string]int

// Total returns the number of removed subtrees.
func (s RemovalStats) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// PruningResult is the aggregate outcome of pruning one page. A non-empty
// Errors list together with PrunedHTML equal to the raw input means the
// result is degraded, not failed.
type PruningResult struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	SiteID string `json:"site_id,omitempty" yaml:"site_id,omitempty"`
	PageID string `json:"page_id,omitempty" yaml:"page_id,omitempty"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	RawTokenCount    int     `json:"raw_token_count" yaml:"raw_token_count"`
	PrunedTokenCount int     `json:"pruned_token_count" yaml:"pruned_token_count"`
	ReductionPct     float64 `json:"reduction_pct" yaml:"reduction_pct"`

	TotalChunks    int `json:"total_chunks" yaml:"total_chunks"`
	SelectedChunks int `json:"selected_chunks" yaml:"selected_chunks"`

	RawBytes   int     `json:"raw_bytes" yaml:"raw_bytes"`
	PrunedHTML string  `json:"pruned_html" yaml:"pruned_html"`
	ElapsedMS  float64 `json:"elapsed_ms" yaml:"elapsed_ms"`

	Errors     []PruneError `json:"errors" yaml:"errors"`
	Diagnostic string       `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`

	Specials  []Chunk `json:"specials,omitempty" yaml:"specials,omitempty"`
	Headings  []Chunk `json:"headings,omitempty" yaml:"headings,omitempty"`
	Itemprops []Chunk `json:"itemprops,omitempty" yaml:"itemprops,omitempty"`
	Selected  []Chunk `json:"selected,omitempty" yaml:"selected,omitempty"`

	AOMStats     RemovalStats `json:"aom_stats,omitempty" yaml:"aom_stats,omitempty"`
	ReasonCounts ReasonCounts `json:"reason_counts" yaml:"reason_counts"`

	Language           string  `json:"language,omitempty" yaml:"language,omitempty"`
	LanguageConfidence float64 `json:"language_confidence,omitempty" yaml:"language_confidence,omitempty"`
}

// Degraded reports whether the result carries errors.
func (r *PruningResult) Degraded() bool {
	return len(r.Errors) > 0
}

// AddError appends a structured error.
func (r *PruningResult) AddError(stage string, kind ErrorKind, msg string) {
	r.Errors = append(r.Errors, PruneError{Stage: stage, Kind: kind, Message: msg})
}
