// Package manifest summarizes a batch of pruned pages.
package manifest

import (
	"sort"
	"time"

	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/mapreduce"
	"github.com/dtnitsch/llm-web-pruner/pkg/tokens"
)

// TopReasons is how many aggregate counters a Summary lists.
const TopReasons = 10

// Page status values.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

// Entry is the outcome of one batch job. Err is set when the page could
// not be read at all; Result is set otherwise.
type Entry struct {
	File   string
	Result *models.PageResult
	Err    error
}

// Summary is a lightweight overview of a batch without the pruned markup.
type Summary struct {
	GeneratedAt  string        `json:"generated_at" yaml:"generated_at"`
	TotalPages   int           `json:"total_pages" yaml:"total_pages"`
	Succeeded    int           `json:"succeeded" yaml:"succeeded"`
	Degraded     int           `json:"degraded" yaml:"degraded"`
	Failed       int           `json:"failed" yaml:"failed"`
	RawTokens    int           `json:"raw_tokens" yaml:"raw_tokens"`
	PrunedTokens int           `json:"pruned_tokens" yaml:"pruned_tokens"`
	ReductionPct float64       `json:"reduction_pct" yaml:"reduction_pct"`
	TopReasons   []string      `json:"top_reasons" yaml:"top_reasons"`
	Pages        []PageSummary `json:"pages" yaml:"pages"`
}

// PageSummary is one page's line in a Summary.
type PageSummary struct {
	File           string  `json:"file" yaml:"file"`
	PageID         string  `json:"page_id,omitempty" yaml:"page_id,omitempty"`
	Schema         string  `json:"schema,omitempty" yaml:"schema,omitempty"`
	Status         string  `json:"status" yaml:"status"`
	Error          string  `json:"error,omitempty" yaml:"error,omitempty"`
	RawTokens      int     `json:"raw_tokens" yaml:"raw_tokens"`
	PrunedTokens   int     `json:"pruned_tokens" yaml:"pruned_tokens"`
	ReductionPct   float64 `json:"reduction_pct" yaml:"reduction_pct"`
	SelectedChunks int     `json:"selected_chunks" yaml:"selected_chunks"`
	TotalChunks    int     `json:"total_chunks" yaml:"total_chunks"`
}

// Generate builds a Summary. Pages are listed by file name whatever order
// the entries finished in.
func Generate(entries []Entry, now time.Time) Summary {
	s := Summary{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		TotalPages:  len(entries),
		Pages:       make([]PageSummary, 0, len(entries)),
	}

	intermediate := make([]map[string]int, 0, len(entries))
	for _, e := range entries {
		ps := PageSummary{File: e.File}

		switch {
		case e.Err != nil || e.Result == nil:
			s.Failed++
			ps.Status = StatusError
			if e.Err != nil {
				ps.Error = e.Err.Error()
			}
		default:
			r := &e.Result.Pruning
			ps.PageID = r.PageID
			ps.Schema = r.Schema
			ps.RawTokens = r.RawTokenCount
			ps.PrunedTokens = r.PrunedTokenCount
			ps.ReductionPct = r.ReductionPct
			ps.SelectedChunks = r.SelectedChunks
			ps.TotalChunks = r.TotalChunks
			if r.Degraded() {
				s.Degraded++
				ps.Status = StatusDegraded
				ps.Error = r.Errors[0].Error()
			} else {
				s.Succeeded++
				ps.Status = StatusOK
			}
			s.RawTokens += r.RawTokenCount
			s.PrunedTokens += r.PrunedTokenCount
			intermediate = append(intermediate, mapreduce.Map(r))
		}

		s.Pages = append(s.Pages, ps)
	}

	sort.SliceStable(s.Pages, func(i, j int) bool { return s.Pages[i].File < s.Pages[j].File })
	s.ReductionPct = tokens.Reduction(s.RawTokens, s.PrunedTokens)
	s.TopReasons = mapreduce.TopN(mapreduce.Reduce(intermediate), TopReasons)
	return s
}

// Clean reports whether every page pruned without errors.
func (s *Summary) Clean() bool {
	return s.Degraded == 0 && s.Failed == 0
}
