// Package mapreduce aggregates per-page decision tallies across a batch.
package mapreduce

import (
	"fmt"
	"sort"

	"github.com/dtnitsch/llm-web-pruner/models"
)

// Map flattens one page's tallies into "kept:<reason>", "removed:<reason>"
// and "aom:<reason>" counters.
func Map(res *models.PruningResult) map[string]int {
	counts := make(map[string]int, len(res.ReasonCounts.Kept)+len(res.ReasonCounts.Removed)+len(res.AOMStats))
	for r, n := range res.ReasonCounts.Kept {
		counts["kept:"+string(r)] += n
	}
	for r, n := range res.ReasonCounts.Removed {
		counts["removed:"+string(r)] += n
	}
	for r, n := range res.AOMStats {
		counts["aom:"+r] += n
	}
	return counts
}

// Reduce aggregates a slice of counter maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for key, count := range counts {
			finalResults[key] += count
		}
	}

	return finalResults
}

// TopN returns the n largest counters formatted as "key:count", largest
// first. Ties are ordered by key.
func TopN(counts map[string]int, n int) []string {
	type kv struct {
		Key   string
		Value int
	}

	ss := make([]kv, 0, len(counts))
	for k, v := range counts {
		ss = append(ss, kv{k, v})
	}
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	if n < 0 {
		n = 0
	}
	if len(ss) < n {
		n = len(ss)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf("%s:%d", ss[i].Key, ss[i].Value)
	}
	return out
}
