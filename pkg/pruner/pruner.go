// Package pruner decides, chunk by chunk, what survives schema-aware
// pruning. Rules are evaluated in order and the first applicable rule
// wins; every chunk gets exactly one decision.
package pruner

import (
	"log/slog"
	"strings"

	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/i18n"
)

// Options configures a Pruner. Zero values fall back to the defaults.
type Options struct {
	Config *models.Config
	Terms  *i18n.Terms
	Logger *slog.Logger
}

// Pruner holds read-only configuration and is safe for concurrent use;
// per-call state lives on the stack of Prune.
type Pruner struct {
	cfg    models.Config
	terms  *i18n.Terms
	logger *slog.Logger
}

// Decision pairs a chunk with its verdict.
type Decision struct {
	Chunk models.Chunk `json:"chunk" yaml:"chunk"`
	models.PruneDecision
}

// New creates a Pruner.
func New(opts Options) *Pruner {
	p := &Pruner{
		cfg:    models.DefaultConfig(),
		terms:  opts.Terms,
		logger: opts.Logger,
	}
	if opts.Config != nil {
		p.cfg = *opts.Config
	}
	if p.terms == nil {
		p.terms = i18n.Default()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// recommendation tracks price chunks for the Product related-items filter.
type recommendation struct {
	firstPath    string
	outsideHits  int
	minHits      int
	minSharedLen int
}

// allow reports whether a price-matching chunk survives.
func (r *recommendation) allow(c models.Chunk) bool {
	if r.firstPath == "" {
		r.firstPath = c.Path
		if !c.InMain {
			r.outsideHits++
		}
		return true
	}
	if !c.InMain {
		r.outsideHits++
	}
	if r.outsideHits > r.minHits && sharedSegments(r.firstPath, c.Path) < r.minSharedLen {
		return false
	}
	return true
}

// Prune decides every chunk against the named schema. hasMain tells the
// pruner whether the page has a main landmark at all. An unknown schema
// is logged and pruned with structural rules only.
func (p *Pruner) Prune(chunks []models.Chunk, schema string, hasMain bool) []Decision {
	kind, err := models.ParseSchema(schema)
	var m matcher
	if err != nil {
		p.logger.Warn("unknown schema, using structural rules only", "schema", schema)
	} else {
		m = matchers[kind]
	}

	rec := &recommendation{
		minHits:      p.cfg.Recommendation.MinOutsideMainHits,
		minSharedLen: p.cfg.Recommendation.MinSharedDepth,
	}

	decisions := make([]Decision, 0, len(chunks))
	for _, c := range chunks {
		decisions = append(decisions, Decision{Chunk: c, PruneDecision: p.decide(c, m, kind, hasMain, rec)})
	}
	return decisions
}

func (p *Pruner) decide(c models.Chunk, m matcher, kind models.SchemaKind, hasMain bool, rec *recommendation) models.PruneDecision {
	// 1: specials carry the structured data and always survive
	if c.Kind == models.KindMeta || c.Kind == models.KindFrameworkData {
		return models.PruneDecision{Keep: true, Reason: models.ReasonSpecialChunk, ReasonDetail: string(c.Kind)}
	}

	// 2: schema field matches
	if m != nil && (c.Text != "" || c.Attr("content") != "") {
		if fields := m.match(c, p.terms); len(fields) > 0 {
			d := models.PruneDecision{
				Keep:          true,
				Reason:        models.ReasonSchemaMatch,
				ReasonDetail:  strings.Join(fields, ","),
				MatchedFields: fields,
			}
			if kind == models.SchemaProduct && contains(fields, "price") && !rec.allow(c) {
				d.Keep = false
				d.Reason = models.ReasonRecommendationBlock
				d.ReasonDetail = "price outside canonical block"
			}
			return d
		}
	}

	// 3 and 4: structural rules
	if hasMain && c.InMain {
		return p.inMain(c)
	}
	if !hasMain {
		return p.noMain(c)
	}

	// 5
	return models.PruneDecision{Reason: models.ReasonOutsideMain}
}

// Tally counts decisions by reason.
func Tally(decisions []Decision) models.ReasonCounts {
	rc := models.NewReasonCounts()
	for _, d := range decisions {
		rc.Add(d.PruneDecision)
	}
	return rc
}

// Kept returns the chunks of the keep decisions, in input order.
func Kept(decisions []Decision) []models.Chunk {
	var out []models.Chunk
	for _, d := range decisions {
		if d.Keep {
			out = append(out, d.Chunk)
		}
	}
	return out
}

// sharedSegments counts the leading path segments a and b have in common.
func sharedSegments(a, b string) int {
	as, bs := strings.Split(a, "/"), strings.Split(b, "/")
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
