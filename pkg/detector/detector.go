// Package detector classifies a page by weighted voting over URL, meta and
// DOM signals.
package detector

import (
	"math"

	"github.com/dtnitsch/llm-web-pruner/models"
)

const (
	// DefaultThreshold applies to page types without a registered one.
	DefaultThreshold = 3
	// DOMCap bounds the positive DOM-tier contribution to any one type.
	// Blocked signals are not capped.
	DOMCap = 5
	// ShortCircuitFactor skips meta and DOM tiers when the URL-tier leader
	// already exceeds this multiple of its threshold.
	ShortCircuitFactor = 2
)

var thresholds = map[models.PageType]int{
	models.PageProductDetail:  4,
	models.PageProductListing: 4,
	models.PageNewsArticle:    4,
	models.PageBlogPost:       4,
	models.PageWikiArticle:    4,
	models.PageDashboard:      4,
	models.PageSaaSPricing:    4,
	models.PageLogin:          4,
}

// pageOrder fixes tie-breaking: earlier types win equal scores.
var pageOrder = []models.PageType{
	models.PageBlocked,
	models.PageProductDetail,
	models.PageProductListing,
	models.PageSearchResults,
	models.PageNewsArticle,
	models.PageBlogPost,
	models.PageWikiArticle,
	models.PageDocumentation,
	models.PageFAQ,
	models.PageEvent,
	models.PageLocalBusiness,
	models.PageSaaSPricing,
	models.PageGovernment,
	models.PageCheckout,
	models.PageLogin,
	models.PageForum,
	models.PageDashboard,
	models.PageError,
}

// schemaFor maps page types to the schema whose rules apply to them.
var schemaFor = map[models.PageType]models.SchemaKind{
	models.PageProductDetail:  models.SchemaProduct,
	models.PageProductListing: models.SchemaProduct,
	models.PageNewsArticle:    models.SchemaNewsArticle,
	models.PageBlogPost:       models.SchemaNewsArticle,
	models.PageWikiArticle:    models.SchemaWikiArticle,
	models.PageDocumentation:  models.SchemaWikiArticle,
	models.PageFAQ:            models.SchemaFAQPage,
	models.PageEvent:          models.SchemaEvent,
	models.PageLocalBusiness:  models.SchemaLocalBusiness,
	models.PageSaaSPricing:    models.SchemaSaaSPage,
	models.PageGovernment:     models.SchemaGovernmentPage,
}

// lateSignals are the meta and DOM tiers, compiled once.
var lateSignals = func() []signal {
	out := append([]signal{}, metaSignals...)
	out = append(out, ldSignals()...)
	return append(out, domSignals...)
}()

// Threshold returns the registered threshold for a page type.
func Threshold(pt models.PageType) int {
	if t, ok := thresholds[pt]; ok {
		return t
	}
	return DefaultThreshold
}

// SchemaFor returns the schema a page type maps to (SchemaNone if none).
func SchemaFor(pt models.PageType) models.SchemaKind {
	return schemaFor[pt]
}

type tally struct {
	scores      map[models.PageType]int
	domPositive map[models.PageType]int
	fired       []string
}

func (t *tally) apply(s signal, p *page) {
	if !s.match(p) {
		return
	}
	t.fired = append(t.fired, s.name)
	for pt, w := range s.weights {
		if s.tier == tierDOM && w > 0 && !s.blocked {
			t.domPositive[pt] += w
			continue
		}
		t.scores[pt] += w
	}
}

// Classify scores every signal tier for a URL and optional markup and
// returns the winning page type. It is a pure function.
func Classify(rawURL, markup string) models.ClassificationResult {
	p := newPage(rawURL, markup)
	t := &tally{
		scores:      make(map[models.PageType]int),
		domPositive: make(map[models.PageType]int),
	}

	for _, s := range urlSignals {
		t.apply(s, p)
	}

	leader, leadScore := rank(t.scores)
	shortCircuit := leader != "" && leadScore > ShortCircuitFactor*Threshold(leader)

	// Blocked signals run regardless: challenge pages hide behind any URL.
	if markup != "" {
		for _, s := range lateSignals {
			if shortCircuit && !s.blocked {
				continue
			}
			t.apply(s, p)
		}
	}

	for pt, v := range t.domPositive {
		t.scores[pt] += min(v, DOMCap)
	}

	return result(t)
}

func result(t *tally) models.ClassificationResult {
	res := models.ClassificationResult{
		PageType: models.PageUnknown,
		Signals:  t.fired,
		RunnerUp: models.PageUnknown,
	}
	if res.Signals == nil {
		res.Signals = []string{}
	}

	winner, score := rank(t.scores)
	if winner == "" {
		return res
	}
	res.Score = score

	ranked := make(map[models.PageType]int, len(t.scores))
	for pt, v := range t.scores {
		if pt != winner {
			ranked[pt] = v
		}
	}
	if second, secondScore := rank(ranked); second != "" {
		res.RunnerUp = second
		res.RunnerUpScore = secondScore
	}

	threshold := Threshold(winner)
	if score < threshold {
		return res
	}
	res.PageType = winner
	res.Confidence = math.Min(1, float64(score)/float64(2*threshold))
	res.Schema = SchemaFor(winner).String()
	return res
}

// rank returns the highest-scoring page type with a positive score, or ""
// when nothing scored. Ties go to the earlier type in pageOrder.
func rank(scores map[models.PageType]int) (models.PageType, int) {
	var best models.PageType
	bestScore := 0
	for _, pt := range pageOrder {
		if v := scores[pt]; v > bestScore {
			best, bestScore = pt, v
		}
	}
	return best, bestScore
}
