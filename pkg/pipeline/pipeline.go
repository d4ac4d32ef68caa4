// Package pipeline sequences decomposition, chrome filtering, schema
// pruning, re-merge and compression for one page at a time.
//
// A Pipeline never panics and never returns an error from PrunePage:
// every failure is recorded on the result, which then carries the raw
// markup unchanged.
package pipeline

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/aom"
	"github.com/dtnitsch/llm-web-pruner/pkg/chunker"
	"github.com/dtnitsch/llm-web-pruner/pkg/compress"
	"github.com/dtnitsch/llm-web-pruner/pkg/detector"
	"github.com/dtnitsch/llm-web-pruner/pkg/extractors"
	"github.com/dtnitsch/llm-web-pruner/pkg/i18n"
	"github.com/dtnitsch/llm-web-pruner/pkg/language"
	"github.com/dtnitsch/llm-web-pruner/pkg/pruner"
	"github.com/dtnitsch/llm-web-pruner/pkg/remerge"
	"github.com/dtnitsch/llm-web-pruner/pkg/tokens"
)

// AOMFilter removes non-content subtrees. It takes ownership of doc and
// returns the (possibly smaller) document to decompose next.
type AOMFilter interface {
	Filter(doc *goquery.Document, schema string) (*goquery.Document, models.RemovalStats)
}

// Remerger reassembles selected chunks in document order.
type Remerger interface {
	Remerge(chunks []models.Chunk) string
}

// Compressor compacts merged markup losslessly.
type Compressor interface {
	Compress(markup string) string
}

// TokenCounter counts tokens in text.
type TokenCounter interface {
	Count(text string) int
}

// LanguageDetector reports the language of text and a confidence.
type LanguageDetector interface {
	Detect(text string) (string, float64)
}

// Options configures a Pipeline. Nil collaborators get the defaults.
type Options struct {
	Config *models.Config
	Terms  *i18n.Terms
	Logger *slog.Logger

	AOM        AOMFilter
	Remerger   Remerger
	Compressor Compressor
	Tokens     TokenCounter
	// Language is used when set, or built when Config.DetectLanguage is on.
	Language LanguageDetector
	// Strategy optionally narrows the kept set after pruning.
	Strategy *pruner.Strategy
}

// Pipeline is safe for concurrent use; every call allocates its own
// document and chunk state.
type Pipeline struct {
	cfg    models.Config
	logger *slog.Logger

	decomposer *chunker.Decomposer
	pruner     *pruner.Pruner
	extractor  *extractors.MetadataExtractor

	aom        AOMFilter
	remerger   Remerger
	compressor Compressor
	tokens     TokenCounter
	language   LanguageDetector
	strategy   *pruner.Strategy
}

// New creates a Pipeline. It fails only when a configured terms file
// cannot be loaded.
func New(opts Options) (*Pipeline, error) {
	cfg := models.DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	terms := opts.Terms
	if terms == nil {
		terms = i18n.Default()
		if cfg.TermsFile != "" {
			loaded, err := i18n.Load(cfg.TermsFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load terms: %w", err)
			}
			terms = loaded
		}
	}

	p := &Pipeline{
		cfg:    cfg,
		logger: logger,
		decomposer: chunker.New(chunker.Options{
			MaxDepth:              cfg.MaxDepth,
			FrameworkDataMaxChars: cfg.FrameworkDataMaxChars,
			Logger:                logger,
		}),
		pruner:     pruner.New(pruner.Options{Config: &cfg, Terms: terms, Logger: logger}),
		extractor:  extractors.New(extractors.Options{Logger: logger}),
		aom:        opts.AOM,
		remerger:   opts.Remerger,
		compressor: opts.Compressor,
		tokens:     opts.Tokens,
		language:   opts.Language,
		strategy:   opts.Strategy,
	}
	if p.aom == nil {
		p.aom = aom.New(aom.Options{Logger: logger})
	}
	if p.remerger == nil {
		p.remerger = remerge.New()
	}
	if p.compressor == nil {
		p.compressor = compress.New()
	}
	if p.tokens == nil {
		p.tokens = tokens.New()
	}
	if p.language == nil && cfg.DetectLanguage {
		p.language = language.New()
	}
	return p, nil
}

// PrunePage prunes one page. On any failure the result carries the raw
// markup as PrunedHTML, a diagnostic and at least one error entry.
func (p *Pipeline) PrunePage(raw, siteID, pageID, schema string) (res models.PruningResult) {
	start := time.Now()
	res = models.PruningResult{
		RunID:        uuid.NewString(),
		SiteID:       siteID,
		PageID:       pageID,
		Schema:       schema,
		RawBytes:     len(raw),
		Errors:       []models.PruneError{},
		ReasonCounts: models.NewReasonCounts(),
	}
	logger := p.logger.With("run_id", res.RunID, "site_id", siteID, "page_id", pageID, "schema", schema)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("unexpected failure while pruning page", "error", r, "stack", string(debug.Stack()))
			softFail(&res, raw, "prune", models.ErrorUnexpected, fmt.Sprint(r))
		}
		res.ElapsedMS = float64(time.Since(start).Microseconds()) / 1000
	}()

	res.RawTokenCount = p.tokens.Count(raw)

	specials, doc, err := p.decomposer.Decompose(raw)
	res.Specials = specials
	if err != nil {
		logger.Warn("decomposition failed, returning raw markup", "error", err)
		softFail(&res, raw, "decompose", models.ErrorInput, err.Error())
		return res
	}

	if _, err := models.ParseSchema(schema); err != nil {
		res.AddError("prune", models.ErrorUnknownSchema, err.Error())
	}

	doc, stats := p.aom.Filter(doc, schema)
	res.AOMStats = stats

	// the filter changed the tree; chunks from before it are stale
	tree, truncated := p.decomposer.DecomposeTreeWithStats(doc)
	if truncated > 0 {
		res.AddError("decompose", models.ErrorDepthExceeded,
			fmt.Sprintf("%d subtrees deeper than %d dropped", truncated, p.cfg.MaxDepth))
	}
	if len(tree) == 0 {
		logger.Warn("no chunks left after filtering, returning raw markup")
		softFail(&res, raw, "filter", models.ErrorEmptyResult, "no chunks left after filtering")
		return res
	}

	chunks := make([]models.Chunk, 0, len(specials)+len(tree))
	chunks = append(chunks, specials...)
	chunks = append(chunks, tree...)
	res.TotalChunks = len(chunks)
	res.Headings, res.Itemprops = split(tree)

	decisions := p.pruner.Prune(chunks, schema, hasMain(tree))
	decisions = p.strategy.Apply(decisions)
	res.ReasonCounts = pruner.Tally(decisions)

	selected := pruner.Kept(decisions)
	if len(selected) == 0 {
		logger.Warn("no chunks selected, returning raw markup")
		softFail(&res, raw, "prune", models.ErrorEmptyResult, "no chunks selected")
		return res
	}
	res.Selected = selected
	res.SelectedChunks = len(selected)

	res.PrunedHTML = p.compressor.Compress(p.remerger.Remerge(selected))
	res.PrunedTokenCount = p.tokens.Count(res.PrunedHTML)
	res.ReductionPct = tokens.Reduction(res.RawTokenCount, res.PrunedTokenCount)

	if p.language != nil {
		res.Language, res.LanguageConfidence = p.language.Detect(models.ToPlainText(treeOnly(selected)))
	}

	logger.Debug("pruned page",
		"total_chunks", res.TotalChunks,
		"selected_chunks", res.SelectedChunks,
		"raw_tokens", res.RawTokenCount,
		"pruned_tokens", res.PrunedTokenCount)
	return res
}

// ClassifyPage labels a page from its URL and optional markup.
func (p *Pipeline) ClassifyPage(rawURL, markup string) models.ClassificationResult {
	return detector.Classify(rawURL, markup)
}

// ExtractMetadata runs the metadata cascade over special and heading
// chunks.
func (p *Pipeline) ExtractMetadata(specials, headings []models.Chunk, schema string, hint models.SourceHint) models.Metadata {
	return p.extractor.Extract(specials, headings, schema, hint)
}

// Process classifies (when the schema is empty or "auto"), prunes and
// extracts metadata for one page.
func (p *Pipeline) Process(req models.PageRequest) models.PageResult {
	var out models.PageResult

	schema := strings.TrimSpace(req.Schema)
	if schema == "" || strings.EqualFold(schema, models.SchemaAuto) {
		cls := p.ClassifyPage(req.URL, req.HTML)
		out.Classification = &cls
		schema = cls.Schema
	}

	out.Pruning = p.PrunePage(req.HTML, req.SiteID, req.PageID, schema)

	extra := make([]models.Chunk, 0, len(out.Pruning.Headings)+len(out.Pruning.Itemprops))
	extra = append(extra, out.Pruning.Headings...)
	extra = append(extra, out.Pruning.Itemprops...)
	hint := models.ResolveSourceHint(req.Hint, out.Pruning.Specials)
	out.Metadata = p.ExtractMetadata(out.Pruning.Specials, extra, schema, hint)
	return out
}

// softFail resets the output fields so the caller gets the raw markup back.
func softFail(res *models.PruningResult, raw, stage string, kind models.ErrorKind, msg string) {
	res.PrunedHTML = raw
	res.PrunedTokenCount = res.RawTokenCount
	res.ReductionPct = 0
	res.Selected = nil
	res.SelectedChunks = 0
	res.Diagnostic = fmt.Sprintf("%s: %s", stage, msg)
	res.AddError(stage, kind, msg)
}

// split returns the heading chunks and the chunks carrying itemprop.
func split(tree []models.Chunk) (headings, itemprops []models.Chunk) {
	for _, c := range tree {
		if c.Kind == models.KindHeading {
			headings = append(headings, c)
		}
		if c.Attr("itemprop") != "" {
			itemprops = append(itemprops, c)
		}
	}
	return headings, itemprops
}

func hasMain(tree []models.Chunk) bool {
	for _, c := range tree {
		if c.InMain {
			return true
		}
	}
	return false
}

func treeOnly(chunks []models.Chunk) []models.Chunk {
	out := make([]models.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if !c.IsSpecial() {
			out = append(out, c)
		}
	}
	return out
}
