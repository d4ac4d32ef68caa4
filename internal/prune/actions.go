package prune

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-pruner/internal/common"
	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/pipeline"
	"github.com/dtnitsch/llm-web-pruner/pkg/pruner"
	"github.com/dtnitsch/llm-web-pruner/pkg/render"
)

// Request is a fully validated prune invocation.
type Request struct {
	Page     models.PageRequest
	Format   render.Format
	Fields   string
	Strategy *pruner.Strategy
	Config   models.Config
}

// ParseRequest validates the command's flags and reads the input page.
func ParseRequest(c *cli.Context) (*Request, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, err
	}
	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}
	strategy, err := pruner.ParseStrategy(c.String("strategy"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse strategy: %w", err)
	}
	hint, err := models.ParseSourceHint(c.String("hint"))
	if err != nil {
		return nil, err
	}

	var pageURL string
	if raw := c.String("url"); raw != "" {
		if pageURL, err = common.ValidateURL(raw); err != nil {
			return nil, err
		}
	}

	html, err := common.ReadInput(c.String("file"), c.App.Reader)
	if err != nil {
		return nil, err
	}

	pageID := c.String("page")
	if pageID == "" {
		pageID = common.ContentHash(html)[:16]
	}

	return &Request{
		Page: models.PageRequest{
			URL:    pageURL,
			HTML:   string(html),
			SiteID: c.String("site"),
			PageID: pageID,
			Schema: c.String("schema"),
			Hint:   hint,
		},
		Format:   format,
		Fields:   c.String("fields"),
		Strategy: strategy,
		Config:   cfg,
	}, nil
}

// PruneAction prunes one page and writes the result to stdout. A
// degraded result still prints and exits with code 1.
func PruneAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	req, err := ParseRequest(c)
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}

	p, err := pipeline.New(pipeline.Options{Config: &req.Config, Logger: logger, Strategy: req.Strategy})
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}

	logger.Info("Pruning page",
		"site_id", req.Page.SiteID,
		"page_id", req.Page.PageID,
		"schema", req.Page.Schema,
		"bytes", len(req.Page.HTML))

	out := p.Process(req.Page)
	logResult(logger, &out)

	if req.Fields != "" && (req.Format == render.FormatJSON || req.Format == render.FormatYAML) {
		err = render.Value(c.App.Writer, common.FilterResultFields(out, req.Fields), req.Format)
	} else {
		err = render.Page(c.App.Writer, &out, req.Format)
	}
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}

	if out.Pruning.Degraded() {
		return cli.Exit("", common.ExitDegraded)
	}
	return nil
}

func logResult(logger *slog.Logger, out *models.PageResult) {
	r := out.Pruning
	if r.Degraded() {
		for _, e := range r.Errors {
			logger.Warn("Page pruned with errors", "run_id", r.RunID, "page_id", r.PageID, "stage", e.Stage, "reason", e.Kind, "error", e.Message)
		}
		return
	}
	logger.Info("Page pruned",
		"run_id", r.RunID,
		"page_id", r.PageID,
		"schema", r.Schema,
		"selected_chunks", r.SelectedChunks,
		"total_chunks", r.TotalChunks,
		"reduction_pct", r.ReductionPct)
}
