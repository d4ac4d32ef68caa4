package extract

import (
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-pruner/internal/common"
	"github.com/dtnitsch/llm-web-pruner/internal/prune"
	"github.com/dtnitsch/llm-web-pruner/pkg/pipeline"
	"github.com/dtnitsch/llm-web-pruner/pkg/render"
)

// ExtractAction prints only the structured metadata of a page.
func ExtractAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	req, err := prune.ParseRequest(c)
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}
	if req.Format != render.FormatJSON && req.Format != render.FormatYAML {
		return cli.Exit("extract supports --format json or yaml", common.ExitUsage)
	}

	p, err := pipeline.New(pipeline.Options{Config: &req.Config, Logger: logger})
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}

	out := p.Process(req.Page)
	logger.Info("Extracted metadata", "page_id", req.Page.PageID, "schema", out.Pruning.Schema, "fields", len(out.Metadata))

	if err := render.Value(c.App.Writer, out.Metadata, req.Format); err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}
	return nil
}
