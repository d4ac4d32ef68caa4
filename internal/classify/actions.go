package classify

import (
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-pruner/internal/common"
	"github.com/dtnitsch/llm-web-pruner/pkg/detector"
	"github.com/dtnitsch/llm-web-pruner/pkg/render"
)

// ClassifyAction labels a page from its URL and, optionally, its markup.
func ClassifyAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}
	if format != render.FormatJSON && format != render.FormatYAML {
		return cli.Exit("classify supports --format json or yaml", common.ExitUsage)
	}

	pageURL, err := common.ValidateURL(c.String("url"))
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}

	var markup string
	if path := c.String("file"); path != "" {
		data, err := common.ReadInput(path, c.App.Reader)
		if err != nil {
			return cli.Exit(err.Error(), common.ExitUsage)
		}
		markup = string(data)
	}

	res := detector.Classify(pageURL, markup)
	logger.Info("Classified page",
		"url", pageURL,
		"page_type", res.PageType,
		"score", res.Score,
		"runner_up", res.RunnerUp)

	if err := render.Value(c.App.Writer, res, format); err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}
	return nil
}
