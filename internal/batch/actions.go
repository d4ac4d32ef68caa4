package batch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-pruner/internal/common"
	"github.com/dtnitsch/llm-web-pruner/pkg/manifest"
	"github.com/dtnitsch/llm-web-pruner/pkg/pipeline"
	"github.com/dtnitsch/llm-web-pruner/pkg/render"
)

// BatchAction prunes every file named by the arguments (globs allowed)
// and prints a manifest summarizing the run.
func BatchAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}
	if format != render.FormatJSON && format != render.FormatYAML {
		return cli.Exit("batch supports --format json or yaml", common.ExitUsage)
	}

	paths, err := expand(c.Args().Slice())
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}
	if len(paths) == 0 {
		return cli.Exit("no input files given", common.ExitUsage)
	}

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}
	p, err := pipeline.New(pipeline.Options{Config: &cfg, Logger: logger})
	if err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}

	entries := run(logger, p, paths, c.String("schema"), c.Int("workers"))
	summary := manifest.Generate(entries, time.Now())
	logger.Info("Batch finished",
		"pages", summary.TotalPages,
		"succeeded", summary.Succeeded,
		"degraded", summary.Degraded,
		"failed", summary.Failed,
		"reduction_pct", summary.ReductionPct)

	if err := render.Value(c.App.Writer, summary, format); err != nil {
		return cli.Exit(err.Error(), common.ExitUsage)
	}
	if !summary.Clean() {
		return cli.Exit("", common.ExitDegraded)
	}
	return nil
}

// expand resolves glob patterns, keeping plain paths as given and
// dropping duplicates.
func expand(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			matches = []string{arg}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}
