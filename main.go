package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-pruner/internal/batch"
	"github.com/dtnitsch/llm-web-pruner/internal/classify"
	"github.com/dtnitsch/llm-web-pruner/internal/common"
	"github.com/dtnitsch/llm-web-pruner/internal/extract"
	"github.com/dtnitsch/llm-web-pruner/internal/prune"
)

var logFlags = []cli.Flag{
	&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
	&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug output"},
}

var pageFlags = []cli.Flag{
	&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "HTML file to read, - for stdin", Required: true},
	&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "page URL, used for classification"},
	&cli.StringFlag{Name: "schema", Aliases: []string{"s"}, Value: "auto", Usage: "schema name or auto"},
	&cli.StringFlag{Name: "site", Usage: "site identifier"},
	&cli.StringFlag{Name: "page", Usage: "page identifier (default: content hash)"},
	&cli.StringFlag{Name: "hint", Usage: "preferred metadata source: jsonld, itemprop or preview"},
	&cli.StringFlag{Name: "format", Value: "json", Usage: "output format: json, yaml, markdown or text"},
	&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
	&cli.IntFlag{Name: "max-depth", Usage: "override the maximum decomposition depth"},
	&cli.BoolFlag{Name: "detect-language", Usage: "detect the language of the pruned text"},
	&cli.StringFlag{Name: "terms", Usage: "YAML file of localized keywords"},
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "llm-web-pruner",
		Usage: "prune web pages down to the content an LLM needs",
		Commands: []*cli.Command{
			{
				Name:   "prune",
				Usage:  "prune a page and report what was kept",
				Action: prune.PruneAction,
				Flags: withFlags(pageFlags, logFlags, []cli.Flag{
					&cli.StringFlag{Name: "fields", Usage: "comma-separated result fields, e.g. pruning.pruned_html,metadata"},
					&cli.StringFlag{Name: "strategy", Usage: "extra filter, e.g. kind:TEXT_BLOCK|HEADING,len:>=40,main:only"},
				}),
			},
			{
				Name:   "classify",
				Usage:  "label a page type from its URL and markup",
				Action: classify.ClassifyAction,
				Flags: withFlags(logFlags, []cli.Flag{
					&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "page URL", Required: true},
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "HTML file to read, - for stdin"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "output format: json or yaml"},
				}),
			},
			{
				Name:   "extract",
				Usage:  "print the structured metadata of a page",
				Action: extract.ExtractAction,
				Flags:  withFlags(pageFlags, logFlags),
			},
			{
				Name:      "batch",
				Usage:     "prune many files concurrently and print a summary manifest",
				ArgsUsage: "FILE|GLOB...",
				Action:    batch.BatchAction,
				Flags: withFlags(logFlags, []cli.Flag{
					&cli.StringFlag{Name: "schema", Aliases: []string{"s"}, Value: "auto", Usage: "schema name or auto"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: 4, Usage: "number of concurrent workers"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "output format: json or yaml"},
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
					&cli.IntFlag{Name: "max-depth", Usage: "override the maximum decomposition depth"},
					&cli.BoolFlag{Name: "detect-language", Usage: "detect the language of the pruned text"},
					&cli.StringFlag{Name: "terms", Usage: "YAML file of localized keywords"},
				}),
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// cli.Exit errors have already been handled by the app
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(common.ExitUsage)
	}
}
