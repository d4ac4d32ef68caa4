package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-web-pruner/internal/common"
)

const widgetPage = `<html><head><title>Widget</title>
<script type="application/ld+json">{"@type":"Product","name":"Widget","offers":{"price":"9900"}}</script>
</head><body>
<nav><a href="/home">Home</a><a href="/shop">Shop all categories</a></nav>
<main>
<h1>Widget</h1>
<p>This widget is the finest widget ever made for home and office use.</p>
</main>
</body></html>`

// run executes the app and returns stdout and the exit code it requested.
func run(t *testing.T, stdin string, args ...string) (string, int) {
	t.Helper()
	code := common.ExitOK
	oldExiter, oldErr := cli.OsExiter, cli.ErrWriter
	cli.OsExiter = func(c int) { code = c }
	cli.ErrWriter = io.Discard
	defer func() { cli.OsExiter, cli.ErrWriter = oldExiter, oldErr }()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)

	if err := app.Run(append([]string{"llm-web-pruner"}, args...)); err != nil && code == common.ExitOK {
		code = common.ExitUsage
	}
	return out.String(), code
}

func TestPrune_FieldsFromStdin(t *testing.T) {
	out, code := run(t, widgetPage, "prune", "--quiet", "--file", "-", "--schema", "Product",
		"--fields", "pruning.schema,metadata.name")
	require.Equal(t, common.ExitOK, code)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]any{
		"metadata": map[string]any{"name": "Widget"},
		"pruning":  map[string]any{"schema": "Product"},
	}, got)
}

func TestPrune_TextSummary(t *testing.T) {
	out, code := run(t, widgetPage, "prune", "-q", "-f", "-", "--schema", "Product", "--format", "text")
	require.Equal(t, common.ExitOK, code)
	assert.Contains(t, out, "schema     Product")
	assert.Contains(t, out, "errors     none")
}

func TestPrune_StrategyFromUsageExample(t *testing.T) {
	out, code := run(t, widgetPage, "prune", "-q", "-f", "-", "--schema", "Product",
		"--strategy", "kind:TEXT_BLOCK|HEADING,len:>=40,main:only", "--fields", "pruning.pruned_html")
	require.Equal(t, common.ExitOK, code)
	assert.Contains(t, out, "finest widget")
}

func TestPrune_ExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  int
	}{
		{name: "degraded result", stdin: "   ", args: []string{"prune", "-q", "-f", "-"}, want: common.ExitDegraded},
		{name: "bad format", stdin: widgetPage, args: []string{"prune", "-q", "-f", "-", "--format", "pdf"}, want: common.ExitUsage},
		{name: "bad strategy", stdin: widgetPage, args: []string{"prune", "-q", "-f", "-", "--strategy", "kind:BOGUS"}, want: common.ExitUsage},
		{name: "bad hint", stdin: widgetPage, args: []string{"prune", "-q", "-f", "-", "--hint", "rss"}, want: common.ExitUsage},
		{name: "missing file", args: []string{"prune", "-q", "-f", "/nonexistent/page.html"}, want: common.ExitUsage},
		{name: "missing file flag", args: []string{"prune", "-q"}, want: common.ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, code := run(t, tt.stdin, tt.args...)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestClassify(t *testing.T) {
	out, code := run(t, "", "classify", "-q", "--url", "https://www.example.com/vp/products/123456?itemId=9")
	require.Equal(t, common.ExitOK, code)
	assert.Contains(t, out, `"schema": "Product"`)

	_, code = run(t, "", "classify", "-q", "--url", "not a url")
	assert.Equal(t, common.ExitUsage, code)

	_, code = run(t, "", "classify", "-q", "--url", "https://example.com", "--format", "text")
	assert.Equal(t, common.ExitUsage, code)
}

func TestExtract(t *testing.T) {
	out, code := run(t, widgetPage, "extract", "-q", "-f", "-", "--schema", "Product", "--format", "yaml")
	require.Equal(t, common.ExitOK, code)
	assert.Contains(t, out, "name: Widget")
}
