// Package render writes results as JSON, YAML, Markdown or a short text
// summary.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/llm-web-pruner/models"
)

// Format is an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ErrUnsupported is returned when a value cannot be shown in a format.
var ErrUnsupported = errors.New("format not supported for this output")

// ParseFormat validates a user-supplied format. An empty string is JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatYAML, FormatMarkdown, FormatText:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("invalid format: %s (want json, yaml, markdown or text)", s)
	}
}

// Value writes v as JSON or YAML.
func Value(w io.Writer, v any, f Format) error {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, f)
}

// Page writes a page result in any format.
func Page(w io.Writer, res *models.PageResult, f Format) error {
	switch f {
	case FormatMarkdown:
		md, err := Markdown(res)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	case FormatText:
		_, err := io.WriteString(w, Summary(res))
		return err
	}
	return Value(w, res, f)
}

// Markdown converts the pruned markup to Markdown, preceded by the
// extracted metadata as YAML front matter when there is any.
func Markdown(res *models.PageResult) (string, error) {
	body, err := htmltomarkdown.ConvertString(res.Pruning.PrunedHTML)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}

	var sb strings.Builder
	if len(res.Metadata) > 0 {
		front, err := yaml.Marshal(res.Metadata)
		if err != nil {
			return "", fmt.Errorf("failed to marshal metadata: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(front)
		sb.WriteString("---\n\n")
	}
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")
	return sb.String(), nil
}

// Summary is a short human-readable report of a page result.
func Summary(res *models.PageResult) string {
	r := res.Pruning
	var sb strings.Builder
	line := func(label, format string, args ...any) {
		fmt.Fprintf(&sb, "%-10s %s\n", label, fmt.Sprintf(format, args...))
	}

	line("run", "%s", r.RunID)
	schema := r.Schema
	if schema == "" {
		schema = "none"
	}
	if c := res.Classification; c != nil {
		line("schema", "%s (%s, %.0f%% confidence)", schema, c.PageType, c.Confidence*100)
	} else {
		line("schema", "%s", schema)
	}
	line("tokens", "%s -> %s (%.1f%% smaller)",
		humanize.Comma(int64(r.RawTokenCount)), humanize.Comma(int64(r.PrunedTokenCount)), r.ReductionPct)
	line("size", "%s -> %s", humanize.Bytes(uint64(r.RawBytes)), humanize.Bytes(uint64(len(r.PrunedHTML))))
	line("chunks", "%s of %s kept", humanize.Comma(int64(r.SelectedChunks)), humanize.Comma(int64(r.TotalChunks)))
	line("elapsed", "%.1f ms", r.ElapsedMS)
	if r.Language != "" {
		line("language", "%s (%.2f)", r.Language, r.LanguageConfidence)
	}
	if len(r.ReasonCounts.Kept) > 0 {
		line("kept", "%s", counts(r.ReasonCounts.Kept))
	}
	if len(r.ReasonCounts.Removed) > 0 {
		line("removed", "%s", counts(r.ReasonCounts.Removed))
	}
	if len(res.Metadata) > 0 {
		line("fields", "%s", strings.Join(sortedKeys(res.Metadata), ", "))
	}
	if len(r.Errors) == 0 {
		line("errors", "none")
	}
	for _, e := range r.Errors {
		line("error", "%s", e.Error())
	}
	return sb.String()
}

func counts(m map[models.Reason]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[models.Reason(k)]))
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m models.Metadata) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
