package models

import "strings"

// ChunkKind is the structural type of a chunk.
type ChunkKind string

const (
	KindMeta          ChunkKind = "META"
	KindFrameworkData ChunkKind = "FRAMEWORK_DATA"
	KindHeading       ChunkKind = "HEADING"
	KindTextBlock     ChunkKind = "TEXT_BLOCK"
	KindList          ChunkKind = "LIST"
	KindTable         ChunkKind = "TABLE"
	KindForm          ChunkKind = "FORM"
	KindMedia         ChunkKind = "MEDIA"
)

// Synthetic tags for chunks produced by special extraction.
const (
	TagLinkedData    = "ld+json"
	TagPreviewMeta   = "preview-meta"
	TagFrameworkData = "framework-data"
)

// SpecialPathPrefix marks paths that live outside the parsed tree.
const SpecialPathPrefix = "special:"

// Chunk is an atomic, independently scorable fragment of a page.
// Chunks are created once per decomposition pass and never mutated.
type Chunk struct {
	Path       string            `json:"path" yaml:"path"`
	Markup     string            `json:"markup" yaml:"markup"`
	Text       string            `json:"text" yaml:"text"`
	Tag        string            `json:"tag" yaml:"tag"`
	Kind       ChunkKind         `json:"kind" yaml:"kind"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	ParentPath string            `json:"parent_path,omitempty" yaml:"parent_path,omitempty"`
	Depth      int               `json:"depth" yaml:"depth"`
	InMain     bool              `json:"in_main" yaml:"in_main"`
}

// IsSpecial reports whether the chunk came from special extraction
// rather than the parsed tree.
func (c Chunk) IsSpecial() bool {
	return strings.HasPrefix(c.Path, SpecialPathPrefix)
}

// Attr returns a curated attribute, or "" when absent.
func (c Chunk) Attr(key string) string {
	if c.Attributes == nil {
		return ""
	}
	return c.Attributes[key]
}

// CuratedAttributes lists the attribute keys copied onto chunks.
var CuratedAttributes = []string{
	"role", "aria-label", "aria-labelledby", "itemprop", "itemtype",
	"property", "content", "datetime", "href", "src", "alt", "title", "class",
}

// ToPlainText concatenates the text of the given chunks, one per line.
func ToPlainText(chunks []Chunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		if c.Text == "" {
			continue
		}
		sb.WriteString(c.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
