package models

import (
	"fmt"
	"strings"
)

// SourceHint names the metadata source a caller expects to be the best
// one for a page. An empty hint runs the full cascade.
type SourceHint string

const (
	HintNone       SourceHint = ""
	HintLinkedData SourceHint = "jsonld"
	HintItemprop   SourceHint = "itemprop"
	HintPreview    SourceHint = "preview"
)

// ParseSourceHint validates a user-supplied hint.
func ParseSourceHint(s string) (SourceHint, error) {
	switch h := SourceHint(strings.ToLower(strings.TrimSpace(s))); h {
	case HintNone, HintLinkedData, HintItemprop, HintPreview:
		return h, nil
	case "og", "opengraph":
		return HintPreview, nil
	case "ld+json", "ld":
		return HintLinkedData, nil
	default:
		return HintNone, fmt.Errorf("invalid source hint: %s", s)
	}
}

// ResolveSourceHint picks the hint for a page: an explicit hint wins,
// otherwise linked data is preferred whenever the page carries any.
func ResolveSourceHint(explicit SourceHint, specials []Chunk) SourceHint {
	if explicit != HintNone {
		return explicit
	}
	for _, c := range specials {
		if c.Tag == TagLinkedData {
			return HintLinkedData
		}
	}
	return HintNone
}
