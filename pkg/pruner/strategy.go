package pruner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dtnitsch/llm-web-pruner/models"
)

// Strategy narrows the kept set after the schema rules ran. Specials are
// never filtered.
type Strategy struct {
	MinText  int
	Kinds    map[models.ChunkKind]struct{}
	MainOnly bool
}

// ParseStrategy parses a comma-separated strategy such as
// "kind:HEADING|TEXT_BLOCK,len:>=40,main:only". An empty string is a
// no-op strategy.
func ParseStrategy(strategyStr string) (*Strategy, error) {
	strategy := &Strategy{}
	if strings.TrimSpace(strategyStr) == "" {
		return strategy, nil
	}

	for _, part := range strings.Split(strategyStr, ",") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid strategy part: %s", part)
		}
		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])

		switch key {
		case "len":
			if !strings.HasPrefix(value, ">=") {
				return nil, fmt.Errorf("unsupported length operator in: %s", value)
			}
			n, err := strconv.Atoi(strings.TrimSpace(value[2:]))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid length value: %s", value)
			}
			strategy.MinText = n
		case "kind":
			if strategy.Kinds == nil {
				strategy.Kinds = make(map[models.ChunkKind]struct{})
			}
			for _, k := range strings.Split(value, "|") {
				kind := models.ChunkKind(strings.ToUpper(strings.TrimSpace(k)))
				if !validKind(kind) {
					return nil, fmt.Errorf("unknown chunk kind: %s", k)
				}
				strategy.Kinds[kind] = struct{}{}
			}
		case "main":
			switch value {
			case "only":
				strategy.MainOnly = true
			case "any":
				strategy.MainOnly = false
			default:
				return nil, fmt.Errorf("invalid main value: %s", value)
			}
		default:
			return nil, fmt.Errorf("unknown strategy key: %s", key)
		}
	}
	return strategy, nil
}

func validKind(k models.ChunkKind) bool {
	switch k {
	case models.KindMeta, models.KindFrameworkData, models.KindHeading, models.KindTextBlock,
		models.KindList, models.KindTable, models.KindForm, models.KindMedia:
		return true
	}
	return false
}

// passes reports whether a kept tree chunk satisfies the strategy.
func (s *Strategy) passes(c models.Chunk) bool {
	if textLen(c) < s.MinText {
		return false
	}
	if len(s.Kinds) > 0 {
		if _, ok := s.Kinds[c.Kind]; !ok {
			return false
		}
	}
	return !s.MainOnly || c.InMain
}

// Apply returns a copy of decisions where kept chunks failing the
// strategy are dropped with ReasonStrategyFilter. A nil strategy returns
// decisions unchanged.
func (s *Strategy) Apply(decisions []Decision) []Decision {
	if s == nil {
		return decisions
	}
	out := make([]Decision, len(decisions))
	for i, d := range decisions {
		out[i] = d
		if !d.Keep || d.Chunk.Kind == models.KindMeta || d.Chunk.Kind == models.KindFrameworkData {
			continue
		}
		if !s.passes(d.Chunk) {
			out[i].PruneDecision = models.PruneDecision{
				Reason:        models.ReasonStrategyFilter,
				ReasonDetail:  string(d.Reason),
				MatchedFields: d.MatchedFields,
			}
		}
	}
	return out
}
