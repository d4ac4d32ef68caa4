package models

// Reason names the rule that decided a chunk's fate.
type Reason string

const (
	ReasonSpecialChunk        Reason = "special_chunk"
	ReasonSchemaMatch         Reason = "schema_match"
	ReasonRecommendationBlock Reason = "recommendation_block"

	ReasonMainHeading      Reason = "main_heading"
	ReasonMainForm         Reason = "main_form"
	ReasonMainLongText     Reason = "main_long_text"
	ReasonMainHighValue    Reason = "main_high_value"
	ReasonMainMeasurement  Reason = "main_measurement"
	ReasonMainMediaCaption Reason = "main_media_caption"
	ReasonMainNoise        Reason = "main_noise"

	ReasonNoMainHeading Reason = "nomain_heading"
	ReasonNoMainText    Reason = "nomain_text"
	ReasonNoMainForm    Reason = "nomain_form"
	ReasonNoMainMedia   Reason = "nomain_media"
	ReasonNoMainShort   Reason = "nomain_short"

	ReasonOutsideMain Reason = "outside_main"

	// ReasonStrategyFilter marks a chunk dropped by a caller-supplied
	// keep strategy after the schema rules ran.
	ReasonStrategyFilter Reason = "strategy_filter"
)

// PruneDecision is the pruner's verdict for a single chunk.
type PruneDecision struct {
	Keep          bool     `json:"keep" yaml:"keep"`
	Reason        Reason   `json:"reason" yaml:"reason"`
	ReasonDetail  string   `json:"reason_detail,omitempty" yaml:"reason_detail,omitempty"`
	MatchedFields []string `json:"matched_fields,omitempty" yaml:"matched_fields,omitempty"`
}

// ReasonCounts tallies decisions by reason.
type ReasonCounts struct {
	Kept    map[Reason]int `json:"kept" yaml:"kept"`
	Removed map[Reason]int `json:"removed" yaml:"removed"`
}

// NewReasonCounts returns an empty tally.
func NewReasonCounts() ReasonCounts {
	return ReasonCounts{
		Kept:    make(map[Reason]int),
		Removed: make(map[Reason]int),
	}
}

// Add records one decision.
func (rc ReasonCounts) Add(d PruneDecision) {
	if d.Keep {
		rc.Kept[d.Reason]++
		return
	}
	rc.Removed[d.Reason]++
}
