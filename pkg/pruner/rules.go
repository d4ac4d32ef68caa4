package pruner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/i18n"
)

var (
	// "only 3 left", "nur noch 2", "残り1点"
	scarcityRe = regexp.MustCompile(`(?i)\bonly\s+\d+\s+(left|remaining)\b|\bnur\s+noch\s+\d+|残り\s?\d+|\d+\s?개\s?남음|仅剩\s?\d+`)

	percentRe    = regexp.MustCompile(`\d{1,2}(?:[.,]\d)?\s?%`)
	percentOffRe = regexp.MustCompile(`(?i)(-\s?\d{1,2}\s?%|\b\d{1,2}\s?%\s*off\b|\bsave\s+\d{1,2}\s?%)`)

	measurementRe = regexp.MustCompile(`(?i)(\b\d+(?:[.,]\d+)?\s?(mm|cm|m|km|in|inch|inches|ft|kg|g|mg|lb|lbs|oz|ml|l|gb|tb|mb|mah|w|kw|v|hz|ghz|mp)\b|\b\d+(?:[.,]\d+)?\s?[x×]\s?\d+(?:[.,]\d+)?\b)`)
)

// highValue detects short text that is decision-critical on shopping
// pages. It returns the matched category and the phrase that matched.
func highValue(text string, terms *i18n.Terms) (string, string, bool) {
	if m := scarcityRe.FindString(text); m != "" {
		return i18n.Scarcity, m, true
	}
	if m := terms.Find(i18n.Scarcity, text); m != "" {
		return i18n.Scarcity, m, true
	}
	if m := percentOffRe.FindString(text); m != "" {
		return i18n.Discount, m, true
	}
	if percentRe.MatchString(text) {
		if m := terms.Find(i18n.Discount, text); m != "" {
			return i18n.Discount, m, true
		}
	}
	for _, key := range []string{i18n.Availability, i18n.Shipping} {
		if m := terms.Find(key, text); m != "" {
			return key, m, true
		}
	}
	return "", "", false
}

func textLen(c models.Chunk) int {
	return utf8.RuneCountInString(c.Text)
}

// inMain applies the per-kind thresholds for chunks inside <main>.
func (p *Pruner) inMain(c models.Chunk) models.PruneDecision {
	th := p.cfg.Thresholds
	keep := func(r models.Reason, detail string) models.PruneDecision {
		return models.PruneDecision{Keep: true, Reason: r, ReasonDetail: detail}
	}

	switch c.Kind {
	case models.KindHeading:
		return keep(models.ReasonMainHeading, c.Tag)
	case models.KindForm:
		return keep(models.ReasonMainForm, "")
	case models.KindTextBlock, models.KindTable, models.KindList:
		minLen := th.MainText
		switch c.Kind {
		case models.KindTable:
			minLen = th.MainTable
		case models.KindList:
			minLen = th.MainList
		}
		n := textLen(c)
		if n >= minLen {
			return keep(models.ReasonMainLongText, "")
		}
		if n <= th.HighValueMaxText {
			if label, phrase, ok := highValue(c.Text, p.terms); ok {
				return keep(models.ReasonMainHighValue, label+":"+strings.ToLower(strings.TrimSpace(phrase)))
			}
		}
		if measurementRe.MatchString(c.Text) {
			return keep(models.ReasonMainMeasurement, "")
		}
	case models.KindMedia:
		if textLen(c) > th.MainMediaCaption {
			return keep(models.ReasonMainMediaCaption, "")
		}
	}
	return models.PruneDecision{Reason: models.ReasonMainNoise, ReasonDetail: string(c.Kind)}
}

// noMain applies the more permissive thresholds used when the page has
// no main landmark.
func (p *Pruner) noMain(c models.Chunk) models.PruneDecision {
	th := p.cfg.Thresholds
	n := textLen(c)

	switch c.Kind {
	case models.KindHeading:
		return models.PruneDecision{Keep: true, Reason: models.ReasonNoMainHeading, ReasonDetail: c.Tag}
	case models.KindTextBlock, models.KindTable, models.KindList:
		if n >= th.NoMainText {
			return models.PruneDecision{Keep: true, Reason: models.ReasonNoMainText}
		}
	case models.KindForm:
		if n >= th.NoMainForm {
			return models.PruneDecision{Keep: true, Reason: models.ReasonNoMainForm}
		}
	case models.KindMedia:
		if n >= th.NoMainMedia {
			return models.PruneDecision{Keep: true, Reason: models.ReasonNoMainMedia}
		}
	}
	return models.PruneDecision{Reason: models.ReasonNoMainShort, ReasonDetail: string(c.Kind)}
}
