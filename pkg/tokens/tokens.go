// Package tokens estimates LLM token counts.
package tokens

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// CharsPerToken is the average characters per token assumed by Estimate.
const CharsPerToken = 4

// Estimator is the default TokenCounter.
type Estimator struct{}

// New creates an Estimator.
func New() *Estimator {
	return &Estimator{}
}

// Count is the package-level Estimate.
func (Estimator) Count(s string) int {
	return Estimate(s)
}

// Estimate returns ceil(runes/4).
func Estimate(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + CharsPerToken - 1) / CharsPerToken
}

// Reduction is the percentage of raw tokens removed, rounded to two
// decimals. A non-positive raw count gives 0.
func Reduction(raw, pruned int) float64 {
	if raw <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(raw - pruned)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(raw)), 4).
		Round(2)
	f, _ := pct.Float64()
	return f
}
