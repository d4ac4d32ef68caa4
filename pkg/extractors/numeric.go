package extractors

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

var (
	numberTokenRe       = regexp.MustCompile(`-?\d[\d.,]*`)
	europeanThousandsRe = regexp.MustCompile(`^[1-9]\d{0,2}(\.\d{3})+$`)
)

// ParseDecimal reads a number from a JSON scalar or free text such as
// "$1,299.00" or "1.500,99 €".
//
// Separators are disambiguated as follows: with both present, the last
// one is the decimal separator; a comma alone is a thousands separator;
// a period alone is a thousands separator only when every group after it
// has exactly three digits and the leading group does not start with 0.
func ParseDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		return parseNumericString(t)
	}
	return decimal.Zero, false
}

func parseNumericString(s string) (decimal.Decimal, bool) {
	token := numberTokenRe.FindString(strings.ReplaceAll(s, " ", ""))
	token = strings.TrimRight(token, ".,")
	if token == "" || token == "-" {
		return decimal.Zero, false
	}

	lastComma := strings.LastIndex(token, ",")
	lastDot := strings.LastIndex(token, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			token = strings.ReplaceAll(token, ".", "")
			token = strings.Replace(token, ",", ".", 1)
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	case lastComma >= 0:
		token = strings.ReplaceAll(token, ",", "")
	case lastDot >= 0:
		if europeanThousandsRe.MatchString(strings.TrimPrefix(token, "-")) {
			token = strings.ReplaceAll(token, ".", "")
		}
	}

	d, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseFloat is ParseDecimal converted to float64.
func ParseFloat(v any) (float64, bool) {
	d, ok := ParseDecimal(v)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// ParseInt rounds half to even: "2.5" is 2, "3.5" is 4.
func ParseInt(v any) (int, bool) {
	d, ok := ParseDecimal(v)
	if !ok {
		return 0, false
	}
	return int(d.RoundBank(0).IntPart()), true
}

// NormalizeDate renders a parseable date as RFC 3339. Unparseable input is
// returned unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return s
	}
	return t.Format(time.RFC3339)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
