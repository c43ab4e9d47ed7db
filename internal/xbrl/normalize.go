package xbrl

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

var yearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`FY(\d{4})`),
	regexp.MustCompile(`PFY(\d{4})`),
	regexp.MustCompile(`BPFY(\d{4})`),
	regexp.MustCompile(`CFY(\d{4})`),
	regexp.MustCompile(`(\d{4})(?:Q[1-4])?`),
}

// ExtractYear returns the fiscal year encoded in a contextRef, or
// domain.YearUnknown.
func ExtractYear(contextRef string) string {
	for _, re := range yearPatterns {
		if m := re.FindStringSubmatch(contextRef); m != nil {
			return m[1]
		}
	}
	return domain.YearUnknown
}

const baseUnitWord = "원"

var magnitudeWords = map[int]string{
	-3: "천원",
	-4: "만원",
	-6: "백만원",
	-8: "억원",
}

// UnitLabel renders the magnitude word for decimals followed by the unit code.
func UnitLabel(decimals, unit string) string {
	word := baseUnitWord
	if d, ok := parseDecimals(decimals); ok && unit != "" {
		if w, found := magnitudeWords[d]; found {
			word = w
		}
	}
	if unit == "" {
		return word
	}
	return word + " " + unit
}

var groupPrinter = message.NewPrinter(language.Korean)

// FormatValue scales raw by decimals and renders it with thousands
// separators. Negative decimals divide by 10^|d| and truncate toward zero;
// non-negative decimals keep d fractional digits. A value that is not a
// number renders as "0".
func FormatValue(raw, decimals string) string {
	out, _ := formatValue(raw, decimals)
	return out
}

// formatValue also reports whether the raw value was usable.
func formatValue(raw, decimals string) (string, bool) {
	num, ok := parseNumber(raw)
	if !ok {
		return "0", false
	}

	d, hasDecimals := parseDecimals(decimals)
	switch {
	case hasDecimals && d < 0:
		divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-d)), nil)
		scaled := new(big.Rat).Quo(num, new(big.Rat).SetInt(divisor))
		return groupInt(truncate(scaled)), true
	case hasDecimals:
		return groupFixed(num.FloatString(d)), true
	default:
		return groupInt(truncate(num)), true
	}
}

// Normalized is the rendered form of one fact.
type Normalized struct {
	Value string
	Unit  string
	Year  string
	// Recovered is set when the raw value or decimals could not be
	// interpreted and a default was substituted.
	Recovered bool
}

// Normalize renders value, unit label and year for f.
func Normalize(f domain.RawFact) Normalized {
	value, ok := formatValue(f.Value, f.Decimals)
	_, decOK := parseDecimals(f.Decimals)
	unit := UnitLabel(f.Decimals, f.UnitRef)
	if !ok {
		// a value that is not a number carries no magnitude
		unit = UnitLabel("", f.UnitRef)
	}
	return Normalized{
		Value:     value,
		Unit:      unit,
		Year:      ExtractYear(f.ContextRef),
		Recovered: !ok || (f.Decimals != "" && !decOK),
	}
}

func parseDecimals(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return d, true
}

// parseNumber accepts decimal and exponent notation. Fractions are rejected.
func parseNumber(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "/") {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(s)
	return r, ok
}

func truncate(r *big.Rat) *big.Int {
	return new(big.Int).Quo(r.Num(), r.Denom())
}

func groupInt(n *big.Int) string {
	if n.IsInt64() {
		return groupPrinter.Sprintf("%d", n.Int64())
	}
	s := n.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	return sign + groupDigits(s)
}

// groupFixed groups the integer part of a fixed-point string such as "-1234.50".
func groupFixed(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return sign + s
	}
	out := sign + groupInt(n)
	if hasFrac {
		out += "." + frac
	}
	return out
}

func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
