package calculator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrorMarker is the display token shown after a failed evaluation.
const ErrorMarker = "Error"

// ZeroGlyph is shown when the expression buffer is empty.
const ZeroGlyph = "0"

// Locale holds the separators used when rendering numbers on the display.
type Locale struct {
	Group   string
	Decimal string
}

// DefaultLocale groups thousands with "." and separates decimals with ",".
var DefaultLocale = Locale{Group: ".", Decimal: ","}

// NewLocale derives the grouping and decimal separators for a BCP 47 tag by
// formatting a sample number with the x/text number formatter.
func NewLocale(tag string) (Locale, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return Locale{}, fmt.Errorf("parse locale %q: %w", tag, err)
	}

	sample := message.NewPrinter(t).Sprint(number.Decimal(1234.5))

	var seps []string
	for _, r := range sample {
		if !unicode.IsDigit(r) {
			seps = append(seps, string(r))
		}
	}
	if len(seps) != 2 {
		return Locale{}, fmt.Errorf("locale %q: unexpected number format %q", tag, sample)
	}

	return Locale{Group: seps[0], Decimal: seps[1]}, nil
}

var operatorGlyphs = map[byte]string{
	'+': "+",
	'-': "−",
	'*': "×",
	'/': "÷",
}

// FormatExpression renders a canonical expression for display: every numeric
// run gets thousands grouping and the locale decimal separator, operators are
// rendered with their display glyphs.
func (l Locale) FormatExpression(expr string) string {
	var b strings.Builder
	for i := 0; i < len(expr); {
		c := expr[i]
		if glyph, ok := operatorGlyphs[c]; ok {
			b.WriteString(glyph)
			i++
			continue
		}

		j := i
		for j < len(expr) && !isOperator(expr[j]) {
			j++
		}
		b.WriteString(l.formatNumber(expr[i:j]))
		i = j
	}
	return b.String()
}

// FormatResult renders a numeric result for display.
func (l Locale) FormatResult(v float64) string {
	s := formatResult(v)
	if strings.HasPrefix(s, "-") {
		return operatorGlyphs['-'] + l.formatNumber(s[1:])
	}
	return l.formatNumber(s)
}

func (l Locale) formatNumber(run string) string {
	integer, decimal, hasPoint := strings.Cut(run, ".")
	integer = groupDigits(integer, l.Group)
	if !hasPoint {
		return integer
	}
	return integer + l.Decimal + decimal
}

func groupDigits(digits, sep string) string {
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
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// formatResult returns the canonical expression form of v: plain decimal
// notation, shortest representation, never "-0".
func formatResult(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
