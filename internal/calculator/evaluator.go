package calculator

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrEvaluation is returned for any expression that cannot be evaluated to a
// finite number.
var ErrEvaluation = errors.New("evaluation error")

var (
	validExpression = regexp.MustCompile(`^[0-9+\-*/.]+$`)

	glyphs = []string{
		"−", "-",
		"×", "*",
		"÷", "/",
	}

	normalizer = strings.NewReplacer(glyphs...)
)

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenOperator
)

type token struct {
	kind  tokenKind
	op    byte
	value float64
	text  string
}

// Evaluate computes an expression written the way the locale displays it:
// group separators are dropped and the decimal separator becomes a point.
func (l Locale) Evaluate(expression string) (float64, error) {
	return Evaluate(l.normalizer().Replace(expression))
}

func (l Locale) normalizer() *strings.Replacer {
	pairs := append([]string(nil), glyphs...)
	if l.Group != "" {
		pairs = append(pairs, l.Group, "")
	}
	if l.Decimal != "" {
		pairs = append(pairs, l.Decimal, ".")
	}
	return strings.NewReplacer(pairs...)
}

// Evaluate computes an infix arithmetic expression in canonical form, with
// "." as the decimal point. Multiplication and division bind tighter than
// addition and subtraction; operators of equal precedence associate to the
// left. A minus in operand position negates.
func Evaluate(expression string) (float64, error) {
	normalized := normalizer.Replace(expression)
	if !validExpression.MatchString(normalized) {
		return 0, fmt.Errorf("%w: unsupported input %q", ErrEvaluation, expression)
	}

	tokens, err := tokenize(normalized)
	if err != nil {
		return 0, err
	}

	p := &parser{tokens: tokens}
	v, err := p.parseBinary(1)
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.tokens) {
		return 0, fmt.Errorf("%w: unexpected %q", ErrEvaluation, p.tokens[p.pos].text)
	}

	if v == 0 {
		v = 0
	}
	return v, nil
}

func tokenize(s string) ([]token, error) {
	tokens := make([]token, 0, len(s))
	for i := 0; i < len(s); {
		if isOperator(s[i]) {
			tokens = append(tokens, token{kind: tokenOperator, op: s[i], text: s[i : i+1]})
			i++
			continue
		}

		j := i
		for j < len(s) && !isOperator(s[j]) {
			j++
		}
		text := s[i:j]
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed number %q", ErrEvaluation, text)
		}
		tokens = append(tokens, token{kind: tokenNumber, value: v, text: text})
		i = j
	}
	return tokens, nil
}

func precedence(op byte) int {
	switch op {
	case '*', '/':
		return 2
	default:
		return 1
	}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) parseBinary(minPrec int) (float64, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		t, ok := p.peek()
		if !ok || t.kind != tokenOperator || precedence(t.op) < minPrec {
			return lhs, nil
		}
		p.pos++

		rhs, err := p.parseBinary(precedence(t.op) + 1)
		if err != nil {
			return 0, err
		}

		lhs, err = apply(t.op, lhs, rhs)
		if err != nil {
			return 0, err
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	t, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("%w: missing operand", ErrEvaluation)
	}
	p.pos++

	switch {
	case t.kind == tokenNumber:
		return t.value, nil
	case t.op == '-':
		v, err := p.parseUnary()
		return -v, err
	default:
		return 0, fmt.Errorf("%w: unexpected %q", ErrEvaluation, t.text)
	}
}

func apply(op byte, a, b float64) (float64, error) {
	var v float64
	switch op {
	case '+':
		v = a + b
	case '-':
		v = a - b
	case '*':
		v = a * b
	case '/':
		v = a / b
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %g %c %g is not finite", ErrEvaluation, a, op, b)
	}
	return v, nil
}
