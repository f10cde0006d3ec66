package calculator

import (
	"strconv"
	"strings"
)

const operators = "+-*/"

func isOperator(c byte) bool {
	return strings.IndexByte(operators, c) >= 0
}

func endsWithOperator(expr string) bool {
	return expr != "" && isOperator(expr[len(expr)-1])
}

// splitTrailing splits expr into everything up to and including the last
// operator, and the trailing numeric token.
func splitTrailing(expr string) (head, tail string) {
	i := strings.LastIndexAny(expr, operators)
	return expr[:i+1], expr[i+1:]
}

// Editor owns the expression buffer. Every operation is total: requests that
// would break the buffer's syntax are ignored.
type Editor struct {
	expr            string
	resultDisplayed bool
	failed          bool
}

// Expression returns the canonical buffer contents.
func (e *Editor) Expression() string { return e.expr }

// ResultDisplayed reports whether the buffer holds the outcome of the last
// evaluation and no new input has started since.
func (e *Editor) ResultDisplayed() bool { return e.resultDisplayed }

// Failed reports whether the last evaluation failed and nothing has been
// entered since.
func (e *Editor) Failed() bool { return e.failed }

// set replaces the buffer and marks the start of new input.
func (e *Editor) set(expr string) {
	e.expr = expr
	e.resultDisplayed = false
	e.failed = false
}

func (e *Editor) startFresh() {
	if e.resultDisplayed || e.failed {
		e.set("")
	}
}

// AppendDigits appends a single digit or the compound "00" key.
func (e *Editor) AppendDigits(token string) {
	if !isDigitToken(token) {
		return
	}
	e.startFresh()

	if token == "00" && (e.expr == "" || endsWithOperator(e.expr)) {
		return
	}

	if _, tail := splitTrailing(e.expr); tail == "0" {
		if token == "00" {
			return
		}
		e.set(e.expr[:len(e.expr)-1] + token)
		return
	}

	e.set(e.expr + token)
}

func isDigitToken(token string) bool {
	if token == "00" {
		return true
	}
	return len(token) == 1 && token[0] >= '0' && token[0] <= '9'
}

// AppendOperator appends one of + - * /. A minus directly after another
// operator negates the next operand; any other operator replaces the
// trailing operator run.
func (e *Editor) AppendOperator(op byte) {
	if !isOperator(op) {
		return
	}

	if e.failed {
		e.set("")
	}

	if e.expr == "" {
		if op == '-' {
			e.set("-")
		}
		return
	}

	last := e.expr[len(e.expr)-1]
	switch {
	case !isOperator(last):
		e.set(e.expr + string(op))
	case op == '-' && last != '-':
		e.set(e.expr + "-")
	case op == '-':
		// already negating
	default:
		head := strings.TrimRight(e.expr, operators)
		if head == "" {
			return
		}
		e.set(head + string(op))
	}
}

// AppendDecimalPoint adds a point to the trailing token unless it has one.
func (e *Editor) AppendDecimalPoint() {
	e.startFresh()

	_, tail := splitTrailing(e.expr)
	switch {
	case strings.Contains(tail, "."):
		return
	case tail == "":
		e.set(e.expr + "0.")
	default:
		e.set(e.expr + ".")
	}
}

// ApplyPercent divides the trailing token by 100.
func (e *Editor) ApplyPercent() {
	if e.failed {
		return
	}
	head, tail := splitTrailing(e.expr)
	if tail == "" {
		return
	}
	v, err := strconv.ParseFloat(tail, 64)
	if err != nil {
		return
	}
	e.set(head + formatResult(v/100))
}

// DeleteLast removes the last character of the buffer. After a failed
// evaluation it edits the expression that failed.
func (e *Editor) DeleteLast() {
	if e.expr == "" {
		return
	}
	e.set(e.expr[:len(e.expr)-1])
}

// Clear empties the buffer.
func (e *Editor) Clear() {
	e.set("")
}

// InsertValue replaces the buffer with value when a result is showing or the
// buffer is empty. Mid-entry, value replaces the trailing number or becomes
// the operand of the trailing operator.
func (e *Editor) InsertValue(value string) {
	if e.resultDisplayed || e.failed || e.expr == "" {
		e.set(value)
		return
	}
	head, _ := splitTrailing(e.expr)
	e.set(joinOperand(head, value))
}

// joinOperand appends value after head. A negative value following a minus
// cancels the sign, so "5-" and -3 give "5+3".
func joinOperand(head, value string) string {
	if !strings.HasSuffix(head, "-") || !strings.HasPrefix(value, "-") {
		return head + value
	}
	head, value = head[:len(head)-1], value[1:]
	if head != "" && !endsWithOperator(head) {
		head += "+"
	}
	return head + value
}

func (e *Editor) showResult(result string) {
	e.expr = result
	e.resultDisplayed = true
	e.failed = false
}

func (e *Editor) showError() {
	e.resultDisplayed = true
	e.failed = true
}

// Display renders the buffer with the given locale.
func (e *Editor) Display(l Locale) string {
	switch {
	case e.failed:
		return ErrorMarker
	case e.expr == "":
		return ZeroGlyph
	default:
		return l.FormatExpression(e.expr)
	}
}
