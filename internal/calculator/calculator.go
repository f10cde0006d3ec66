// Package calculator implements the calculator widget: an expression editor
// driven by keypad and keyboard events, an infix evaluator, a persisted
// history of results, and the HTTP surface serving them.
package calculator

import (
	"context"

	"go.uber.org/zap"
)

// Evaluation is the outcome of evaluating the expression buffer.
type Evaluation struct {
	Expression string
	Result     float64
	Err        error
}

// Outcome describes what an input event did.
type Outcome struct {
	Action     Action
	Evaluation *Evaluation
}

// Handled reports whether the event mapped to an operation.
func (o Outcome) Handled() bool { return o.Action != ActionNone }

// Option configures a Calculator.
type Option func(*Calculator)

// WithLocale sets the display locale.
func WithLocale(l Locale) Option {
	return func(c *Calculator) { c.locale = l }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) { c.logger = l }
}

// Calculator owns the editor state and the history. It is not safe for
// concurrent use; callers serialize events.
type Calculator struct {
	editor  Editor
	history *History
	locale  Locale
	logger  *zap.Logger
}

// New returns a calculator with an empty buffer backed by history.
func New(history *History, opts ...Option) *Calculator {
	if history == nil {
		history = NewHistory(nil, DefaultHistoryCapacity)
	}
	c := &Calculator{
		history: history,
		locale:  DefaultLocale,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Display returns the current display text.
func (c *Calculator) Display() string { return c.editor.Display(c.locale) }

// Expression returns the canonical expression buffer.
func (c *Calculator) Expression() string { return c.editor.Expression() }

// ResultDisplayed reports whether the buffer shows an evaluation outcome.
func (c *Calculator) ResultDisplayed() bool { return c.editor.ResultDisplayed() }

// Locale returns the display locale.
func (c *Calculator) Locale() Locale { return c.locale }

// History returns the history cache.
func (c *Calculator) History() *History { return c.history }

func (c *Calculator) AppendDigits(token string) { c.editor.AppendDigits(token) }

func (c *Calculator) AppendOperator(op byte) { c.editor.AppendOperator(op) }

func (c *Calculator) AppendDecimalPoint() { c.editor.AppendDecimalPoint() }

func (c *Calculator) ApplyPercent() { c.editor.ApplyPercent() }

func (c *Calculator) DeleteLast() { c.editor.DeleteLast() }

func (c *Calculator) Clear() { c.editor.Clear() }

// Evaluate computes the buffer. On success the result replaces the buffer
// and is recorded in the history; on failure the display shows the error
// marker and the history is left alone. It returns false when the buffer is
// empty and nothing was evaluated.
func (c *Calculator) Evaluate(ctx context.Context) (Evaluation, bool) {
	expr := c.editor.Expression()
	if expr == "" {
		return Evaluation{}, false
	}

	result, err := Evaluate(expr)
	if err != nil {
		c.editor.showError()
		return Evaluation{Expression: expr, Err: err}, true
	}

	if err := c.history.Record(ctx, expr, result); err != nil {
		c.logger.Warn("persisting history failed", zap.Error(err))
	}
	c.editor.showResult(formatResult(result))

	return Evaluation{Expression: expr, Result: result}, true
}

// Reuse inserts the result of the history entry at index into the buffer.
// Out-of-range indexes are ignored.
func (c *Calculator) Reuse(index int) bool {
	entry, ok := c.history.Entry(index)
	if !ok {
		return false
	}
	c.editor.InsertValue(formatResult(entry.Result))
	return true
}

// ClearHistory empties the history once confirmer agrees.
func (c *Calculator) ClearHistory(ctx context.Context, confirmer Confirmer) bool {
	cleared, err := c.history.ClearAll(ctx, confirmer)
	if err != nil {
		c.logger.Warn("persisting cleared history failed", zap.Error(err))
	}
	return cleared
}

// HandleKey applies a keyboard press. Presses with a modifier held and
// unbound keys are ignored.
func (c *Calculator) HandleKey(ctx context.Context, ev KeyEvent) Outcome {
	cmd, ok := keyCommand(ev)
	if !ok {
		return Outcome{}
	}
	return c.run(ctx, cmd)
}

// Press applies a keypad button by id.
func (c *Calculator) Press(ctx context.Context, id string) Outcome {
	cmd, ok := buttonCommand(id)
	if !ok {
		return Outcome{}
	}
	return c.run(ctx, cmd)
}

func (c *Calculator) run(ctx context.Context, cmd command) Outcome {
	out := Outcome{Action: cmd.action}

	switch cmd.action {
	case ActionDigit:
		c.AppendDigits(cmd.arg)
	case ActionOperator:
		c.AppendOperator(cmd.arg[0])
	case ActionDecimal:
		c.AppendDecimalPoint()
	case ActionPercent:
		c.ApplyPercent()
	case ActionDelete:
		c.DeleteLast()
	case ActionClear:
		c.Clear()
	case ActionEvaluate:
		if ev, ok := c.Evaluate(ctx); ok {
			out.Evaluation = &ev
		}
	}
	return out
}
