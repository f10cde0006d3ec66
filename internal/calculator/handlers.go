package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"calculator-widget/internal/handlers"
	"calculator-widget/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves a single calculator session over HTTP. Requests are applied
// one at a time, each to completion.
type Handler struct {
	mu   sync.Mutex
	calc *Calculator
}

// NewHandler returns a handler serving calc.
func NewHandler(calc *Calculator) *Handler {
	return &Handler{calc: calc}
}

type eventFunc func(ctx context.Context, c *Calculator) Outcome

// ---------------------------------------------------------------------------
// Handlers — widget session
// ---------------------------------------------------------------------------

// State handles GET /calculator
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := newStateResponse(h.calc, true)
	h.mu.Unlock()

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// Key handles POST /calculator/keys
func (h *Handler) Key(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(w, r, "key", func(r *http.Request) (eventFunc, error) {
		var req KeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		if req.Key == "" {
			return nil, errors.New("key is required")
		}

		return func(ctx context.Context, c *Calculator) Outcome {
			return c.HandleKey(ctx, req.event())
		}, nil
	})
}

// Button handles POST /calculator/buttons/{id}
func (h *Handler) Button(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(w, r, "button", func(r *http.Request) (eventFunc, error) {
		id := chi.URLParam(r, "id")

		return func(ctx context.Context, c *Calculator) Outcome {
			return c.Press(ctx, id)
		}, nil
	})
}

// Reuse handles POST /calculator/history/{index}/reuse
func (h *Handler) Reuse(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(w, r, "reuse", func(r *http.Request) (eventFunc, error) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			return nil, fmt.Errorf("history index: %w", err)
		}

		return func(_ context.Context, c *Calculator) Outcome {
			if !c.Reuse(index) {
				return Outcome{}
			}
			return Outcome{Action: ActionReuse}
		}, nil
	})
}

// ClearHistory handles DELETE /calculator/history. The history is only
// cleared when the request carries confirm=true.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(w, r, "clear_history", func(r *http.Request) (eventFunc, error) {
		confirmed := false
		if v := r.URL.Query().Get("confirm"); v != "" {
			var err error
			if confirmed, err = strconv.ParseBool(v); err != nil {
				return nil, fmt.Errorf("confirm: %w", err)
			}
		}
		confirmer := ConfirmFunc(func(string) bool { return confirmed })

		return func(ctx context.Context, c *Calculator) Outcome {
			if !c.ClearHistory(ctx, confirmer) {
				return Outcome{}
			}
			return Outcome{Action: ActionClearAll}
		}, nil
	})
}

// handleEvent is the shared implementation for all stateful endpoints: it
// parses the request, applies the event under the session lock, and records
// spans, metrics and logs for it.
func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request, opName string, parse func(*http.Request) (eventFunc, error)) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	apply, err := parse(r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request", err, http.StatusBadRequest, w)
		return
	}

	h.mu.Lock()
	start := time.Now()
	out := apply(ctx, h.calc)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms
	resp := newStateResponse(h.calc, out.Handled())
	h.mu.Unlock()

	attrs := metric.WithAttributes(
		attribute.String("operation", opName),
		attribute.String("action", string(out.Action)),
	)
	eventsCounter.Add(ctx, 1, attrs)
	eventHistogram.Record(ctx, elapsed, attrs)
	historyGauge.Record(ctx, int64(len(resp.History)))

	span.SetAttributes(
		attribute.String("calculator.action", string(out.Action)),
		attribute.Bool("calculator.handled", out.Handled()),
	)

	if ev := out.Evaluation; ev != nil {
		recordEvaluation(ctx, span, logger, *ev)
	}

	span.SetStatus(codes.Ok, "")

	logger.Debug("calculator event applied",
		zap.String("operation", opName),
		zap.String("action", string(out.Action)),
		zap.String("display", resp.Display),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// recordEvaluation reports an evaluation triggered from the keypad. A failed
// evaluation is shown on the display, so it does not fail the request.
func recordEvaluation(ctx context.Context, span trace.Span, logger *zap.Logger, ev Evaluation) {
	if ev.Err != nil {
		evaluationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "evaluate")))

		span.AddEvent("evaluation.failed", trace.WithAttributes(
			attribute.String("expression", ev.Expression),
			attribute.String("error", ev.Err.Error()),
		))

		logger.Info("evaluation failed",
			zap.String("expression", ev.Expression),
			zap.Error(ev.Err),
		)
		return
	}

	evaluationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	resultGauge.Record(ctx, ev.Result)

	span.AddEvent("evaluation.complete", trace.WithAttributes(
		attribute.String("expression", ev.Expression),
		attribute.Float64("result", ev.Result),
	))

	logger.Info("expression evaluated",
		zap.String("expression", ev.Expression),
		zap.Float64("result", ev.Result),
	)
}

// ---------------------------------------------------------------------------
// Handler — stateless evaluation
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate. It evaluates the given
// expression, written with the session locale's separators, without touching
// the session buffer or the history.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.String("calculator.expression", req.Expression))

	start := time.Now()
	result, err := h.calc.Locale().Evaluate(req.Expression)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		evaluationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", ErrorMarker, err, http.StatusUnprocessableEntity, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", "evaluate"))
	evaluationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	eventHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, result, attrs)

	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	logger.Info("expression evaluated",
		zap.String("expression", req.Expression),
		zap.Float64("result", result),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Expression: req.Expression,
		Result:     result,
		Display:    h.calc.Locale().FormatResult(result),
	})
}
