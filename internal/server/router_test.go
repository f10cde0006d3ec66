package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"calculator-widget/internal/calculator"
	"calculator-widget/internal/observability"
	"calculator-widget/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}
	return NewRouter(calculator.NewHandler(calculator.New(nil)))
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/health", nil), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Fatal("expected Go runtime metrics in /metrics output")
	}
}

func TestNewRouterCalculatorKeySetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	for _, key := range []string{"2", "+", "3", "Enter"} {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/keys", map[string]any{"key": key})
		w := testutil.ExecuteRequest(req, router)
		testutil.CheckResponseCode(t, http.StatusOK, w.Code)

		requestID := w.Result().Header.Get("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
		}
	}

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var payload map[string]any
	testutil.DecodeJSONBody(t, w.Body, &payload)

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}
	if got := payload["display"]; got != "5" {
		t.Fatalf("expected display 5, got %#v", got)
	}
	if history, ok := payload["history"].([]any); !ok || len(history) != 1 {
		t.Fatalf("expected one history entry, got %#v", payload["history"])
	}
}
