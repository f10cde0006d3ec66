package calculator

// KeyRequest is the JSON body for POST /calculator/keys.
type KeyRequest struct {
	Key  string `json:"key"`
	Ctrl bool   `json:"ctrl"`
	Alt  bool   `json:"alt"`
	Meta bool   `json:"meta"`
}

func (r KeyRequest) event() KeyEvent {
	return KeyEvent{Key: r.Key, Ctrl: r.Ctrl, Alt: r.Alt, Meta: r.Meta}
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
	Display    string  `json:"display"`
}

// HistoryItem is one rendered history entry.
type HistoryItem struct {
	Expression string  `json:"expression"`
	Display    string  `json:"display"` // "1.234+1 = 1.235"
	Result     float64 `json:"result"`
}

// StateResponse is the widget state returned by every stateful endpoint.
type StateResponse struct {
	Display         string        `json:"display"`
	Expression      string        `json:"expression"`
	ResultDisplayed bool          `json:"result_displayed"`
	Handled         bool          `json:"handled"`
	History         []HistoryItem `json:"history"`
}

func newStateResponse(c *Calculator, handled bool) StateResponse {
	entries := c.History().Entries()
	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryItem{
			Expression: e.Expression,
			Display:    c.Locale().FormatExpression(e.Expression) + " = " + c.Locale().FormatResult(e.Result),
			Result:     e.Result,
		})
	}

	return StateResponse{
		Display:         c.Display(),
		Expression:      c.Expression(),
		ResultDisplayed: c.ResultDisplayed(),
		Handled:         handled,
		History:         items,
	}
}
