package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	// HistoryKey is the persistence key of the history snapshot.
	HistoryKey = "calculator.history"

	// DefaultHistoryCapacity bounds the history when no capacity is configured.
	DefaultHistoryCapacity = 20

	clearHistoryPrompt = "Clear all history?"
)

// Store is the key-value persistence contract used for the history snapshot.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// HistoryEntry is one recorded computation.
type HistoryEntry struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

// UnmarshalJSON accepts the result either as a JSON number or as a numeric
// string.
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Expression string          `json:"expression"`
		Result     json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var result float64
	if err := json.Unmarshal(raw.Result, &result); err != nil {
		var s string
		if err := json.Unmarshal(raw.Result, &s); err != nil {
			return fmt.Errorf("history result: %w", err)
		}
		result, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("history result %q: %w", s, err)
		}
	}

	e.Expression = raw.Expression
	e.Result = result
	return nil
}

// History is a most-recent-first, size-bounded list of computations. Every
// mutation persists the whole sequence through the Store.
type History struct {
	capacity int
	entries  []HistoryEntry
	store    Store

	// OnChange, when set, is called with a copy of the entries after every
	// mutation.
	OnChange func([]HistoryEntry)
}

// NewHistory returns an empty history. A nil store keeps the history in
// memory only.
func NewHistory(store Store, capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity, store: store}
}

// Capacity returns the maximum number of retained entries.
func (h *History) Capacity() int { return h.capacity }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of the entries, most recent first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Entry returns the entry at index, where 0 is the most recent.
func (h *History) Entry(index int) (HistoryEntry, bool) {
	if index < 0 || index >= len(h.entries) {
		return HistoryEntry{}, false
	}
	return h.entries[index], true
}

// Load replaces the in-memory entries with the persisted snapshot.
func (h *History) Load(ctx context.Context) error {
	if h.store == nil {
		return nil
	}

	data, ok, err := h.store.Get(ctx, HistoryKey)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if !ok {
		return nil
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}
	if len(entries) > h.capacity {
		entries = entries[:h.capacity]
	}

	h.entries = entries
	h.notify()
	return nil
}

// Record prepends a computation and evicts the oldest entries beyond
// capacity. The entry is kept in memory even when persisting fails.
func (h *History) Record(ctx context.Context, expression string, result float64) error {
	entries := make([]HistoryEntry, 0, min(len(h.entries)+1, h.capacity))
	entries = append(entries, HistoryEntry{Expression: expression, Result: result})
	for _, e := range h.entries {
		if len(entries) == h.capacity {
			break
		}
		entries = append(entries, e)
	}
	h.entries = entries

	defer h.notify()
	return h.persist(ctx)
}

// ClearAll empties the history once the confirmer agrees. It reports whether
// the history was cleared.
func (h *History) ClearAll(ctx context.Context, c Confirmer) (bool, error) {
	if c == nil || !c.Confirm(clearHistoryPrompt) {
		return false, nil
	}

	h.entries = nil

	defer h.notify()
	return true, h.persist(ctx)
}

func (h *History) persist(ctx context.Context) error {
	if h.store == nil {
		return nil
	}

	entries := h.entries
	if entries == nil {
		entries = []HistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := h.store.Set(ctx, HistoryKey, data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (h *History) notify() {
	if h.OnChange != nil {
		h.OnChange(h.Entries())
	}
}
