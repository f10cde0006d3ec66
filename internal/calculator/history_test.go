package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStore is a minimal Store for history tests.
type mapStore struct {
	data   map[string][]byte
	writes int
	err    error
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte) error {
	if s.err != nil {
		return s.err
	}
	s.writes++
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func TestHistory_RecordPrependsAndPersists(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	h := NewHistory(store, 20)

	require.NoError(t, h.Record(ctx, "2+2", 4))
	require.NoError(t, h.Record(ctx, "3*3", 9))

	assert.Equal(t, []HistoryEntry{
		{Expression: "3*3", Result: 9},
		{Expression: "2+2", Result: 4},
	}, h.Entries())
	assert.Equal(t, 2, store.writes)
	assert.JSONEq(t,
		`[{"expression":"3*3","result":9},{"expression":"2+2","result":4}]`,
		string(store.data[HistoryKey]))
}

func TestHistory_EvictsOldestBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(newMapStore(), 20)

	for i := 1; i <= 21; i++ {
		require.NoError(t, h.Record(ctx, fmt.Sprintf("%d+0", i), float64(i)))
	}

	entries := h.Entries()
	require.Len(t, entries, 20)
	assert.Equal(t, HistoryEntry{Expression: "21+0", Result: 21}, entries[0])
	assert.Equal(t, HistoryEntry{Expression: "2+0", Result: 2}, entries[19])
}

func TestHistory_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultHistoryCapacity, NewHistory(nil, 0).Capacity())
	assert.Equal(t, 10, NewHistory(nil, 10).Capacity())
}

func TestHistory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()

	h := NewHistory(store, 5)
	for i, expr := range []string{"1+1", "2*3", "10/4", "-1-1"} {
		require.NoError(t, h.Record(ctx, expr, float64(i)+0.5))
	}

	loaded := NewHistory(store, 5)
	require.NoError(t, loaded.Load(ctx))

	assert.Equal(t, h.Entries(), loaded.Entries())
}

func TestHistory_LoadTruncatesToCapacity(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	store.data[HistoryKey] = []byte(`[
		{"expression":"3+3","result":6},
		{"expression":"2+2","result":4},
		{"expression":"1+1","result":2}
	]`)

	h := NewHistory(store, 2)
	require.NoError(t, h.Load(ctx))

	assert.Equal(t, []HistoryEntry{
		{Expression: "3+3", Result: 6},
		{Expression: "2+2", Result: 4},
	}, h.Entries())
}

func TestHistory_LoadMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()

	h := NewHistory(newMapStore(), 5)
	require.NoError(t, h.Load(ctx))
	assert.Empty(t, h.Entries())

	store := newMapStore()
	store.data[HistoryKey] = []byte(`{not json`)
	assert.Error(t, NewHistory(store, 5).Load(ctx))
}

func TestHistoryEntry_ResultAsString(t *testing.T) {
	var entries []HistoryEntry
	err := json.Unmarshal([]byte(`[{"expression":"1+1","result":"2"},{"expression":"1/4","result":0.25}]`), &entries)
	require.NoError(t, err)

	assert.Equal(t, []HistoryEntry{
		{Expression: "1+1", Result: 2},
		{Expression: "1/4", Result: 0.25},
	}, entries)

	err = json.Unmarshal([]byte(`[{"expression":"1+1","result":"two"}]`), &entries)
	assert.Error(t, err)
}

func TestHistory_ClearAllRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	h := NewHistory(store, 5)
	require.NoError(t, h.Record(ctx, "2+2", 4))

	var asked string
	cleared, err := h.ClearAll(ctx, ConfirmFunc(func(prompt string) bool {
		asked = prompt
		return false
	}))
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.NotEmpty(t, asked)
	assert.Equal(t, 1, h.Len())

	cleared, err = h.ClearAll(ctx, nil)
	require.NoError(t, err)
	assert.False(t, cleared)

	cleared, err = h.ClearAll(ctx, ConfirmFunc(func(string) bool { return true }))
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, "[]", string(store.data[HistoryKey]))
}

func TestHistory_OnChange(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(nil, 5)

	var seen [][]HistoryEntry
	h.OnChange = func(entries []HistoryEntry) { seen = append(seen, entries) }

	require.NoError(t, h.Record(ctx, "2+2", 4))
	_, err := h.ClearAll(ctx, ConfirmFunc(func(string) bool { return true }))
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 1)
	assert.Empty(t, seen[1])
}

func TestHistory_PersistFailureKeepsEntry(t *testing.T) {
	store := newMapStore()
	store.err = errors.New("disk full")
	h := NewHistory(store, 5)

	err := h.Record(context.Background(), "2+2", 4)
	assert.ErrorIs(t, err, store.err)
	assert.Equal(t, 1, h.Len())
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory(nil, 5)
	require.NoError(t, h.Record(context.Background(), "2+2", 4))

	e, ok := h.Entry(0)
	assert.True(t, ok)
	assert.Equal(t, 4.0, e.Result)

	_, ok = h.Entry(1)
	assert.False(t, ok)
	_, ok = h.Entry(-1)
	assert.False(t, ok)
}
