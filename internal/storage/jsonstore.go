package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// JSONStore persists the whole collection as one JSON array in a Blob slot.
// Every mutation is a fresh read-modify-write cycle against the slot; the
// mutex keeps concurrent handler goroutines from interleaving a stale read
// with a save. There is exactly one logical writer, so no further
// coordination is needed.
type JSONStore struct {
	mu   sync.Mutex
	blob Blob
}

func NewJSONStore(blob Blob) *JSONStore {
	return &JSONStore{blob: blob}
}

// GetAll returns the persisted collection. Failures are logged and masked as
// empty; callers never see a read error.
func (s *JSONStore) GetAll(ctx context.Context) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add generates the id and creation timestamp, appends the record and
// persists the full collection. The created record is returned.
func (s *JSONStore) Add(ctx context.Context, draft core.Draft) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp := core.Expense{
		ID:          uuid.NewString(),
		Amount:      draft.Amount,
		Category:    draft.Category,
		Description: draft.Description,
		Date:        draft.Date,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		SubItems:    draft.SubItems,
	}
	fillSubItemIDs(exp.SubItems)

	expenses := append(s.load(ctx), exp)
	if err := s.save(expenses); err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", exp.ID,
		"amount", exp.Amount,
		"category", exp.Category,
		"date", core.DayKey(exp.Date))
	return exp, nil
}

// Update merges the patch over the record with the matching id and persists
// the full collection. Unknown ids are a silent no-op.
func (s *JSONStore) Update(ctx context.Context, id string, patch core.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses := s.load(ctx)
	for i := range expenses {
		if expenses[i].ID == id {
			expenses[i] = patch.Apply(expenses[i])
			fillSubItemIDs(expenses[i].SubItems)
			return s.save(expenses)
		}
	}
	slog.DebugContext(ctx, "Update for unknown expense id", "id", id)
	return nil
}

// Delete removes the record with the matching id. Unknown ids are a no-op
// and do not touch the persisted state.
func (s *JSONStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses := s.load(ctx)
	kept := expenses[:0]
	for _, e := range expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(expenses) {
		slog.DebugContext(ctx, "Delete for unknown expense id", "id", id)
		return nil
	}
	return s.save(kept)
}

// SaveAll serializes and overwrites the slot in full. On failure the prior
// persisted state is unchanged.
func (s *JSONStore) SaveAll(ctx context.Context, expenses []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(expenses)
}

// fillSubItemIDs assigns ids to sub-items that arrived without one. Patched
// sub-items take the same path as freshly created ones.
func fillSubItemIDs(items []core.SubItem) {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
}

func (s *JSONStore) load(ctx context.Context) []core.Expense {
	data, err := s.blob.Load()
	if err != nil {
		slog.ErrorContext(ctx, "Expense blob unavailable, treating as empty", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	expenses, dropped, err := decodeExpenses(data)
	if err != nil {
		slog.ErrorContext(ctx, "Expense blob corrupt, treating as empty", "error", err)
		return nil
	}
	if dropped > 0 {
		slog.WarnContext(ctx, "Quarantined malformed expense entries", "dropped", dropped)
	}
	return expenses
}

func (s *JSONStore) save(expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	data, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("serialize expenses: %w", err)
	}
	if err := s.blob.Store(data); err != nil {
		return fmt.Errorf("persist expenses: %w", err)
	}
	return nil
}

// decodeExpenses parses the blob at the storage boundary. Entries that do
// not decode, lack an id, or carry a non-finite amount are quarantined
// instead of propagating NaN into the aggregation layer. A blob that is not
// a JSON array at all is reported as corrupt.
func decodeExpenses(data []byte) ([]core.Expense, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode expense array: %w", err)
	}

	var (
		out     []core.Expense
		dropped int
	)
	for _, entry := range raw {
		var e core.Expense
		if err := json.Unmarshal(entry, &e); err != nil {
			dropped++
			continue
		}
		if e.ID == "" || e.Amount <= 0 || math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
			dropped++
			continue
		}
		out = append(out, e)
	}
	return out, dropped, nil
}
