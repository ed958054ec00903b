package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Store keeps the table in a slice. Initialize is a no-op beyond marking
// the table as present.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

var _ store.TransactionStore = (*Store)(nil)

func New(seed ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), seed...)}
}

func (s *Store) Initialize(_ context.Context) error {
	return nil
}

// Append stores the transaction as given. Like the file backends it
// refuses a category it could not read back.
func (s *Store) Append(_ context.Context, t core.Transaction) error {
	if err := core.CheckCategory(t.Category); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
	return nil
}

func (s *Store) QueryRange(_ context.Context, start, end core.Date) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.FilterRange(s.items, start, end), nil
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
