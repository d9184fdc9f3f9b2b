package memory

import (
	"context"
	"fmt"
	"sync"

	"finsight/internal/core"
)

// Store is an in-memory export target used in tests and local setups
// without Google credentials.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Delete removes the stored transaction with the given ID. Missing IDs
// are ignored to mirror the Google adapter.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID.String() == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// Items returns a copy of the stored transactions.
func (s *Store) Items() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}
