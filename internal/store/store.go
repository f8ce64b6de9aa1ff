// Package store holds the accepted transactions for the current ingestion
// session. It is the single piece of mutable shared state: streaming appends
// and user edits both land here, serialized by the store's lock. Insertion
// order is stable; sorting is a derived view owned by internal/query, never
// a mutation of stored order.
package store

import (
	"sync"

	"github.com/bankstream/bankstream/internal/domain"
)

// FieldPatch is a partial update to one transaction. Nil fields are left
// untouched.
type FieldPatch struct {
	Category *string
	Notes    *string
}

// TransactionStore is an in-memory, order-preserving transaction collection,
// safe for concurrent use.
type TransactionStore struct {
	mu    sync.RWMutex
	txs   []domain.Transaction
	index map[string]int // id -> position in txs
}

// New creates an empty store.
func New() *TransactionStore {
	return &TransactionStore{index: make(map[string]int)}
}

// AppendBatch adds transactions to the end of the collection in the given
// order. Id uniqueness is guaranteed upstream by the identity assigner and
// is not re-validated here.
func (s *TransactionStore) AppendBatch(batch []domain.Transaction) {
	if len(batch) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range batch {
		s.index[tx.ID] = len(s.txs)
		s.txs = append(s.txs, tx)
	}
}

// UpdateField applies a partial update to the transaction with the given id.
// It reports whether a transaction was updated; an absent id is a no-op.
func (s *TransactionStore) UpdateField(id string, patch FieldPatch) (domain.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return domain.Transaction{}, false
	}

	if patch.Category != nil {
		s.txs[pos].Category = *patch.Category
	}
	if patch.Notes != nil {
		s.txs[pos].Notes = *patch.Notes
	}
	return s.txs[pos], true
}

// BulkUpdateCategory assigns one category to every transaction whose id is
// in ids. Unknown ids are ignored. Returns the number updated.
func (s *TransactionStore) BulkUpdateCategory(ids []string, category string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, id := range ids {
		if pos, ok := s.index[id]; ok {
			s.txs[pos].Category = category
			updated++
		}
	}
	return updated
}

// ReassignCategory rewrites every transaction carrying oldName to newName.
// Used when a category is renamed. Returns the number rewritten.
func (s *TransactionStore) ReassignCategory(oldName, newName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	rewritten := 0
	for i := range s.txs {
		if s.txs[i].Category == oldName {
			s.txs[i].Category = newName
			rewritten++
		}
	}
	return rewritten
}

// ClearCategory rewrites every transaction carrying name back to the
// default category. Used when a category is deleted.
func (s *TransactionStore) ClearCategory(name string) int {
	return s.ReassignCategory(name, domain.DefaultCategory)
}

// Reset empties the collection, typically at the start of a new session.
func (s *TransactionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = nil
	s.index = make(map[string]int)
}

// List returns a copy of the collection in insertion order.
func (s *TransactionStore) List() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Get returns the transaction with the given id.
func (s *TransactionStore) Get(id string) (domain.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return domain.Transaction{}, false
	}
	return s.txs[pos], true
}

// Len returns the number of stored transactions.
func (s *TransactionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.txs)
}
