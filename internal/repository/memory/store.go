// Package memory provides in-memory implementations of the repository
// interfaces. They back the service tests: the mutation engine holds no
// shared state of its own, so swapping the storage layer is enough to
// exercise every invariant without a database.
package memory

import (
	"context"
	"sync"

	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
)

// Store holds all rows behind a single mutex. Transactions are serialized
// and rolled back by snapshot, mirroring the all-or-nothing guarantee of
// the SQL layer.
type Store struct {
	mu sync.RWMutex
	// txMu serializes transactions so a snapshot captures a consistent
	// state.
	txMu sync.Mutex

	items        map[string]models.Item             // by item id
	memberships  map[string]models.ItemMembership   // by membership id
	visibilities map[string]models.ItemVisibility   // by visibility id
	recycled     map[string]models.RecycledItemData // by item id
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		items:        make(map[string]models.Item),
		memberships:  make(map[string]models.ItemMembership),
		visibilities: make(map[string]models.ItemVisibility),
		recycled:     make(map[string]models.RecycledItemData),
	}
}

type storeSnapshot struct {
	items        map[string]models.Item
	memberships  map[string]models.ItemMembership
	visibilities map[string]models.ItemVisibility
	recycled     map[string]models.RecycledItemData
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := storeSnapshot{
		items:        make(map[string]models.Item, len(s.items)),
		memberships:  make(map[string]models.ItemMembership, len(s.memberships)),
		visibilities: make(map[string]models.ItemVisibility, len(s.visibilities)),
		recycled:     make(map[string]models.RecycledItemData, len(s.recycled)),
	}
	for k, v := range s.items {
		snap.items[k] = cloneItem(v)
	}
	for k, v := range s.memberships {
		snap.memberships[k] = v
	}
	for k, v := range s.visibilities {
		snap.visibilities[k] = v
	}
	for k, v := range s.recycled {
		snap.recycled[k] = v
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snap.items
	s.memberships = snap.memberships
	s.visibilities = snap.visibilities
	s.recycled = snap.recycled
}

func cloneItem(item models.Item) models.Item {
	clone := item
	if item.Extra != nil {
		clone.Extra = make(map[string]interface{}, len(item.Extra))
		for k, v := range item.Extra {
			clone.Extra[k] = v
		}
	}
	if item.DeletedAt != nil {
		t := *item.DeletedAt
		clone.DeletedAt = &t
	}
	return clone
}

// TransactionManager implements repositories.TransactionManager over the
// in-memory store.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for the store.
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn atomically: on error the store is restored to the state it
// had when the transaction began.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	snap := tm.store.snapshot()
	if err := fn(ctx); err != nil {
		tm.store.restore(snap)
		return err
	}
	return nil
}
