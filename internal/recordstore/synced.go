// Serializes access to a Store shared between goroutines.

package recordstore

import (
	"iter"
	"sync"
)

// Synced wraps a [Store] with a read-write lock.
//
// Writers hold the write lock for the whole call. Scans hold the read lock
// while the visitor runs, so a visitor must not call Put, Erase or Swap on the
// same Synced.
type Synced struct {
	mu sync.RWMutex
	s  *Store
}

// NewSynced wraps s. A nil s is replaced by an empty store.
func NewSynced(s *Store) *Synced {
	if s == nil {
		s = New()
	}
	return &Synced{s: s}
}

// Swap replaces the wrapped store and returns the previous one. A nil s is
// replaced by an empty store.
func (y *Synced) Swap(s *Store) *Store {
	if s == nil {
		s = New()
	}
	y.mu.Lock()
	defer y.mu.Unlock()
	prev := y.s
	y.s = s
	return prev
}

// Len returns the number of records.
func (y *Synced) Len() int {
	y.mu.RLock()
	defer y.mu.RUnlock()
	return y.s.Len()
}

// Put implements [Store.Put].
func (y *Synced) Put(rec Record) bool {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.s.Put(rec)
}

// Insert implements [Store.Insert].
func (y *Synced) Insert(rec Record) error {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.s.Insert(rec)
}

// GetByID implements [Store.GetByID].
func (y *Synced) GetByID(id string) (Record, bool) {
	y.mu.RLock()
	defer y.mu.RUnlock()
	return y.s.GetByID(id)
}

// Erase implements [Store.Erase].
func (y *Synced) Erase(id string) bool {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.s.Erase(id)
}

// RangeByTimestamp implements [Store.RangeByTimestamp].
func (y *Synced) RangeByTimestamp(low, high int64, v Visitor) {
	y.mu.RLock()
	defer y.mu.RUnlock()
	y.s.RangeByTimestamp(low, high, v)
}

// RangeByKarma implements [Store.RangeByKarma].
func (y *Synced) RangeByKarma(low, high int64, v Visitor) {
	y.mu.RLock()
	defer y.mu.RUnlock()
	y.s.RangeByKarma(low, high, v)
}

// AllByUser implements [Store.AllByUser].
func (y *Synced) AllByUser(user string, v Visitor) {
	y.mu.RLock()
	defer y.mu.RUnlock()
	y.s.AllByUser(user, v)
}

// All implements [Store.All]. The read lock is held until iteration ends.
func (y *Synced) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		y.mu.RLock()
		defer y.mu.RUnlock()
		for rec := range y.s.All() {
			if !yield(rec) {
				return
			}
		}
	}
}
