package recordstore

import (
	"iter"
	"maps"
	"slices"
)

// entry is a primary table row plus the handles of its secondary index entries.
type entry struct {
	rec       Record
	seq       uint64
	user      handle[string]
	timestamp handle[int64]
	karma     handle[int64]
}

// Store is an in-memory record store with secondary indexes by user,
// timestamp and karma.
//
// The zero value is not usable; create one with [New]. A Store is not safe
// for concurrent use, see [Synced].
type Store struct {
	primary     map[string]*entry
	byUser      *index[string]
	byTimestamp *index[int64]
	byKarma     *index[int64]
	lastSeq     uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		primary:     make(map[string]*entry),
		byUser:      newIndex(func(r *Record) string { return r.User }),
		byTimestamp: newIndex(func(r *Record) int64 { return r.Timestamp }),
		byKarma:     newIndex(func(r *Record) int64 { return r.Karma }),
	}
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.primary)
}

// Put stores rec and indexes it.
//
// It returns false without modifying the store if a record with the same ID
// already exists.
func (s *Store) Put(rec Record) bool {
	if _, ok := s.primary[rec.ID]; ok {
		return false
	}
	s.lastSeq++
	e := &entry{rec: rec, seq: s.lastSeq}
	e.user = s.byUser.insert(e)
	e.timestamp = s.byTimestamp.insert(e)
	e.karma = s.byKarma.insert(e)
	s.primary[rec.ID] = e
	return true
}

// Insert is like Put but reports a duplicate ID as an *Error wrapping
// [ErrDuplicateKey].
func (s *Store) Insert(rec Record) error {
	if !s.Put(rec) {
		return &Error{Op: "insert", ID: rec.ID, Err: ErrDuplicateKey}
	}
	return nil
}

// GetByID returns the record with the given ID, or false if not found.
func (s *Store) GetByID(id string) (Record, bool) {
	e, ok := s.primary[id]
	if !ok {
		return Record{}, false
	}
	return e.rec, true
}

// Erase removes the record with the given ID from the table and every index.
//
// It returns false if no such record exists.
func (s *Store) Erase(id string) bool {
	e, ok := s.primary[id]
	if !ok {
		return false
	}
	s.byUser.remove(e.user)
	s.byTimestamp.remove(e.timestamp)
	s.byKarma.remove(e.karma)
	delete(s.primary, id)
	return true
}

// Remove is like Erase but reports a missing ID as an *Error wrapping
// [ErrNotFound].
func (s *Store) Remove(id string) error {
	if !s.Erase(id) {
		return &Error{Op: "remove", ID: id, Err: ErrNotFound}
	}
	return nil
}

// RangeByTimestamp visits records with low <= Timestamp <= high in ascending
// timestamp order until v returns false.
func (s *Store) RangeByTimestamp(low, high int64, v Visitor) {
	s.byTimestamp.ascendRange(low, high, v)
}

// RangeByKarma visits records with low <= Karma <= high in ascending karma
// order until v returns false.
func (s *Store) RangeByKarma(low, high int64, v Visitor) {
	s.byKarma.ascendRange(low, high, v)
}

// AllByUser visits records of user in insertion order until v returns false.
func (s *Store) AllByUser(user string, v Visitor) {
	s.byUser.ascendEqual(user, v)
}

// All returns an iterator over all records in ascending ID order.
//
// The store must not be modified while iterating.
func (s *Store) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, id := range slices.Sorted(maps.Keys(s.primary)) {
			if !yield(s.primary[id].rec) {
				return
			}
		}
	}
}
