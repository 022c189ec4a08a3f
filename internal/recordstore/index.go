// Provides ordered, multi-valued secondary indexes over stored records.

package recordstore

import (
	"cmp"

	"github.com/google/btree"
)

// btreeDegree is the branching factor of every index tree.
const btreeDegree = 32

// handle locates exactly one entry in an index.
//
// seq is unique per store, so the pair is unique even when many records share
// the same key.
type handle[K cmp.Ordered] struct {
	key K
	seq uint64
}

type indexItem[K cmp.Ordered] struct {
	handle[K]
	e *entry
}

func lessItem[K cmp.Ordered](a, b indexItem[K]) bool {
	if c := cmp.Compare(a.key, b.key); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

// index maps a record field to the entries holding that value, in key then
// insertion order.
type index[K cmp.Ordered] struct {
	keyFunc func(*Record) K
	tree    *btree.BTreeG[indexItem[K]]
}

func newIndex[K cmp.Ordered](keyFunc func(*Record) K) *index[K] {
	return &index[K]{
		keyFunc: keyFunc,
		tree:    btree.NewG(btreeDegree, lessItem[K]),
	}
}

// insert adds e and returns the handle needed to remove it.
func (idx *index[K]) insert(e *entry) handle[K] {
	h := handle[K]{key: idx.keyFunc(&e.rec), seq: e.seq}
	idx.tree.ReplaceOrInsert(indexItem[K]{handle: h, e: e})
	return h
}

// remove deletes the entry located by h. It reports whether it was present.
func (idx *index[K]) remove(h handle[K]) bool {
	_, ok := idx.tree.Delete(indexItem[K]{handle: h})
	return ok
}

// ascendRange visits entries with low <= key <= high in ascending order.
func (idx *index[K]) ascendRange(low, high K, v Visitor) {
	if cmp.Less(high, low) {
		return
	}
	// seq starts at 1 so {low, 0} sorts before every entry with key low.
	pivot := indexItem[K]{handle: handle[K]{key: low}}
	idx.tree.AscendGreaterOrEqual(pivot, func(it indexItem[K]) bool {
		if cmp.Less(high, it.key) {
			return false
		}
		return v.Visit(it.e.rec)
	})
}

// ascendEqual visits entries whose key equals key, in insertion order.
func (idx *index[K]) ascendEqual(key K, v Visitor) {
	idx.ascendRange(key, key, v)
}

func (idx *index[K]) len() int {
	return idx.tree.Len()
}
