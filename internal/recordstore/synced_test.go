package recordstore

import (
	"fmt"
	"slices"
	"sync"
	"testing"
)

func TestSynced(t *testing.T) {
	t.Run("Concurrent", func(t *testing.T) {
		y := NewSynced(nil)
		var wg sync.WaitGroup
		for w := range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 100 {
					id := fmt.Sprintf("w%d-%d", w, i)
					if !y.Put(Record{ID: id, User: fmt.Sprintf("w%d", w), Timestamp: int64(i), Karma: int64(w)}) {
						t.Errorf("Put(%s) = false", id)
					}
					if i%2 == 0 {
						y.Erase(id)
					}
					n := 0
					y.RangeByKarma(0, 3, Count(&n))
				}
			}()
		}
		wg.Wait()
		if got := y.Len(); got != 200 {
			t.Errorf("Len() = %d, want 200", got)
		}
		n := 0
		y.AllByUser("w1", Count(&n))
		if n != 50 {
			t.Errorf("AllByUser(w1) visited %d, want 50", n)
		}
	})

	t.Run("Swap", func(t *testing.T) {
		y := NewSynced(nil)
		y.Put(Record{ID: "old"})
		next := New()
		next.Put(Record{ID: "new"})
		prev := y.Swap(next)
		if _, ok := prev.GetByID("old"); !ok {
			t.Error("previous store lost its record")
		}
		if _, ok := y.GetByID("old"); ok {
			t.Error("GetByID(old) found after Swap")
		}
		if _, ok := y.GetByID("new"); !ok {
			t.Error("GetByID(new) not found after Swap")
		}
	})

	t.Run("SwapNil", func(t *testing.T) {
		y := NewSynced(nil)
		y.Put(Record{ID: "a", User: "u"})
		if prev := y.Swap(nil); prev.Len() != 1 {
			t.Errorf("Swap(nil) returned store with %d records, want 1", prev.Len())
		}
		if y.Len() != 0 {
			t.Errorf("Len() = %d after Swap(nil), want 0", y.Len())
		}
		if _, ok := y.GetByID("a"); ok {
			t.Error("GetByID(a) found after Swap(nil)")
		}
		n := 0
		y.RangeByKarma(0, 0, Count(&n))
		y.AllByUser("u", Count(&n))
		if n != 0 {
			t.Errorf("scans visited %d records after Swap(nil), want 0", n)
		}
		if !y.Put(Record{ID: "b"}) {
			t.Error("Put(b) = false after Swap(nil)")
		}
	})

	t.Run("Insert", func(t *testing.T) {
		y := NewSynced(New())
		if err := y.Insert(Record{ID: "a"}); err != nil {
			t.Fatal(err)
		}
		if err := y.Insert(Record{ID: "a"}); err == nil {
			t.Error("Insert(duplicate) = nil, want error")
		}
		n := 0
		y.RangeByTimestamp(0, 0, Count(&n))
		if n != 1 {
			t.Errorf("RangeByTimestamp(0, 0) visited %d, want 1", n)
		}
	})

	t.Run("All", func(t *testing.T) {
		y := NewSynced(nil)
		for _, id := range []string{"c", "a", "b"} {
			y.Put(Record{ID: id})
		}
		var got []string
		for rec := range y.All() {
			got = append(got, rec.ID)
			if len(got) == 2 {
				break
			}
		}
		if !slices.Equal(got, []string{"a", "b"}) {
			t.Errorf("All() = %v, want [a b]", got)
		}
		// The read lock must be released after an early break.
		y.Put(Record{ID: "d"})
	})
}

var _ Querier = (*Store)(nil)
var _ Querier = (*Synced)(nil)
