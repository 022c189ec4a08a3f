// Defines the stored record type and the visitor capability used by scans.

package recordstore

import "iter"

// Record is an immutable row of the store.
//
// Records are passed and returned by value; mutating a returned copy has no
// effect on the stored record.
type Record struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	User      string `json:"user"`
	Timestamp int64  `json:"timestamp"`
	Karma     int64  `json:"karma"`
}

// Querier is the read side shared by [Store] and [Synced].
type Querier interface {
	GetByID(id string) (Record, bool)
	RangeByTimestamp(low, high int64, v Visitor)
	RangeByKarma(low, high int64, v Visitor)
	AllByUser(user string, v Visitor)
	All() iter.Seq[Record]
}

// Visitor receives records during a scan.
//
// Visit returns false to stop the scan.
type Visitor interface {
	Visit(rec Record) bool
}

// VisitorFunc adapts a function to the [Visitor] interface.
type VisitorFunc func(rec Record) bool

// Visit implements [Visitor].
func (f VisitorFunc) Visit(rec Record) bool {
	return f(rec)
}

// Limit returns a Visitor that forwards at most n records to v.
//
// n <= 0 means no limit.
func Limit(n int, v Visitor) Visitor {
	if n <= 0 {
		return v
	}
	seen := 0
	return VisitorFunc(func(rec Record) bool {
		seen++
		if !v.Visit(rec) {
			return false
		}
		return seen < n
	})
}

// Collect returns a Visitor that appends every record to dst.
func Collect(dst *[]Record) Visitor {
	return VisitorFunc(func(rec Record) bool {
		*dst = append(*dst, rec)
		return true
	})
}

// Count returns a Visitor that increments n for every record.
func Count(n *int) Visitor {
	return VisitorFunc(func(Record) bool {
		*n++
		return true
	})
}
