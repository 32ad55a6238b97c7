package interval

import (
	"sort"

	biointerval "github.com/biogo/store/interval"
)

// Index answers "which of these intervals overlap q" queries.  Intervals are
// identified by their position in the slice passed to NewIndex.
type Index struct {
	tree biointerval.IntTree
	n    int
}

// treeEntry adapts an Interval to biogo's half-open IntRange.
type treeEntry struct {
	id uintptr
	r  biointerval.IntRange
}

func (e treeEntry) ID() uintptr                         { return e.id }
func (e treeEntry) Range() biointerval.IntRange         { return e.r }
func (e treeEntry) Overlap(b biointerval.IntRange) bool { return halfOpenOverlap(e.r, b) }

// query is the probe passed to IntTree.Get.
type query biointerval.IntRange

func (q query) Overlap(b biointerval.IntRange) bool {
	return halfOpenOverlap(biointerval.IntRange(q), b)
}

func halfOpenOverlap(a, b biointerval.IntRange) bool {
	return a.Start < b.End && b.Start < a.End
}

func toRange(i Interval) biointerval.IntRange {
	return biointerval.IntRange{Start: i.Start, End: i.End + 1}
}

// NewIndex builds an index over ivs.
func NewIndex(ivs []Interval) (*Index, error) {
	x := &Index{n: len(ivs)}
	for i, iv := range ivs {
		if err := x.tree.Insert(treeEntry{id: uintptr(i), r: toRange(iv)}, true); err != nil {
			return nil, err
		}
	}
	x.tree.AdjustRanges()
	return x, nil
}

// Len returns the number of indexed intervals.
func (x *Index) Len() int { return x.n }

// Overlapping returns the ids of the intervals sharing at least one position
// with q, in ascending order.
func (x *Index) Overlapping(q Interval) []int {
	if x.n == 0 {
		return nil
	}
	hits := x.tree.Get(query(toRange(q)))
	ids := make([]int, len(hits))
	for i, h := range hits {
		ids[i] = int(h.ID())
	}
	sort.Ints(ids)
	return ids
}
