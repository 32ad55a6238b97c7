package interval

import "fmt"

// Interval is a closed range [Start, End] of integer positions.
type Interval struct {
	Start int
	End   int
}

// New returns [start, end].  It returns an error if start > end.
func New(start, end int) (Interval, error) {
	if start > end {
		return Interval{}, fmt.Errorf("interval: start %d > end %d", start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// Len returns the number of positions covered by the interval.
func (i Interval) Len() int {
	return i.End - i.Start + 1
}

// Overlap returns the number of positions shared by i and j.
func (i Interval) Overlap(j Interval) int {
	start, end := i.Start, i.End
	if j.Start > start {
		start = j.Start
	}
	if j.End < end {
		end = j.End
	}
	if end < start {
		return 0
	}
	return end - start + 1
}

// Ratio returns 2*overlap/(len(i)+len(j)), a symmetric similarity in [0,1].
//
// This is exactly the ratio a sequence matcher reports when it is given the
// two position lists [i.Start..i.End] and [j.Start..j.End]: the only matching
// block of two ascending runs of consecutive integers is their intersection.
func (i Interval) Ratio(j Interval) float64 {
	total := i.Len() + j.Len()
	if total <= 0 {
		return 0
	}
	return 2 * float64(i.Overlap(j)) / float64(total)
}

// Contains reports whether j lies entirely within i.
func (i Interval) Contains(j Interval) bool {
	return i.Start <= j.Start && j.End <= i.End
}

// String returns "start..end".
func (i Interval) String() string {
	return fmt.Sprintf("%d..%d", i.Start, i.End)
}
