package interval

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	iv, err := New(5, 5)
	require.NoError(t, err)
	expect.EQ(t, iv.Len(), 1)
	expect.EQ(t, Interval{1, 300}.Len(), 300)
	_, err = New(6, 5)
	expect.NotNil(t, err)
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b Interval
		want float64
	}{
		{Interval{100, 200}, Interval{100, 200}, 1.0},
		{Interval{100, 200}, Interval{201, 300}, 0},
		{Interval{100, 200}, Interval{1, 300}, 2 * 101.0 / (101 + 300)},
		{Interval{100, 300}, Interval{150, 280}, 2 * 131.0 / (201 + 131)},
		{Interval{1, 10}, Interval{10, 20}, 2 * 1.0 / (10 + 11)},
		{Interval{7, 7}, Interval{7, 7}, 1.0},
	}
	for _, test := range tests {
		assert.InDelta(t, test.want, test.a.Ratio(test.b), 1e-12, "%v %v", test.a, test.b)
		assert.InDelta(t, test.want, test.b.Ratio(test.a), 1e-12, "symmetry %v %v", test.b, test.a)
	}
}

// naiveRatio counts matching positions the slow way.
func naiveRatio(a, b Interval) float64 {
	seen := map[int]bool{}
	for p := a.Start; p <= a.End; p++ {
		seen[p] = true
	}
	n := 0
	for p := b.Start; p <= b.End; p++ {
		if seen[p] {
			n++
		}
	}
	return 2 * float64(n) / float64(a.Len()+b.Len())
}

func TestRatioMatchesEnumeration(t *testing.T) {
	ivs := []Interval{{0, 0}, {0, 9}, {5, 14}, {9, 9}, {10, 30}, {3, 4}, {-5, 2}}
	for _, a := range ivs {
		for _, b := range ivs {
			assert.InDelta(t, naiveRatio(a, b), a.Ratio(b), 1e-12, "%v %v", a, b)
		}
	}
}

func TestNestedRatio(t *testing.T) {
	outer, inner := Interval{1, 100}, Interval{20, 39}
	expect.True(t, outer.Contains(inner))
	expect.False(t, inner.Contains(outer))
	assert.InDelta(t, 2*20.0/120.0, outer.Ratio(inner), 1e-12)
}
