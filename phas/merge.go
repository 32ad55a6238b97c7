// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package phas

// Origin tells which side of a PairwiseMerge a locus came from.
type Origin uint8

const (
	// OriginA marks incumbent loci.
	OriginA Origin = iota
	// OriginB marks incoming loci.
	OriginB
)

// MergeKey distinguishes loci with identical coordinates that arrive from
// different sides of one PairwiseMerge call.
type MergeKey struct {
	Origin     Origin
	Chrom      ChromID
	Start, End int
}

func mergeKey(o Origin, l Locus) MergeKey {
	return MergeKey{Origin: o, Chrom: l.Chrom, Start: l.Start, End: l.End}
}

// mergeState is an insertion-ordered map from MergeKey to Locus.  Assigning
// an existing key replaces its value but keeps its position.
type mergeState struct {
	keys []MergeKey
	vals map[MergeKey]Locus
}

func newMergeState(n int) *mergeState {
	return &mergeState{vals: make(map[MergeKey]Locus, n)}
}

func (m *mergeState) put(k MergeKey, l Locus) {
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = l
}

func (m *mergeState) loci() []Locus {
	out := make([]Locus, 0, len(m.vals))
	for _, k := range m.keys {
		if l, ok := m.vals[k]; ok {
			out = append(out, l)
		}
	}
	return out
}

// PairwiseMerge folds the incoming loci b into the incumbent loci a of one
// chromosome.
//
// Each b is compared with every incumbent a (never with other loci of b).
// With a* the incumbent of maximum overlap ratio (first one on ties), b is
// added when ratio(b, a*) <= cutoff; otherwise the longer of the two is kept,
// b replacing a* when b is strictly longer.  If a is empty every b is added.
//
// The result holds the surviving incumbents in their original order followed
// by the added loci of b in input order.  len(result) <= len(a)+len(b).
func PairwiseMerge(a, b []Locus, cutoff float64) []Locus {
	state := newMergeState(len(a) + len(b))
	for _, l := range a {
		state.put(mergeKey(OriginA, l), l)
	}
	if len(a) == 0 {
		for _, l := range b {
			state.put(mergeKey(OriginB, l), l)
		}
		return state.loci()
	}
	incumbents := state.loci()
	var (
		added  = newMergeState(len(b))
		remove = map[MergeKey]bool{}
	)
	for _, nb := range b {
		best, bestRatio := -1, -1.0
		for i, na := range incumbents {
			r := 0.0
			if na.Chrom == nb.Chrom {
				r = na.Interval.Ratio(nb.Interval)
			}
			if r > bestRatio {
				best, bestRatio = i, r
			}
		}
		if bestRatio <= cutoff {
			added.put(mergeKey(OriginB, nb), nb)
			continue
		}
		if winner := incumbents[best]; nb.Len() > winner.Len() {
			remove[mergeKey(OriginA, winner)] = true
			added.put(mergeKey(OriginB, nb), nb)
		}
	}
	for _, k := range added.keys {
		state.put(k, added.vals[k])
	}
	for k := range remove {
		delete(state.vals, k)
	}
	return state.loci()
}
