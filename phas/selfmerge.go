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

// processedKey identifies a locus within one self-merge call.
type processedKey struct {
	start, end int
	pValue     float64
}

func keyOf(l Locus) processedKey {
	return processedKey{start: l.Start, end: l.End, pValue: l.PValue}
}

// better reports whether a should replace the current best b: smaller
// p-value first, then longer interval.  Equal candidates keep b, so the first
// one encountered wins.
func better(a, b Locus) bool {
	if a.PValue != b.PValue {
		return a.PValue < b.PValue
	}
	return a.Len() > b.Len()
}

// SelfMerge removes redundant loci from one chromosome group of a single
// batch.  Loci are visited in input order; each unprocessed locus collects
// every locus of the group (itself included) whose overlap ratio with it
// exceeds ratio, the best of them is kept, and all collected loci are marked
// processed.  A locus with no partner above ratio is kept unchanged.
//
// A winner is emitted at most once even if it is collected again through a
// different partner.  When overlaps chain (a~w, w~v) a single pass can keep
// two loci that still overlap; SelfMerge is not idempotent on such groups.
func SelfMerge(group []Locus, ratio float64) []Locus {
	var (
		processed = make(map[processedKey]bool, len(group))
		emitted   = make(map[processedKey]bool)
		out       []Locus
	)
	for _, cur := range group {
		if processed[keyOf(cur)] {
			continue
		}
		processed[keyOf(cur)] = true
		best := cur
		found := false
		for _, other := range group {
			if other.Interval.Ratio(cur.Interval) <= ratio {
				continue
			}
			processed[keyOf(other)] = true
			if !found || better(other, best) {
				best = other
				found = true
			}
		}
		if k := keyOf(best); !emitted[k] {
			emitted[k] = true
			out = append(out, best)
		}
	}
	return out
}
