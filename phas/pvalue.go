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

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// bestGuessMax is the largest p-value chosen automatically.
const bestGuessMax = 1e-5

// SelectPValue picks the p-value cutoff a run uses from the p-values that
// have cluster archives.
//
// When user > 0, the largest available value not above user is chosen.
// Otherwise the 25th percentile of the available values is chosen if it is
// at most 1e-5; if not, the run is refused and the 5th percentile is
// recommended instead.
func SelectPValue(available []float64, user float64) (float64, error) {
	if len(available) == 0 {
		return 0, E(InputNotFound, "no cluster archives found; check that the prediction run finished")
	}
	sorted := append([]float64(nil), available...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	sorted = dedupFloats(sorted)
	if user > 0 {
		for _, p := range sorted {
			if p <= user {
				return p, nil
			}
		}
		return 0, E(NoLociAtThreshold, fmt.Sprintf("no clusters at or below p-value %s; choose one of: %s",
			FormatPValue(user), joinPValues(sorted)))
	}
	if p := percentile(sorted, 25); p <= bestGuessMax {
		return p, nil
	}
	return 0, E(NoLociAtThreshold, fmt.Sprintf("clusters are below the recommended confidence (p <= %s); rerun with -pval %s (choices: %s)",
		FormatPValue(bestGuessMax), FormatPValue(percentile(sorted, 5)), joinPValues(sorted)))
}

// percentile returns the nearest-rank percentile of data.
func percentile(data []float64, pct float64) float64 {
	s := append([]float64(nil), data...)
	sort.Float64s(s)
	i := int(math.Ceil(float64(len(s))*pct/100)) - 1
	if i < 0 {
		i = 0
	}
	return s[i]
}

func dedupFloats(s []float64) []float64 {
	out := s[:0]
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			out = append(out, v)
		}
	}
	return out
}

func joinPValues(ps []float64) string {
	strs := make([]string, len(ps))
	for i, p := range ps {
		strs[i] = FormatPValue(p)
	}
	return strings.Join(strs, ", ")
}
