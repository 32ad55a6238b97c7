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
package phas_test

import (
	"github.com/grailbio/phasmerge/interval"
	"github.com/grailbio/phasmerge/phas"
)

func locus(chrom uint64, start, end int, p float64) phas.Locus {
	return phas.Locus{
		Chrom:    phas.Genomic(chrom),
		Interval: interval.Interval{Start: start, End: end},
		PValue:   p,
		Phase:    21,
	}
}

func spans(loci []phas.Locus) []interval.Interval {
	out := make([]interval.Interval, len(loci))
	for i, l := range loci {
		out[i] = l.Interval
	}
	return out
}
