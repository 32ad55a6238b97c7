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
	"sort"
	"strconv"

	"github.com/grailbio/phasmerge/interval"
)

// Locus is one predicted phased region.  Loci are values: stages copy them
// and never modify a locus in place.
type Locus struct {
	// Name is assigned once the consolidated set is ordered (see Collapse).
	Name  string
	Chrom ChromID
	interval.Interval
	PValue float64
	Phase  int
	// Source is the library the prediction came from.
	Source string
}

// ID returns "chr_start_end", the identifier used in the summary table.
func (l Locus) ID() string {
	return fmt.Sprintf("%s_%d_%d", l.Chrom, l.Start, l.End)
}

// FormatPValue renders p the way p-values appear in input file names,
// for example "1e-05".
func FormatPValue(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}

// ChromGroup is the list of loci of one batch that share a chromosome, in
// input order.
type ChromGroup struct {
	Chrom ChromID
	Loci  []Locus
}

// Batch is one input collection grouped by chromosome.  Groups are sorted by
// chromosome id.
type Batch []ChromGroup

// Len returns the total number of loci in b.
func (b Batch) Len() int {
	n := 0
	for _, g := range b {
		n += len(g.Loci)
	}
	return n
}

// Group returns the loci of chrom, or nil.
func (b Batch) Group(chrom ChromID) []Locus {
	i := sort.Search(len(b), func(i int) bool { return !b[i].Chrom.Less(chrom) })
	if i < len(b) && b[i].Chrom == chrom {
		return b[i].Loci
	}
	return nil
}

// GroupByChrom groups loci by chromosome, keeping input order within each
// group.  It fails if loci mix genomic and named chromosome ids.
func GroupByChrom(loci []Locus) (Batch, error) {
	if err := checkSpace(len(loci), func(i int) ChromID { return loci[i].Chrom }); err != nil {
		return nil, err
	}
	index := map[ChromID]int{}
	var b Batch
	for _, l := range loci {
		i, ok := index[l.Chrom]
		if !ok {
			i = len(b)
			index[l.Chrom] = i
			b = append(b, ChromGroup{Chrom: l.Chrom})
		}
		b[i].Loci = append(b[i].Loci, l)
	}
	sort.SliceStable(b, func(i, j int) bool { return b[i].Chrom.Less(b[j].Chrom) })
	return b, nil
}

// Collapse flattens b into the order of the consolidated locus table and
// names the loci "Phas-1", "Phas-2", ...  Loci are ordered by the
// zero-padded, lowercased chromosome id, then by start.
func Collapse(b Batch) []Locus {
	loci := make([]Locus, 0, b.Len())
	for _, g := range b {
		loci = append(loci, g.Loci...)
	}
	sort.SliceStable(loci, func(i, j int) bool {
		ki, kj := loci[i].Chrom.sortKey(), loci[j].Chrom.sortKey()
		if ki != kj {
			return ki < kj
		}
		return loci[i].Start < loci[j].Start
	})
	for i := range loci {
		loci[i].Name = "Phas-" + strconv.Itoa(i+1)
	}
	return loci
}
