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
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/phasmerge/interval"
)

// DefaultCompareRatio is the overlap ratio two summary rows need to be
// reported as the same locus by Compare.
const DefaultCompareRatio = 0.25

// summaryColumns is the number of leading summary columns Compare uses.
const summaryColumns = 9

// SummaryRow holds the leading columns of one summary table row.
type SummaryRow struct {
	Name        string
	PValue      string
	Chrom       string
	Start, End  int
	ID          string
	BestK       string
	SizeRatio   string
	MaxTagRatio string
}

// compareFields returns the row in compare-table column order.
func (r *SummaryRow) compareFields() []string {
	return []string{r.Name, r.Chrom, strconv.Itoa(r.Start), strconv.Itoa(r.End),
		r.PValue, r.ID, r.BestK, r.SizeRatio, r.MaxTagRatio}
}

// ReadSummaryRows parses a summary table written by WriteSummary.  The
// header line is skipped and only the leading columns are kept, so tables
// with different library columns can be compared.
func ReadSummaryRows(r io.Reader, name string) ([]SummaryRow, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 16<<20)
	var rows []SummaryRow
	for lineno := 1; scanner.Scan(); lineno++ {
		line := scanner.Text()
		if lineno == 1 || strings.TrimSpace(line) == "" {
			continue
		}
		f := strings.Split(line, "\t")
		if len(f) < summaryColumns {
			return nil, E(MalformedRecord, fmt.Sprintf("%s:%d: want at least %d columns, got %d", name, lineno, summaryColumns, len(f)))
		}
		row := SummaryRow{Name: f[0], PValue: f[1], Chrom: f[2], ID: f[5], BestK: f[6], SizeRatio: f[7], MaxTagRatio: f[8]}
		var err error
		if row.Start, err = strconv.Atoi(f[3]); err != nil {
			return nil, E(MalformedRecord, fmt.Sprintf("%s:%d: start", name, lineno), err)
		}
		if row.End, err = strconv.Atoi(f[4]); err != nil {
			return nil, E(MalformedRecord, fmt.Sprintf("%s:%d: end", name, lineno), err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, E(MalformedRecord, name, err)
	}
	return rows, nil
}

// CompareRow is one line of the comparison table.  A or B is nil when the
// other side had no match.
type CompareRow struct {
	A, B *SummaryRow
	// Ratio is the overlap ratio rounded to five decimals, 0 if unmatched.
	Ratio float64
	// MatchStart is the first shared position; MatchLen the shared length.
	MatchStart int
	MatchLen   int
}

// CompareStats counts the outcome of Compare.
type CompareStats struct {
	RowsA, RowsB       int
	MatchedA, MatchedB int
	// Pairs counts every matching pair; one row may match several.
	Pairs int
}

// Compare matches every row of a against every row of b on the same
// chromosome.  Each pair with ratio >= minRatio yields one row.  Rows of a
// without any match follow their matches in a's order; rows of b that never
// matched are appended at the end.
func Compare(a, b []SummaryRow, minRatio float64) ([]CompareRow, CompareStats) {
	stats := CompareStats{RowsA: len(a), RowsB: len(b)}
	matchedB := make([]bool, len(b))
	var out []CompareRow
	for i := range a {
		ra := &a[i]
		ia := interval.Interval{Start: ra.Start, End: ra.End}
		matched := false
		for j := range b {
			rb := &b[j]
			if ra.Chrom != rb.Chrom {
				continue
			}
			ib := interval.Interval{Start: rb.Start, End: rb.End}
			ratio := math.Round(ia.Ratio(ib)*1e5) / 1e5
			if ratio < minRatio {
				continue
			}
			start := ra.Start
			if rb.Start > start {
				start = rb.Start
			}
			out = append(out, CompareRow{A: ra, B: rb, Ratio: ratio, MatchStart: start, MatchLen: ia.Overlap(ib)})
			matchedB[j] = true
			matched = true
			stats.Pairs++
		}
		if matched {
			stats.MatchedA++
		} else {
			out = append(out, CompareRow{A: ra})
		}
	}
	for j := range b {
		if matchedB[j] {
			stats.MatchedB++
		} else {
			out = append(out, CompareRow{B: &b[j]})
		}
	}
	return out, stats
}
