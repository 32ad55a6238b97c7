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
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
)

// writeOutput creates path and hands fn a writer for its body, optionally
// BGZF-compressed.  Close errors are reported through err.
func writeOutput(ctx context.Context, path string, bgzip bool, fn func(w io.Writer) error) (err error) {
	var dst file.File
	if dst, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, dst, &err)
	if !bgzip {
		return fn(dst.Writer(ctx))
	}
	bgzfWriter := bgzf.NewWriter(dst.Writer(ctx), 1)
	defer func() {
		if e := bgzfWriter.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return fn(bgzfWriter)
}

// writeTSV is writeOutput for tab-separated tables.
func writeTSV(ctx context.Context, path string, bgzip bool, fn func(w *tsv.Writer) error) error {
	return writeOutput(ctx, path, bgzip, func(w io.Writer) error {
		tw := tsv.NewWriter(w)
		if err := fn(tw); err != nil {
			return err
		}
		return tw.Flush()
	})
}

func writeHeader(w *tsv.Writer, cols ...string) error {
	for _, c := range cols {
		w.WriteString(c)
	}
	return w.EndLine()
}

// formatRatio renders r rounded to two decimals.
func formatRatio(r float64) string {
	return strconv.FormatFloat(math.Round(r*100)/100, 'f', -1, 64)
}

// WriteLocusTable writes the consolidated locus table: one row per locus
// with its name, p-value, chromosome, coordinates, strand and library.
func WriteLocusTable(ctx context.Context, path string, loci []Locus, bgzip bool) error {
	return writeTSV(ctx, path, bgzip, func(w *tsv.Writer) error {
		if err := writeHeader(w, "Name", "p-val", "Chr", "Start", "End", "Strand", "Lib"); err != nil {
			return err
		}
		for _, l := range loci {
			w.WriteString(l.Name)
			w.WriteString(FormatPValue(l.PValue))
			w.WriteString(l.Chrom.String())
			w.WriteInt64(int64(l.Start))
			w.WriteInt64(int64(l.End))
			w.WriteString("NONE")
			w.WriteString(l.Source)
			if err := w.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteLocusList writes "chr.start.end" per locus, without a header.
func WriteLocusList(ctx context.Context, path string, loci []Locus, bgzip bool) error {
	return writeOutput(ctx, path, bgzip, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, l := range loci {
			if _, err := fmt.Fprintf(bw, "%s.%d.%d\n", l.Chrom, l.Start, l.End); err != nil {
				return err
			}
		}
		return bw.Flush()
	})
}

// WriteSummary writes the summary table.  libNames label the per-library
// abundance columns.
func WriteSummary(ctx context.Context, path string, sums []Summary, libNames []string, bgzip bool) error {
	return writeTSV(ctx, path, bgzip, func(w *tsv.Writer) error {
		cols := []string{"Name", "P-val", "Chr", "Start", "End", "Identifier", "Best k-val", "Phasi ratio", " Max Tag Ratio"}
		cols = append(cols, libNames...)
		cols = append(cols, "Total Phasi Abundance", "Most Abun Tag (MAT)", " MAT Abun", "MAT2", "MAT2 Abun", "BestLib")
		if err := writeHeader(w, cols...); err != nil {
			return err
		}
		for _, s := range sums {
			l := s.Locus
			w.WriteString(l.Name)
			w.WriteString(FormatPValue(l.PValue))
			w.WriteString(l.Chrom.String())
			w.WriteInt64(int64(l.Start))
			w.WriteInt64(int64(l.End))
			w.WriteString(l.ID())
			w.WriteInt64(int64(s.BestK))
			w.WriteString(formatRatio(s.SizeRatio()))
			w.WriteString(formatRatio(s.MaxTagRatio()))
			for _, n := range s.LibAbundance {
				w.WriteInt64(n)
			}
			w.WriteInt64(s.Total)
			w.WriteString(s.MaxTag)
			w.WriteInt64(s.MaxTagAbundance)
			w.WriteString(s.SecondTag)
			w.WriteInt64(s.SecondTagAbundance)
			w.WriteString(l.Source)
			if err := w.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteClusters writes the raw text of every candidate cluster of every
// match, in match order.
func WriteClusters(ctx context.Context, path string, matches []Match, bgzip bool) error {
	return writeOutput(ctx, path, bgzip, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, m := range matches {
			for _, c := range m.Candidates {
				bw.WriteByte('>')
				bw.WriteString(c.Raw)
				if n := len(c.Raw); n == 0 || c.Raw[n-1] != '\n' {
					bw.WriteByte('\n')
				}
			}
		}
		return bw.Flush()
	})
}

// WriteTagRecords writes, per match, the distinct tags with abundance >=
// minAbun as two comma-separated lines:
//
//   >ID_Clust<cluster>_<tag name>,abundance,hits,position,length,strand,p-value
//   sequence,abundance,hits,position,length,strand,p-value
//
// With all set the union of every candidate's tags is written, otherwise
// the tags of the best cluster.
func WriteTagRecords(ctx context.Context, path string, matches []Match, all bool, minAbun int64, bgzip bool) error {
	return writeOutput(ctx, path, bgzip, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, m := range matches {
			tags := m.Best.Tags
			if all {
				tags = m.AllTags
			}
			seen := map[string]bool{}
			for _, t := range tags {
				if seen[t.Seq] || t.Abundance < minAbun {
					continue
				}
				seen[t.Seq] = true
				rest := fmt.Sprintf("%d,%d,%d,%d,%c,%s", t.Abundance, t.Hits, t.Pos, t.Len, t.Strand, t.PValue)
				if _, err := fmt.Fprintf(bw, ">%s_Clust%s_%s,%s\n%s,%s\n", m.Locus.ID(), m.Best.ID, t.Name, rest, t.Seq, rest); err != nil {
					return err
				}
			}
		}
		return bw.Flush()
	})
}

// WriteComparison writes the output of Compare.  Missing sides are filled
// with "x"; unmatched rows report ratio 0 and "none" coordinates.
func WriteComparison(ctx context.Context, path string, rows []CompareRow, bgzip bool) error {
	return writeTSV(ctx, path, bgzip, func(w *tsv.Writer) error {
		var cols []string
		for _, suffix := range []string{".a", ".b"} {
			for _, c := range []string{"Name", "Chr", "Start", "End", "P-val", "Identifier", "Best k-val", "Phasi ratio", "Max Tag Ratio"} {
				cols = append(cols, c+suffix)
			}
		}
		cols = append(cols, "Match Ratio", "Match Start coords [a:b]", "Match Length")
		if err := writeHeader(w, cols...); err != nil {
			return err
		}
		side := func(r *SummaryRow) {
			if r == nil {
				for i := 0; i < summaryColumns; i++ {
					w.WriteString("x")
				}
				return
			}
			for _, f := range r.compareFields() {
				w.WriteString(f)
			}
		}
		for _, r := range rows {
			side(r.A)
			side(r.B)
			if r.A != nil && r.B != nil {
				w.WriteString(strconv.FormatFloat(r.Ratio, 'f', -1, 64))
				w.WriteString(fmt.Sprintf("%d:%d", r.MatchStart, r.MatchStart))
				w.WriteInt64(int64(r.MatchLen))
			} else {
				w.WriteString("0")
				w.WriteString("none")
				w.WriteString("none")
			}
			if err := w.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}
