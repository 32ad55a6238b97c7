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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/phasmerge/phas"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func readOutput(t *testing.T, path string, bgzip bool) string {
	if !bgzip {
		data, err := ioutil.ReadFile(path)
		assert.NoError(t, err)
		return string(data)
	}
	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close() // nolint: errcheck
	r, err := gzip.NewReader(f)
	assert.NoError(t, err)
	data, err := ioutil.ReadAll(r)
	assert.NoError(t, err)
	return string(data)
}

func collapsed(t *testing.T) []phas.Locus {
	a := locus(10, 5, 50, 1e-7)
	a.Source = "lib2"
	b := locus(2, 300, 400, 1e-5)
	b.Source = "lib1"
	c := locus(2, 100, 200, 1e-5)
	c.Source = "lib1"
	return phas.Collapse(batch(t, a, b, c))
}

func TestCollapse(t *testing.T) {
	loci := collapsed(t)
	var names, ids []string
	for _, l := range loci {
		names = append(names, l.Name)
		ids = append(ids, l.ID())
	}
	expect.EQ(t, names, []string{"Phas-1", "Phas-2", "Phas-3"})
	// "00000002" < "00000010"
	expect.EQ(t, ids, []string{"2_100_200", "2_300_400", "10_5_50"})
}

func TestWriteLocusTable(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	loci := collapsed(t)
	for _, bgzip := range []bool{false, true} {
		table := filepath.Join(tempDir, "table.txt")
		list := filepath.Join(tempDir, "list.txt")
		if bgzip {
			table += ".gz"
			list += ".gz"
		}
		assert.NoError(t, phas.WriteLocusTable(ctx, table, loci, bgzip))
		assert.NoError(t, phas.WriteLocusList(ctx, list, loci, bgzip))
		expect.EQ(t, readOutput(t, table, bgzip), "Name\tp-val\tChr\tStart\tEnd\tStrand\tLib\n"+
			"Phas-1\t1e-05\t2\t100\t200\tNONE\tlib1\n"+
			"Phas-2\t1e-05\t2\t300\t400\tNONE\tlib1\n"+
			"Phas-3\t1e-07\t10\t5\t50\tNONE\tlib2\n")
		expect.EQ(t, readOutput(t, list, bgzip), "2.100.200\n2.300.400\n10.5.50\n")
	}
}

func TestWriteClustersAndTags(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	a, c := seq('A', 21), seq('C', 21)
	best := cluster("7", 1, 100, 300, tag(a, 1, 5), tag(c, 1, 1))
	best.Raw = "best block\n"
	other := cluster("8", 1, 100, 300, tag(seq('G', 21), 1, 3))
	other.Raw = "other block"
	l := locus(1, 100, 300, 1e-5)
	m := phas.Match{
		Locus:      l,
		Best:       &best,
		Candidates: []*phas.Cluster{&best, &other},
		AllTags:    append(append([]phas.Tag(nil), best.Tags...), other.Tags...),
	}
	for i := range m.AllTags {
		m.AllTags[i].Hits = 1
		m.AllTags[i].Pos = 100 + i
		m.AllTags[i].PValue = "0.5"
	}
	m.Best.Tags = m.AllTags[:2]

	clust := filepath.Join(tempDir, "clust.txt")
	assert.NoError(t, phas.WriteClusters(ctx, clust, []phas.Match{m}, false))
	expect.EQ(t, readOutput(t, clust, false), ">best block\n>other block\n")

	phasi := filepath.Join(tempDir, "phasi.txt")
	assert.NoError(t, phas.WriteTagRecords(ctx, phasi, []phas.Match{m}, false, 2, false))
	expect.EQ(t, readOutput(t, phasi, false),
		">1_100_300_Clust7_tA,5,1,100,21,w,0.5\n"+a+",5,1,100,21,w,0.5\n")

	allPhasi := filepath.Join(tempDir, "allphasi.txt")
	assert.NoError(t, phas.WriteTagRecords(ctx, allPhasi, []phas.Match{m}, true, 1, false))
	lines := strings.Split(strings.TrimSpace(readOutput(t, allPhasi, false)), "\n")
	expect.EQ(t, len(lines), 6)
	expect.EQ(t, lines[4], ">1_100_300_Clust7_tG,3,1,102,21,w,0.5")
}

func TestCompare(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	summary := func(name string, loci ...phas.Locus) []phas.SummaryRow {
		var sums []phas.Summary
		for i, l := range loci {
			l.Name = "Phas-" + string(rune('1'+i))
			sums = append(sums, phas.Summary{
				Locus:        l,
				ClusterStats: phas.ClusterStats{BestK: 4, PhasedAbundance: 3, OtherAbundance: 1},
				LibAbundance: []int64{4},
				Total:        4,
				MaxTag:       "na",
				SecondTag:    "na",
			})
		}
		path := filepath.Join(tempDir, name)
		assert.NoError(t, phas.WriteSummary(ctx, path, sums, []string{"lib"}, false))
		f, err := os.Open(path)
		assert.NoError(t, err)
		defer f.Close() // nolint: errcheck
		rows, err := phas.ReadSummaryRows(f, name)
		assert.NoError(t, err)
		return rows
	}
	a := summary("a.txt", locus(1, 100, 600, 1e-5), locus(1, 5000, 5200, 1e-5), locus(2, 100, 600, 1e-5))
	b := summary("b.txt", locus(1, 200, 600, 1e-6), locus(3, 100, 600, 1e-6))
	expect.EQ(t, a[0], phas.SummaryRow{
		Name: "Phas-1", PValue: "1e-05", Chrom: "1", Start: 100, End: 600,
		ID: "1_100_600", BestK: "4", SizeRatio: "0.75", MaxTagRatio: "0",
	})

	rows, stats := phas.Compare(a, b, phas.DefaultCompareRatio)
	expect.EQ(t, stats, phas.CompareStats{RowsA: 3, RowsB: 2, MatchedA: 1, MatchedB: 1, Pairs: 1})
	assert.EQ(t, len(rows), 4)
	// 2*401/(501+401)
	expect.EQ(t, rows[0].Ratio, 0.88914)
	expect.EQ(t, rows[0].MatchStart, 200)
	expect.EQ(t, rows[0].MatchLen, 401)
	expect.True(t, rows[1].B == nil && rows[1].A.Start == 5000)
	expect.True(t, rows[2].B == nil && rows[2].A.Chrom == "2")
	expect.True(t, rows[3].A == nil && rows[3].B.Chrom == "3")

	_, stats = phas.Compare(a, b, 0.9)
	expect.EQ(t, stats.Pairs, 0)

	out := filepath.Join(tempDir, "compare.txt")
	assert.NoError(t, phas.WriteComparison(ctx, out, rows, false))
	lines := strings.Split(strings.TrimSpace(readOutput(t, out, false)), "\n")
	assert.EQ(t, len(lines), 5)
	expect.True(t, strings.HasSuffix(lines[1], "\t0.88914\t200:200\t401"))
	expect.True(t, strings.HasPrefix(lines[4], strings.Repeat("x\t", 9)))
	expect.True(t, strings.HasSuffix(lines[2], "\t0\tnone\tnone"))

	_, err := phas.ReadSummaryRows(strings.NewReader("header\nPhas-1\t1e-05\t1\n"), "short.txt")
	expect.EQ(t, phas.KindOf(err), phas.MalformedRecord)
}

func TestFingerprint(t *testing.T) {
	loci := collapsed(t)
	fp := phas.Fingerprint(loci)
	expect.EQ(t, phas.Fingerprint(collapsed(t)), fp)

	swapped := append([]phas.Locus(nil), loci...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	expect.True(t, phas.Fingerprint(swapped) != fp)

	moved := append([]phas.Locus(nil), loci...)
	moved[2].PValue = 1e-8
	expect.True(t, phas.Fingerprint(moved) != fp)

	// Names and sources do not contribute.
	renamed := append([]phas.Locus(nil), loci...)
	renamed[0].Name, renamed[0].Source = "x", "y"
	expect.EQ(t, phas.Fingerprint(renamed), fp)
}
