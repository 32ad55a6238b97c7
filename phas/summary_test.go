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
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/phasmerge/phas"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func library(name string, abundance map[string]int64) *phas.Library {
	lib := phas.NewLibrary(name)
	for s, n := range abundance {
		lib.Add(s, n)
	}
	return lib
}

func match(l phas.Locus, c phas.Cluster, phase int) phas.Match {
	return phas.Match{Locus: l, Best: &c, Stats: phas.NewClusterStats(&c, phase), Candidates: []*phas.Cluster{&c}}
}

func TestLibraryAdd(t *testing.T) {
	lib := phas.NewLibrary("lib1")
	lib.Add("ACGT", 3)
	lib.Add("ACGT", 4)
	lib.Add("TTTT", 1)
	expect.EQ(t, lib.Abundance("ACGT"), int64(7))
	expect.EQ(t, lib.Abundance("GGGG"), int64(0))
	expect.EQ(t, lib.Len(), 2)
	expect.EQ(t, phas.LibraryNames([]*phas.Library{lib, phas.NewLibrary("lib2")}), []string{"lib1", "lib2"})
}

func TestSummarize(t *testing.T) {
	a, b, c := seq('A', 21), seq('C', 21), seq('G', 22)
	cl := cluster("c1", 1, 100, 300,
		tag(a, 1, 1),
		tag(b, 4, 1),
		tag(c, 2, 1),
		tag(a, 1, 1),
	)
	libs := []*phas.Library{
		library("l1", map[string]int64{a: 10, b: 30, c: 100}),
		library("l2", map[string]int64{a: 5}),
	}
	s := phas.Summarize(match(locus(1, 100, 300, 1e-5), cl, 21), libs, 21)
	expect.EQ(t, s.ClusterID, "c1")
	expect.EQ(t, s.BestK, 4)
	// The 22-nt tag and the repeated 21-nt tag do not count.
	expect.EQ(t, s.LibAbundance, []int64{40, 5})
	expect.EQ(t, s.Total, int64(45))
	expect.EQ(t, s.MaxTag, b)
	expect.EQ(t, s.MaxTagAbundance, int64(30))
	expect.EQ(t, s.SecondTag, a)
	expect.EQ(t, s.SecondTagAbundance, int64(15))
	expect.EQ(t, s.MaxTagRatio(), 30.0/45.0)
}

func TestSummarizeSingleTag(t *testing.T) {
	a := seq('A', 21)
	cl := cluster("c1", 1, 100, 300, tag(a, 1, 1), tag(seq('G', 24), 1, 1))
	s := phas.Summarize(match(locus(1, 100, 300, 1e-5), cl, 21), []*phas.Library{library("l1", map[string]int64{a: 7})}, 21)
	expect.EQ(t, s.MaxTag, a)
	expect.EQ(t, s.SecondTag, "na")
	expect.EQ(t, s.SecondTagAbundance, int64(0))

	// No library carries the tag.
	s = phas.Summarize(match(locus(1, 100, 300, 1e-5), cl, 21), []*phas.Library{library("l1", nil)}, 21)
	expect.EQ(t, s.Total, int64(0))
	expect.EQ(t, s.MaxTagRatio(), 0.0)
}

func TestPass(t *testing.T) {
	opts := phas.DefaultOpts
	pass := phas.Summary{
		Locus:           locus(1, 1, 200, 1e-5),
		ClusterStats:    phas.ClusterStats{PhaseCycles: 8},
		LibAbundance:    []int64{500, 500},
		Total:           1000,
		MaxTagAbundance: 500,
	}
	expect.True(t, pass.Pass(opts))

	for _, test := range []struct {
		name   string
		modify func(s *phas.Summary)
	}{
		{"dominant tag", func(s *phas.Summary) { s.MaxTagAbundance = 950 }},
		{"few cycles", func(s *phas.Summary) { s.PhaseCycles = 6 }},
		{"short", func(s *phas.Summary) { s.Locus = locus(1, 1, 100, 1e-5) }},
		{"low abundance", func(s *phas.Summary) { s.LibAbundance = []int64{319, 319} }},
	} {
		s := pass
		s.LibAbundance = append([]int64(nil), pass.LibAbundance...)
		test.modify(&s)
		expect.False(t, s.Pass(opts), test.name)
	}

	// Exactly at the limits.
	edge := pass
	edge.Locus = locus(1, 1, opts.MinLocusLen(), 1e-5)
	edge.PhaseCycles = opts.PhaseCyclesCut
	edge.LibAbundance = []int64{0, opts.MinAbunCut}
	edge.MaxTagAbundance = 900
	expect.True(t, edge.Pass(opts))
}

func TestSummarizeAll(t *testing.T) {
	ctx := vcontext.Background()
	a := seq('A', 21)
	tags := []phas.Tag{tag(a, 1, 1)}
	for _, c := range "CGTACGTA" {
		tags = append(tags, tag(seq(byte(c), 21), 1, 1))
	}
	good := cluster("good", 1, 1, 300, tags...)
	poor := cluster("poor", 1, 1000, 1300, tag(a, 1, 1))
	libs := []*phas.Library{library("l1", map[string]int64{a: 300, seq('C', 21): 200, seq('G', 21): 100})}
	matches := []phas.Match{
		match(locus(1, 1000, 1300, 1e-5), poor, 21),
		match(locus(1, 1, 300, 1e-5), good, 21),
	}

	got, err := phas.SummarizeAll(ctx, matches, libs, phas.DefaultOpts)
	assert.NoError(t, err)
	assert.EQ(t, len(got), 1)
	expect.EQ(t, got[0].ClusterID, "good")

	opts := phas.DefaultOpts
	opts.SafeSearch = false
	got, err = phas.SummarizeAll(ctx, matches, libs, opts)
	assert.NoError(t, err)
	expect.EQ(t, len(got), 2)
	expect.EQ(t, got[0].ClusterID, "poor")

	_, err = phas.SummarizeAll(ctx, matches[:1], libs, phas.DefaultOpts)
	expect.EQ(t, phas.KindOf(err), phas.NoLociAtThreshold)
}
