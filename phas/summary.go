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
	"context"
	"sort"

	"github.com/grailbio/base/log"
)

// TagAbundance is the per-library abundance of one tag sequence.
type TagAbundance struct {
	Seq   string
	ByLib []int64
	Total int64
}

// Summary is the final per-locus record.
type Summary struct {
	Locus     Locus
	ClusterID string
	ClusterStats
	// LibAbundance sums, per library, the abundance of the phase-length tags
	// of the best cluster.
	LibAbundance []int64
	// Total sums LibAbundance.
	Total int64

	MaxTag             string
	MaxTagAbundance    int64
	SecondTag          string
	SecondTagAbundance int64
}

// MaxTagRatio returns MaxTagAbundance/Total, or 0 when Total is 0.
func (s Summary) MaxTagRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.MaxTagAbundance) / float64(s.Total)
}

// Summarize computes the summary of m.  Every distinct phase-length tag of
// the best cluster is looked up in each library; the most and second most
// abundant tags are chosen by total abundance, earliest tag first on ties.
// A locus with a single phase-length tag reports "na" as its second tag.
func Summarize(m Match, libs []*Library, phase int) Summary {
	s := Summary{
		Locus:        m.Locus,
		ClusterID:    m.Best.ID,
		ClusterStats: m.Stats,
		LibAbundance: make([]int64, len(libs)),
		MaxTag:       "na",
		SecondTag:    "na",
	}
	var tags []TagAbundance
	seen := map[string]bool{}
	for _, t := range m.Best.Tags {
		if t.Len != phase || seen[t.Seq] {
			continue
		}
		seen[t.Seq] = true
		ta := TagAbundance{Seq: t.Seq, ByLib: make([]int64, len(libs))}
		for i, lib := range libs {
			n := lib.Abundance(t.Seq)
			ta.ByLib[i] = n
			ta.Total += n
			s.LibAbundance[i] += n
		}
		s.Total += ta.Total
		tags = append(tags, ta)
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Total > tags[j].Total })
	if len(tags) > 0 {
		s.MaxTag, s.MaxTagAbundance = tags[0].Seq, tags[0].Total
	}
	if len(tags) > 1 {
		s.SecondTag, s.SecondTagAbundance = tags[1].Seq, tags[1].Total
	}
	return s
}

// Pass applies the safe-search filter: the locus is kept only if no tag
// dominates, the best cluster has enough phase cycles, the locus is long
// enough, and at least one library is abundant enough.
func (s Summary) Pass(opts Opts) bool {
	if s.MaxTagRatio() > opts.MaxTagRatioCut {
		return false
	}
	if s.PhaseCycles < opts.PhaseCyclesCut {
		return false
	}
	if s.Locus.Len() < opts.MinLocusLen() {
		return false
	}
	for _, n := range s.LibAbundance {
		if n >= opts.MinAbunCut {
			return true
		}
	}
	return false
}

// SummarizeAll summarizes every match concurrently and, when
// opts.SafeSearch is set, drops the loci that fail Pass.  The result keeps
// the order of matches.  It returns a NoLociAtThreshold error if nothing is
// left.
func SummarizeAll(ctx context.Context, matches []Match, libs []*Library, opts Opts) ([]Summary, error) {
	all := make([]Summary, len(matches))
	err := RunSharded(ctx, "summarize", len(matches), opts.Workers(), func(i int) error {
		all[i] = Summarize(matches[i], libs, opts.Phase)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := all
	if opts.SafeSearch {
		out = all[:0]
		for _, s := range all {
			if s.Pass(opts) {
				out = append(out, s)
			}
		}
		log.Printf("safe-search kept %d of %d loci", len(out), len(all))
	}
	if len(out) == 0 {
		return nil, E(NoLociAtThreshold, "no locus passed summarization; relax the p-value cutoff")
	}
	return out, nil
}
