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

	"github.com/grailbio/base/log"
)

// ClusterStats summarizes one cluster with respect to a phase length.
type ClusterStats struct {
	// PhaseCycles is the number of tags whose length equals the phase.
	PhaseCycles int
	// PhasedAbundance sums the abundance of those tags.
	PhasedAbundance int64
	// OtherAbundance sums the abundance of every other tag.
	OtherAbundance int64
	// BestK is the maximum k-value over all tags.
	BestK int
}

// SizeRatio returns PhasedAbundance / (PhasedAbundance + OtherAbundance), or
// 0 for a cluster without abundance.
func (s ClusterStats) SizeRatio() float64 {
	total := s.PhasedAbundance + s.OtherAbundance
	if total == 0 {
		return 0
	}
	return float64(s.PhasedAbundance) / float64(total)
}

// NewClusterStats computes the statistics of c for the given phase length.
func NewClusterStats(c *Cluster, phase int) ClusterStats {
	var s ClusterStats
	for i, t := range c.Tags {
		if i == 0 || t.K > s.BestK {
			s.BestK = t.K
		}
		if t.Len == phase {
			s.PhaseCycles++
			s.PhasedAbundance += t.Abundance
		} else {
			s.OtherAbundance += t.Abundance
		}
	}
	return s
}

// beats reports whether candidate a should replace the current best b.
func (s ClusterStats) beats(b ClusterStats) bool {
	if s.BestK != b.BestK {
		return s.BestK > b.BestK
	}
	return s.PhasedAbundance > b.PhasedAbundance
}

// Match is the cluster evidence found for one consolidated locus.
type Match struct {
	Locus Locus
	// Best is the selected cluster and Stats its statistics.
	Best  *Cluster
	Stats ClusterStats
	// Candidates lists every cluster that passed the match threshold, in
	// cluster-file order.
	Candidates []*Cluster
	// AllTags is the union of the candidates' tags, deduplicated by sequence,
	// in order of first appearance.
	AllTags []Tag
}

// MatchLocus scans the clusters on l's chromosome and returns the best match,
// or false if no cluster reaches opts.MatchThreshold.  Among candidates the
// highest best k-value wins, then the highest phased abundance, then the
// earliest cluster.
func MatchLocus(l Locus, set *ClusterSet, opts Opts) (Match, bool) {
	m := Match{Locus: l}
	seqs := map[string]bool{}
	ids := set.overlapping(l.Chrom, l.Interval, opts.MatchThreshold <= 0)
	for _, id := range ids {
		c := set.Cluster(id)
		if l.Interval.Ratio(c.Interval) < opts.MatchThreshold {
			continue
		}
		stats := NewClusterStats(c, opts.Phase)
		if m.Best == nil || stats.beats(m.Stats) {
			m.Best, m.Stats = c, stats
		}
		m.Candidates = append(m.Candidates, c)
		for _, t := range c.Tags {
			if !seqs[t.Seq] {
				seqs[t.Seq] = true
				m.AllTags = append(m.AllTags, t)
			}
		}
	}
	return m, m.Best != nil
}

// MatchAll matches every locus concurrently.  Matched loci keep the order of
// loci; loci without a cluster are returned separately, also in order.
func MatchAll(ctx context.Context, loci []Locus, set *ClusterSet, opts Opts) (matched []Match, unmatched []Locus, err error) {
	if len(loci) > 0 && set.Len() > 0 && loci[0].Chrom.Kind() != set.Kind() {
		return nil, nil, E(MalformedRecord, "loci and clusters use different chromosome id spaces")
	}
	results := make([]Match, len(loci))
	found := make([]bool, len(loci))
	err = RunSharded(ctx, "cluster match", len(loci), opts.Workers(), func(i int) error {
		results[i], found[i] = MatchLocus(loci[i], set, opts)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	for i := range results {
		if found[i] {
			matched = append(matched, results[i])
		} else {
			unmatched = append(unmatched, loci[i])
		}
	}
	log.Printf("cluster match: %d loci matched, %d without a cluster at ratio >= %v", len(matched), len(unmatched), opts.MatchThreshold)
	return matched, unmatched, nil
}
