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
	"github.com/grailbio/phasmerge/interval"
	"github.com/minio/highwayhash"
)

// Tag is one small-RNA sequence reported inside a cluster.
type Tag struct {
	Name      string
	Seq       string
	Len       int
	Abundance int64
	Hits      int
	Pos       int
	// Strand is 'w' (forward) or 'c' (reverse).
	Strand byte
	// PValue is kept verbatim from the archive.
	PValue string
	// K is the phasing-strength score assigned upstream.
	K int
}

// Cluster is one raw evidence block.  Clusters are read-only once loaded.
type Cluster struct {
	ID    string
	Chrom ChromID
	interval.Interval
	Tags []Tag
	// Raw is the block text as it appeared in the archive, without the
	// leading '>'.
	Raw string
}

// chromClusters indexes the clusters of one chromosome.
type chromClusters struct {
	ids   []int // into ClusterSet.clusters, ascending
	index *interval.Index
}

// ClusterSet holds every cluster of a run, indexed per chromosome.
type ClusterSet struct {
	clusters []Cluster
	byChrom  map[ChromID]*chromClusters
	// Duplicates counts blocks dropped because an identical block came first.
	Duplicates int
}

type clusterHash = [highwayhash.Size]uint8

// hashCluster fingerprints the content of a block.
func hashCluster(c *Cluster, buf *[]byte) clusterHash {
	var zeroSeed clusterHash
	*buf = append((*buf)[:0], c.Chrom.String()...)
	*buf = append(*buf, 0)
	*buf = append(*buf, c.Raw...)
	return highwayhash.Sum(*buf, zeroSeed[:])
}

// NewClusterSet builds a ClusterSet.  Clusters keep their input order, which
// is the order ties are broken in; a block identical to an earlier one is
// dropped.  It fails if clusters mix genomic and named chromosome ids.
func NewClusterSet(clusters []Cluster) (*ClusterSet, error) {
	if err := checkSpace(len(clusters), func(i int) ChromID { return clusters[i].Chrom }); err != nil {
		return nil, err
	}
	s := &ClusterSet{byChrom: map[ChromID]*chromClusters{}}
	seen := make(map[clusterHash]bool, len(clusters))
	var buf []byte
	spans := map[ChromID][]interval.Interval{}
	for i := range clusters {
		c := &clusters[i]
		h := hashCluster(c, &buf)
		if seen[h] {
			s.Duplicates++
			continue
		}
		seen[h] = true
		cc := s.byChrom[c.Chrom]
		if cc == nil {
			cc = &chromClusters{}
			s.byChrom[c.Chrom] = cc
		}
		cc.ids = append(cc.ids, len(s.clusters))
		spans[c.Chrom] = append(spans[c.Chrom], c.Interval)
		s.clusters = append(s.clusters, *c)
	}
	for chrom, cc := range s.byChrom {
		index, err := interval.NewIndex(spans[chrom])
		if err != nil {
			return nil, E(MalformedRecord, "cluster index for chromosome "+chrom.String(), err)
		}
		cc.index = index
	}
	return s, nil
}

// Len returns the number of distinct clusters.
func (s *ClusterSet) Len() int { return len(s.clusters) }

// Cluster returns the i'th cluster.
func (s *ClusterSet) Cluster(i int) *Cluster { return &s.clusters[i] }

// Kind returns the identifier space of the set, or NoChrom if it is empty.
func (s *ClusterSet) Kind() ChromKind {
	if len(s.clusters) == 0 {
		return NoChrom
	}
	return s.clusters[0].Chrom.Kind()
}

// overlapping returns, in input order, the ids of the clusters on chrom that
// share at least one position with iv.  With all set, every cluster on chrom
// is returned.
func (s *ClusterSet) overlapping(chrom ChromID, iv interval.Interval, all bool) []int {
	cc := s.byChrom[chrom]
	if cc == nil {
		return nil
	}
	if all {
		return cc.ids
	}
	hits := cc.index.Overlapping(iv)
	for i, h := range hits {
		hits[i] = cc.ids[h]
	}
	return hits
}
