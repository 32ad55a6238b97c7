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

import "fmt"

// Stats counts what each stage of a run consumed and produced.
type Stats struct {
	// Records is the number of prediction records accepted at the cutoff.
	Records int
	// Batches is the number of prediction files folded.
	Batches int
	// SelfMerged is the number of loci left after self-merging every batch.
	SelfMerged int
	// Consolidated is the number of loci after the cross-library fold.
	Consolidated int
	// Clusters is the number of distinct clusters loaded, and
	// DuplicateClusters the number of repeated blocks dropped.
	Clusters          int
	DuplicateClusters int
	// Matched and Unmatched count loci with and without cluster evidence.
	Matched   int
	Unmatched int
	// Filtered is the number of matched loci dropped by the safe-search filter.
	Filtered int
	// Reported is the number of rows in the summary table.
	Reported int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Records += o.Records
	s.Batches += o.Batches
	s.SelfMerged += o.SelfMerged
	s.Consolidated += o.Consolidated
	s.Clusters += o.Clusters
	s.DuplicateClusters += o.DuplicateClusters
	s.Matched += o.Matched
	s.Unmatched += o.Unmatched
	s.Filtered += o.Filtered
	s.Reported += o.Reported
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("records=%d batches=%d selfmerged=%d consolidated=%d clusters=%d (dup %d) matched=%d unmatched=%d filtered=%d reported=%d",
		s.Records, s.Batches, s.SelfMerged, s.Consolidated, s.Clusters, s.DuplicateClusters,
		s.Matched, s.Unmatched, s.Filtered, s.Reported)
}
