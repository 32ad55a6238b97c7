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
	"runtime"
)

// Mode selects how chromosome identifiers are interpreted and which
// cross-library merge cutoff applies.
type Mode byte

const (
	// GenomicMode runs use integer chromosome ids.
	GenomicMode Mode = 'G'
	// TranscriptMode runs use transcript names as chromosome ids.
	TranscriptMode Mode = 'T'
	// ShortContigMode runs use scaffold or contig names as chromosome ids.
	ShortContigMode Mode = 'S'
)

// ParseMode parses "G", "T" or "S".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "G", "T", "S":
		return Mode(s[0]), nil
	}
	return 0, fmt.Errorf("phas: unknown run mode %q, want G, T or S", s)
}

func (m Mode) String() string { return string(m) }

// Named reports whether chromosome ids are opaque names in this mode.
func (m Mode) Named() bool { return m != GenomicMode }

// Opts holds every tunable of a run.  A single value is built at startup and
// passed, unchanged, to each stage and each worker.
type Opts struct {
	Mode Mode
	// Phase is the phase length in nucleotides, usually 21 or 24.
	Phase int

	// SelfMergeRatio is the overlap ratio above which two loci of one batch
	// are considered the same locus.
	SelfMergeRatio float64
	// OverlapCutoff is the overlap ratio above which an incoming locus
	// competes with an incumbent one during the cross-library fold.  Zero
	// selects 0.05 for genomic and short-contig runs, 0.10 for transcripts.
	OverlapCutoff float64
	// MatchThreshold is the minimum overlap ratio between a locus and a
	// cluster for the cluster to be used as evidence.
	MatchThreshold float64

	// SafeSearch drops low-quality loci from the summary table.
	SafeSearch bool
	// MaxTagRatioCut is the largest share of the phased abundance a single tag
	// may carry.
	MaxTagRatioCut float64
	// PhaseCyclesCut is the minimum number of phase-length tags in the best cluster.
	PhaseCyclesCut int
	// MinAbunCut is the minimum abundance a locus must reach in at least one
	// library: 20 reads per position, 2 strands, 8 positions.
	MinAbunCut int64

	// MinTagAbundance is the minimum tag abundance written to the tag reports.
	MinTagAbundance int64
	// Parallelism bounds the number of concurrent workers.  Zero uses 90% of
	// the available CPUs.
	Parallelism int
	// Bgzip compresses every output table with BGZF.
	Bgzip bool
}

// DefaultOpts sets the default values for Opts.
var DefaultOpts = Opts{
	Mode:            GenomicMode,
	Phase:           21,
	SelfMergeRatio:  0.05,
	MatchThreshold:  0.99,
	SafeSearch:      true,
	MaxTagRatioCut:  0.90,
	PhaseCyclesCut:  7,
	MinAbunCut:      20 * 2 * 8,
	MinTagAbundance: 1,
}

// MergeCutoff returns the effective cross-library overlap cutoff.
func (o Opts) MergeCutoff() float64 {
	if o.OverlapCutoff > 0 {
		return o.OverlapCutoff
	}
	if o.Mode == TranscriptMode {
		return 0.10
	}
	return 0.05
}

// Workers returns the effective worker count.
func (o Opts) Workers() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	n := runtime.NumCPU() * 9 / 10
	if n < 1 {
		n = 1
	}
	return n
}

// MinLocusLen is the shortest locus that passes the safe-search filter: six
// phase cycles plus three nucleotides of dicer offset.
func (o Opts) MinLocusLen() int {
	return o.Phase*6 + 3
}

// Validate checks o for values no stage can work with.
func (o Opts) Validate() error {
	if _, err := ParseMode(string(o.Mode)); err != nil {
		return err
	}
	if o.Phase <= 0 {
		return fmt.Errorf("phas: phase must be positive, got %d", o.Phase)
	}
	for _, r := range []struct {
		name string
		v    float64
	}{
		{"self-merge ratio", o.SelfMergeRatio},
		{"overlap cutoff", o.OverlapCutoff},
		{"match threshold", o.MatchThreshold},
		{"max tag ratio", o.MaxTagRatioCut},
	} {
		if r.v < 0 || r.v > 1 {
			return fmt.Errorf("phas: %s must be in [0,1], got %v", r.name, r.v)
		}
	}
	if o.Parallelism < 0 {
		return fmt.Errorf("phas: parallelism must not be negative, got %d", o.Parallelism)
	}
	return nil
}
