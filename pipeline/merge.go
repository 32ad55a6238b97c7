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
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/phasmerge/encoding/clusterarchive"
	"github.com/grailbio/phasmerge/encoding/prediction"
	"github.com/grailbio/phasmerge/encoding/taglib"
	"github.com/grailbio/phasmerge/external"
	"github.com/grailbio/phasmerge/phas"
)

// Config names the inputs and outputs of a merge run.
type Config struct {
	// Dir holds the prediction lists and cluster archives.
	Dir string
	// OutDir receives the result tables.
	OutDir string
	// Libs are the library files the predictions were made from.  Their
	// names select the prediction outputs; their contents supply the
	// per-library abundances.  Empty selects every prediction output, and
	// the summary then has no per-library columns; it requires
	// opts.SafeSearch to be off.
	Libs      []string
	LibFormat taglib.Format
	// PValue is the requested cutoff.  Zero picks one from the available
	// cluster archives.
	PValue float64
	// Index, if set, is the prefix of a sequence index that must exist
	// before the run starts.
	Index string
}

// Outputs are the paths a merge run wrote.
type Outputs struct {
	Collapsed     string
	CollapsedList string
	Unmatched     string
	Summary       string
	Clusters      string
	Phasi         string
	// AllPhasi is only written for transcript and short-contig runs.
	AllPhasi string
	Mem      string
}

func newOutputs(dir string, opts phas.Opts, cutoff float64) Outputs {
	prefix := filepath.Join(dir, fmt.Sprintf("%dPHAS_p%s", opts.Phase, phas.FormatPValue(cutoff)))
	ext := ""
	if opts.Bgzip {
		ext = ".gz"
	}
	o := Outputs{
		Collapsed:     prefix + "_collapsed.txt" + ext,
		CollapsedList: prefix + "_collapsed.list" + ext,
		Unmatched:     prefix + "_unmatched.txt" + ext,
		Summary:       prefix + "_summary.txt" + ext,
		Clusters:      prefix + "_clust.txt" + ext,
		Phasi:         prefix + "_phasi.csv" + ext,
		Mem:           filepath.Join(dir, "phasmerge.mem"),
	}
	if opts.Mode.Named() {
		o.AllPhasi = prefix + "_allphasi.csv" + ext
	}
	return o
}

// readBatches reads every prediction list at cutoff and self-merges each
// into a batch.  Batches are in the order of lists.
func readBatches(ctx context.Context, lists []ListFile, cutoff float64, opts phas.Opts, stats *phas.Stats) ([]phas.Batch, error) {
	loci := make([][]phas.Locus, len(lists))
	err := phas.RunSharded(ctx, "read predictions", len(lists), opts.Workers(), func(i int) error {
		var err error
		loci[i], err = prediction.ReadFile(ctx, lists[i].Path, opts.Mode, cutoff, lists[i].Library)
		return err
	})
	if err != nil {
		return nil, err
	}
	batches := make([]phas.Batch, 0, len(lists))
	for i, l := range loci {
		stats.Records += len(l)
		b, err := phas.GroupByChrom(l)
		if err != nil {
			return nil, phas.E(phas.KindOf(err), lists[i].Path, err)
		}
		if b, err = phas.SelfMergeBatch(ctx, b, opts); err != nil {
			return nil, err
		}
		stats.SelfMerged += b.Len()
		log.Debug.Printf("%s: %d loci, %d after self-merge", lists[i].Path, len(l), b.Len())
		batches = append(batches, b)
	}
	stats.Batches = len(batches)
	return batches, nil
}

// readClusters loads the cluster archives in the order of files.
func readClusters(ctx context.Context, files []ClusterFile, opts phas.Opts) (*phas.ClusterSet, error) {
	perFile := make([][]phas.Cluster, len(files))
	err := phas.RunSharded(ctx, "read clusters", len(files), opts.Workers(), func(i int) error {
		var err error
		perFile[i], err = clusterarchive.ReadFile(ctx, files[i].Path, opts.Mode)
		return err
	})
	if err != nil {
		return nil, err
	}
	var all []phas.Cluster
	for _, cs := range perFile {
		all = append(all, cs...)
	}
	return phas.NewClusterSet(all)
}

// Run merges the predictions in cfg.Dir and writes the result tables to
// cfg.OutDir.
func Run(ctx context.Context, cfg Config, opts phas.Opts) (phas.Stats, Outputs, error) {
	var stats phas.Stats
	if err := opts.Validate(); err != nil {
		return stats, Outputs{}, err
	}
	if opts.SafeSearch && len(cfg.Libs) == 0 {
		return stats, Outputs{}, errors.E(errors.Invalid,
			"safe search filters on per-library abundance: list the library files with -libs, or disable -safe-search")
	}
	if cfg.Index != "" {
		if _, err := external.OpenIndex(ctx, cfg.Index); err != nil {
			return stats, Outputs{}, err
		}
	}
	inputs, err := Discover(ctx, cfg.Dir)
	if err != nil {
		return stats, Outputs{}, err
	}
	cutoff, err := phas.SelectPValue(inputs.PValues(), cfg.PValue)
	if err != nil {
		return stats, Outputs{}, err
	}
	log.Printf("using p-value cutoff %s", phas.FormatPValue(cutoff))
	lists, clusterFiles, err := inputs.Select(cfg.Libs, cutoff, opts.Phase)
	if err != nil {
		return stats, Outputs{}, err
	}
	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return stats, Outputs{}, err
	}
	out := newOutputs(cfg.OutDir, opts, cutoff)

	batches, err := readBatches(ctx, lists, cutoff, opts, &stats)
	if err != nil {
		return stats, out, err
	}
	merged, err := phas.Reduce(ctx, batches, opts)
	if err != nil {
		return stats, out, err
	}
	loci := phas.Collapse(merged)
	stats.Consolidated = len(loci)
	if len(loci) == 0 {
		return stats, out, phas.E(phas.NoLociAtThreshold, fmt.Sprintf(
			"no phased loci at p <= %s; relax the p-value cutoff", phas.FormatPValue(cutoff)))
	}
	if err := phas.WriteLocusTable(ctx, out.Collapsed, loci, opts.Bgzip); err != nil {
		return stats, out, err
	}
	if err := phas.WriteLocusList(ctx, out.CollapsedList, loci, opts.Bgzip); err != nil {
		return stats, out, err
	}

	set, err := readClusters(ctx, clusterFiles, opts)
	if err != nil {
		return stats, out, err
	}
	stats.Clusters, stats.DuplicateClusters = set.Len(), set.Duplicates
	matches, unmatched, err := phas.MatchAll(ctx, loci, set, opts)
	if err != nil {
		return stats, out, err
	}
	stats.Matched, stats.Unmatched = len(matches), len(unmatched)
	if err := phas.WriteLocusTable(ctx, out.Unmatched, unmatched, opts.Bgzip); err != nil {
		return stats, out, err
	}

	libNames := make([]string, len(cfg.Libs))
	for i, lib := range cfg.Libs {
		libNames[i] = filepath.Base(lib)
	}
	libs, err := taglib.ReadAll(ctx, cfg.Libs, libNames, cfg.LibFormat, opts.Workers())
	if err != nil {
		return stats, out, err
	}
	sums, err := phas.SummarizeAll(ctx, matches, libs, opts)
	if err != nil {
		return stats, out, err
	}
	stats.Reported = len(sums)
	stats.Filtered = len(matches) - len(sums)
	if err := phas.WriteSummary(ctx, out.Summary, sums, libNames, opts.Bgzip); err != nil {
		return stats, out, err
	}
	if err := phas.WriteClusters(ctx, out.Clusters, matches, opts.Bgzip); err != nil {
		return stats, out, err
	}
	if err := phas.WriteTagRecords(ctx, out.Phasi, matches, false, opts.MinTagAbundance, opts.Bgzip); err != nil {
		return stats, out, err
	}
	if out.AllPhasi != "" {
		if err := phas.WriteTagRecords(ctx, out.AllPhasi, matches, true, opts.MinTagAbundance, opts.Bgzip); err != nil {
			return stats, out, err
		}
	}
	if err := writeMem(ctx, out, opts.Phase, cutoff, phas.Fingerprint(loci)); err != nil {
		return stats, out, err
	}
	log.Printf("merge done: %v", stats)
	return stats, out, nil
}
