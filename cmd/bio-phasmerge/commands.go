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
package main

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/phasmerge/encoding/taglib"
	"github.com/grailbio/phasmerge/external"
	"github.com/grailbio/phasmerge/phas"
	"github.com/grailbio/phasmerge/pipeline"
	"v.io/x/lib/cmdline"
)

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func newCmdMerge() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "merge",
		Short: "Consolidate per-library phased loci and summarize their clusters",
	}
	d := phas.DefaultOpts
	var (
		dir             = cmd.Flags.String("dir", "", "Directory holding the prediction lists and cluster archives (required)")
		out             = cmd.Flags.String("out", "phasmerge_results", "Output directory")
		libs            = cmd.Flags.String("libs", "", "Comma-separated library files the predictions were made from (required with -safe-search)")
		libFormat       = cmd.Flags.String("lib-format", "T", "Library file format: T (tag<TAB>abundance) or F (sibling .fas file)")
		mode            = cmd.Flags.String("mode", d.Mode.String(), "G: genomic chromosome numbers, T: transcripts, S: scaffolds or short contigs")
		phase           = cmd.Flags.Int("phase", d.Phase, "Phase length in nucleotides")
		pval            = cmd.Flags.Float64("pval", 0, "p-value cutoff; 0 picks one from the available cluster archives")
		index           = cmd.Flags.String("index", "", "If set, prefix of a sequence index that must exist before the run")
		selfMergeRatio  = cmd.Flags.Float64("self-merge-ratio", d.SelfMergeRatio, "Overlap ratio above which loci of one library are merged")
		overlapCutoff   = cmd.Flags.Float64("overlap-cutoff", d.OverlapCutoff, "Overlap ratio above which loci of different libraries compete; 0 uses 0.05 (genomic) or 0.10 (transcripts)")
		matchThreshold  = cmd.Flags.Float64("match-threshold", d.MatchThreshold, "Minimum overlap ratio between a locus and its cluster")
		safeSearch      = cmd.Flags.Bool("safe-search", d.SafeSearch, "Drop loci that fail the quality filters")
		maxTagRatio     = cmd.Flags.Float64("max-tag-ratio", d.MaxTagRatioCut, "Safe search: largest share of the phased abundance one tag may carry")
		phaseCycles     = cmd.Flags.Int("phase-cycles", d.PhaseCyclesCut, "Safe search: minimum phase-length tags in the best cluster")
		minAbun         = cmd.Flags.Int64("min-abun", d.MinAbunCut, "Safe search: minimum abundance in at least one library")
		minTagAbundance = cmd.Flags.Int64("min-tag-abun", d.MinTagAbundance, "Minimum tag abundance written to the phasi tables")
		parallelism     = cmd.Flags.Int("parallelism", 0, "Maximum number of concurrent workers; 0 = 90% of the CPUs")
		bgzip           = cmd.Flags.Bool("bgzip", false, "Compress output tables with BGZF")
		predictor       = cmd.Flags.String("predictor", "", "If set, run this prediction pipeline with -dir as its output directory first")
		predictorArgs   = cmd.Flags.String("predictor-args", "", "Comma-separated arguments passed to -predictor before the output directory")
	)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("merge takes no positional arguments, but got %v", argv)
		}
		if *dir == "" {
			return fmt.Errorf("-dir is required")
		}
		ctx := vcontext.Background()
		opts := phas.Opts{
			Phase:           *phase,
			SelfMergeRatio:  *selfMergeRatio,
			OverlapCutoff:   *overlapCutoff,
			MatchThreshold:  *matchThreshold,
			SafeSearch:      *safeSearch,
			MaxTagRatioCut:  *maxTagRatio,
			PhaseCyclesCut:  *phaseCycles,
			MinAbunCut:      *minAbun,
			MinTagAbundance: *minTagAbundance,
			Parallelism:     *parallelism,
			Bgzip:           *bgzip,
		}
		var err error
		if opts.Mode, err = phas.ParseMode(*mode); err != nil {
			return err
		}
		cfg := pipeline.Config{
			Dir:    *dir,
			OutDir: *out,
			Libs:   splitList(*libs),
			PValue: *pval,
			Index:  *index,
		}
		if cfg.LibFormat, err = taglib.ParseFormat(*libFormat); err != nil {
			return err
		}
		if *predictor != "" {
			p, err := external.NewPredictor(*predictor, splitList(*predictorArgs)...)
			if err != nil {
				return err
			}
			if _, err := p.Predict(ctx, cfg.Dir); err != nil {
				return err
			}
		}
		stats, outputs, err := pipeline.Run(ctx, cfg, opts)
		if err != nil {
			return err
		}
		log.Printf("%d loci reported in %s", stats.Reported, outputs.Summary)
		return nil
	})
	return cmd
}

func newCmdCompare() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "compare",
		Short:    "Match the loci of two summary tables",
		ArgsName: "a_summary b_summary",
	}
	out := cmd.Flags.String("out", ".", "Directory receiving phasis.compare.txt and compare.log")
	ratio := cmd.Flags.Float64("ratio", phas.DefaultCompareRatio, "Minimum overlap ratio of a matching pair")
	bgzip := cmd.Flags.Bool("bgzip", false, "Compress the comparison table with BGZF")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("compare takes two summary tables, but got %v", argv)
		}
		cfg := pipeline.CompareConfig{A: argv[0], B: argv[1], OutDir: *out, MinRatio: *ratio}
		_, err := pipeline.RunCompare(vcontext.Background(), cfg, *bgzip)
		return err
	})
	return cmd
}

func newCmdIndex() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "index",
		Short:    "Build the sequence index used by the prediction pipeline",
		ArgsName: "reference prefix",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("index takes reference and prefix, but got %v", argv)
		}
		ctx := vcontext.Background()
		if _, err := external.OpenIndex(ctx, argv[1]); err == nil {
			log.Printf("index %s already exists", argv[1])
			return nil
		}
		aligner, err := external.NewAligner()
		if err != nil {
			return err
		}
		_, err = aligner.BuildIndex(ctx, argv[0], argv[1])
		return err
	})
	return cmd
}
