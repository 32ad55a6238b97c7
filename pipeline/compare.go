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

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/phasmerge/encoding/textfile"
	"github.com/grailbio/phasmerge/phas"
)

// CompareConfig names the inputs and outputs of a compare run.
type CompareConfig struct {
	// A and B are summary tables written by Run.
	A, B   string
	OutDir string
	// MinRatio is the overlap ratio a pair of loci needs to match.  Zero
	// selects phas.DefaultCompareRatio.
	MinRatio float64
}

func readSummary(ctx context.Context, path string) (rows []phas.SummaryRow, err error) {
	in, err := textfile.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return phas.ReadSummaryRows(in, path)
}

// RunCompare matches the loci of two summary tables and writes
// "phasis.compare.txt" and "compare.log" to cfg.OutDir.
func RunCompare(ctx context.Context, cfg CompareConfig, bgzip bool) (phas.CompareStats, error) {
	var stats phas.CompareStats
	a, err := readSummary(ctx, cfg.A)
	if err != nil {
		return stats, err
	}
	b, err := readSummary(ctx, cfg.B)
	if err != nil {
		return stats, err
	}
	ratio := cfg.MinRatio
	if ratio <= 0 {
		ratio = phas.DefaultCompareRatio
	}
	rows, stats := phas.Compare(a, b, ratio)
	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return stats, err
	}
	outPath := filepath.Join(cfg.OutDir, "phasis.compare.txt")
	if bgzip {
		outPath += ".gz"
	}
	if err := phas.WriteComparison(ctx, outPath, rows, bgzip); err != nil {
		return stats, err
	}
	if err := writeCompareLog(ctx, filepath.Join(cfg.OutDir, "compare.log"), cfg, stats); err != nil {
		return stats, err
	}
	log.Printf("compare: %d/%d loci of %s and %d/%d loci of %s matched",
		stats.MatchedA, stats.RowsA, cfg.A, stats.MatchedB, stats.RowsB, cfg.B)
	return stats, nil
}

func writeCompareLog(ctx context.Context, path string, cfg CompareConfig, stats phas.CompareStats) (err error) {
	var dst file.File
	if dst, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, dst, &err)
	_, err = fmt.Fprintf(dst.Writer(ctx),
		"file a: %s\nfile b: %s\nloci in a: %d\nloci in b: %d\nmatched a: %d\nmatched b: %d\nunmatched a: %d\nunmatched b: %d\nmatching pairs: %d\n",
		cfg.A, cfg.B, stats.RowsA, stats.RowsB, stats.MatchedA, stats.MatchedB,
		stats.RowsA-stats.MatchedA, stats.RowsB-stats.MatchedB, stats.Pairs)
	return
}
