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

// SelfMergeBatch applies SelfMerge to every chromosome group of b
// concurrently and drops groups left empty.
func SelfMergeBatch(ctx context.Context, b Batch, opts Opts) (Batch, error) {
	out := make(Batch, len(b))
	err := RunSharded(ctx, "self-merge", len(b), opts.Workers(), func(i int) error {
		out[i] = ChromGroup{Chrom: b[i].Chrom, Loci: SelfMerge(b[i].Loci, opts.SelfMergeRatio)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return compact(out), nil
}

// mergeTask is everything one fold worker needs.  It is built by the
// controlling goroutine before dispatch and not shared afterwards.
type mergeTask struct {
	Chrom  ChromID
	A, B   []Locus
	Cutoff float64
}

func (t mergeTask) run() ChromGroup {
	return ChromGroup{Chrom: t.Chrom, Loci: PairwiseMerge(t.A, t.B, t.Cutoff)}
}

// Reduce left-folds batches into one consolidated batch.  The first batch is
// the initial state; each following batch is merged into it with
// PairwiseMerge, one task per chromosome present on either side.  A fold step
// completes before the next one starts, so the result depends only on the
// order of batches.
func Reduce(ctx context.Context, batches []Batch, opts Opts) (Batch, error) {
	var heads []ChromID
	for _, b := range batches {
		if len(b) > 0 {
			heads = append(heads, b[0].Chrom)
		}
	}
	if err := checkSpace(len(heads), func(i int) ChromID { return heads[i] }); err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}
	state := batches[0]
	cutoff := opts.MergeCutoff()
	for step, next := range batches[1:] {
		chroms := unionChroms(state, next)
		tasks := make([]mergeTask, len(chroms))
		for i, c := range chroms {
			tasks[i] = mergeTask{Chrom: c, A: state.Group(c), B: next.Group(c), Cutoff: cutoff}
		}
		results := make(Batch, len(tasks))
		err := RunSharded(ctx, "fold", len(tasks), opts.Workers(), func(i int) error {
			results[i] = tasks[i].run()
			return nil
		})
		if err != nil {
			return nil, err
		}
		state = compact(results)
		log.Debug.Printf("fold step %d: %d chromosome groups, %d loci", step+1, len(state), state.Len())
	}
	return state, nil
}

// unionChroms returns the sorted union of the chromosome ids of a and b.
func unionChroms(a, b Batch) []ChromID {
	seen := make(map[ChromID]bool, len(a)+len(b))
	var out []ChromID
	for _, batch := range []Batch{a, b} {
		for _, g := range batch {
			if !seen[g.Chrom] {
				seen[g.Chrom] = true
				out = append(out, g.Chrom)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func compact(b Batch) Batch {
	out := b[:0]
	for _, g := range b {
		if len(g.Loci) > 0 {
			out = append(out, g)
		}
	}
	return out
}
