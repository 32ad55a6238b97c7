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

// Package phas consolidates phased small-RNA locus (PHAS) predictions made
// independently per library and per p-value into one non-redundant locus set,
// then matches every consolidated locus against the raw cluster evidence to
// compute per-locus phasing statistics and per-library abundances.
//
// The pipeline runs strictly in stages:
//
//   parse -> group by chromosome -> self-merge -> fold across libraries
//         -> cluster match -> summarize -> safe-search filter -> emit
//
// Each stage fans out over a bounded set of workers (see Opts.Parallelism)
// and joins before the next stage starts.  Workers receive immutable inputs
// and return values; only the controlling goroutine mutates the consolidated
// state, and only between stages.
package phas
