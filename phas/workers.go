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
	"fmt"

	"github.com/grailbio/base/traverse"
)

// RunSharded calls fn(i) for i in [0,n), splitting the range into at most
// parallelism contiguous shards that run concurrently.  It returns after every
// shard finishes.  fn must only write state owned by item i.
//
// A panic in fn, or an error without a Kind, is reported as
// WorkerTaskFailure; errors that already carry a Kind pass through.  ctx is
// checked before every item.
func RunSharded(ctx context.Context, what string, n, parallelism int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	if parallelism <= 0 || parallelism > n {
		parallelism = n
	}
	return traverse.Each(parallelism, func(jobIdx int) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = E(WorkerTaskFailure, fmt.Sprintf("%s: %v", what, r))
			}
		}()
		startIdx := (jobIdx * n) / parallelism
		endIdx := ((jobIdx + 1) * n) / parallelism
		for i := startIdx; i < endIdx; i++ {
			if e := ctx.Err(); e != nil {
				return E(WorkerTaskFailure, what, e)
			}
			if e := fn(i); e != nil {
				return asWorkerFailure(e, what)
			}
		}
		return nil
	})
}
