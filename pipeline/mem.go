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

	"github.com/grailbio/base/file"
	"github.com/grailbio/phasmerge/phas"
)

// writeMem records what a run produced so that later steps can find the
// tables without repeating the p-value selection.
func writeMem(ctx context.Context, out Outputs, phase int, cutoff float64, fingerprint uint64) (err error) {
	var dst file.File
	if dst, err = file.Create(ctx, out.Mem); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, dst, &err)
	_, err = fmt.Fprintf(dst.Writer(ctx),
		"@phase:%d\n@pval:%s\n@collapsedfile:%s\n@collapsedlist:%s\n@summaryfile:%s\n@phasifile:%s\n@fingerprint:%016x\n",
		phase, phas.FormatPValue(cutoff), out.Collapsed, out.CollapsedList, out.Summary, out.Phasi, fingerprint)
	return
}
