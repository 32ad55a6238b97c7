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
package external

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/phasmerge/encoding/textfile"
	"github.com/grailbio/phasmerge/phas"
)

// indexSuffixes are the files whose presence marks a usable index: small and
// large index variants respectively.
var indexSuffixes = []string{".1.ebwt", ".1.ebwtl"}

// IndexHandle names a sequence index by its path prefix.  The merge never
// reads the index; it only checks that it exists.
type IndexHandle string

func (h IndexHandle) valid(ctx context.Context) bool {
	for _, suffix := range indexSuffixes {
		if textfile.Exists(ctx, string(h)+suffix) {
			return true
		}
	}
	return false
}

// OpenIndex returns the handle for the index at prefix, or an InputNotFound
// error if no index file exists there.
func OpenIndex(ctx context.Context, prefix string) (IndexHandle, error) {
	h := IndexHandle(prefix)
	if !h.valid(ctx) {
		return "", phas.E(phas.InputNotFound, fmt.Sprintf("no index at %s (looked for %s)", prefix, strings.Join(indexSuffixes, ", ")))
	}
	return h, nil
}

// Aligner builds sequence indexes.
type Aligner struct {
	Build *Tool
}

// NewAligner locates the index builder ("bowtie-build").
func NewAligner() (*Aligner, error) {
	build, err := Look("bowtie-build")
	if err != nil {
		return nil, err
	}
	return &Aligner{Build: build}, nil
}

// BuildIndex indexes the sequences in refPath under prefix.
func (a *Aligner) BuildIndex(ctx context.Context, refPath, prefix string) (IndexHandle, error) {
	if _, err := a.Build.Run(ctx, "", refPath, prefix); err != nil {
		return "", err
	}
	h := IndexHandle(prefix)
	if !h.valid(ctx) {
		return "", &Error{Kind: MalformedOutput, Tool: a.Build.Name, Err: fmt.Errorf("no index files at %s", prefix)}
	}
	log.Printf("built index %s from %s", prefix, refPath)
	return h, nil
}
