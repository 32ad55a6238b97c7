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
	"path/filepath"
	"sort"

	"github.com/grailbio/base/file"
	"github.com/grailbio/phasmerge/phas"
)

// Predictions lists the files a prediction run left in its output directory.
type Predictions struct {
	// Lists are the "*.list" candidate locus files.
	Lists []string
	// Clusters are the "*.cluster" archives.
	Clusters []string
}

// ListPredictions scans dir (non-recursively) for prediction outputs.  Paths
// are sorted.
func ListPredictions(ctx context.Context, dir string) (Predictions, error) {
	var p Predictions
	lister := file.List(ctx, dir, false)
	for lister.Scan() {
		if lister.IsDir() {
			continue
		}
		path := lister.Path()
		switch filepath.Ext(path) {
		case ".list":
			p.Lists = append(p.Lists, path)
		case ".cluster":
			p.Clusters = append(p.Clusters, path)
		}
	}
	if err := lister.Err(); err != nil {
		return p, phas.E(phas.InputNotFound, dir, err)
	}
	sort.Strings(p.Lists)
	sort.Strings(p.Clusters)
	return p, nil
}

// Predictor runs the external prediction pipeline.
type Predictor struct {
	Tool *Tool
	// Args are passed before the output directory.
	Args []string
}

// NewPredictor locates the prediction pipeline binary name.
func NewPredictor(name string, args ...string) (*Predictor, error) {
	tool, err := Look(name)
	if err != nil {
		return nil, err
	}
	return &Predictor{Tool: tool, Args: args}, nil
}

// Predict runs the pipeline with dir as its output directory and returns
// what it produced.  A run that leaves no locus list behind is a
// MalformedOutput error.
func (p *Predictor) Predict(ctx context.Context, dir string) (Predictions, error) {
	args := append(append([]string{}, p.Args...), dir)
	if _, err := p.Tool.Run(ctx, dir, args...); err != nil {
		return Predictions{}, err
	}
	out, err := ListPredictions(ctx, dir)
	if err != nil {
		return out, err
	}
	if len(out.Lists) == 0 || len(out.Clusters) == 0 {
		return out, &Error{Kind: MalformedOutput, Tool: p.Tool.Name,
			Err: fmt.Errorf("%s: found %d list and %d cluster files", dir, len(out.Lists), len(out.Clusters))}
	}
	return out, nil
}
