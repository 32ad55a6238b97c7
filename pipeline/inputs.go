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

// Package pipeline drives a merge run over the output directory of a
// prediction run: it discovers the per-library prediction lists and cluster
// archives, folds them with package phas and writes the result tables.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/phasmerge/external"
	"github.com/grailbio/phasmerge/phas"
)

// ListFile is one prediction list.
type ListFile struct {
	Path    string
	Library string
}

// ClusterFile is one cluster archive.  Its name carries the library, the
// p-value it was produced at and the phase length:
// "<lib>.<x>_p<pval>_<y>_<phase>_<z>.cluster".
type ClusterFile struct {
	Path    string
	Library string
	PValue  float64
	Phase   int
}

// rsplitFirst returns what python's s.rsplit(sep, n)[0] would: s up to the
// n'th-last occurrence of sep, or up to the first one when there are fewer.
func rsplitFirst(s, sep string, n int) string {
	parts := strings.Split(s, sep)
	if len(parts) > n+1 {
		return strings.Join(parts[:len(parts)-n], sep)
	}
	return parts[0]
}

// LibraryName returns the name a library file is known by in prediction
// output names: its base name without the last extension.
func LibraryName(path string) string {
	return rsplitFirst(filepath.Base(path), ".", 1)
}

// ParseListName returns the library a prediction list belongs to.  List
// names are "<lib>" followed by seven dot-separated fields, for example
// "leaf.score_p1e-07_sRNA_21_out.cluster.boundary.without.PARE.validation.list".
func ParseListName(path string) ListFile {
	return ListFile{Path: path, Library: rsplitFirst(filepath.Base(path), ".", 7)}
}

// ParseClusterName parses the name of a cluster archive.  ok is false for
// files that do not follow the naming scheme.
func ParseClusterName(path string) (cf ClusterFile, ok bool) {
	base := strings.TrimSuffix(filepath.Base(path), ".cluster")
	info := strings.Split(base, "_")
	if len(info) < 5 {
		return cf, false
	}
	// Keep the last four '_' fields; the library may itself contain '_'.
	head := strings.Join(info[:len(info)-4], "_")
	info = info[len(info)-4:]
	pval, err := strconv.ParseFloat(strings.Replace(info[0], "p", "", -1), 64)
	if err != nil {
		return cf, false
	}
	phase, err := strconv.Atoi(info[2])
	if err != nil {
		return cf, false
	}
	return ClusterFile{
		Path:    path,
		Library: rsplitFirst(head, ".", 2),
		PValue:  pval,
		Phase:   phase,
	}, true
}

// Inputs are the prediction outputs found in a directory.
type Inputs struct {
	Lists    []ListFile
	Clusters []ClusterFile
	// Ignored counts ".cluster" files whose name could not be parsed.
	Ignored int
}

// Discover lists the prediction outputs in dir.
func Discover(ctx context.Context, dir string) (Inputs, error) {
	var in Inputs
	found, err := external.ListPredictions(ctx, dir)
	if err != nil {
		return in, err
	}
	for _, path := range found.Lists {
		in.Lists = append(in.Lists, ParseListName(path))
	}
	for _, path := range found.Clusters {
		cf, ok := ParseClusterName(path)
		if !ok {
			log.Debug.Printf("ignoring %s: not a cluster archive name", path)
			in.Ignored++
			continue
		}
		in.Clusters = append(in.Clusters, cf)
	}
	log.Printf("%s: %d list files, %d cluster files", dir, len(in.Lists), len(in.Clusters))
	return in, nil
}

// PValues returns the distinct p-values of the cluster archives, largest
// first.
func (in Inputs) PValues() []float64 {
	seen := map[float64]bool{}
	var ps []float64
	for _, cf := range in.Clusters {
		if !seen[cf.PValue] {
			seen[cf.PValue] = true
			ps = append(ps, cf.PValue)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ps)))
	return ps
}

// libraryFilter accepts every library when empty.
type libraryFilter map[string]bool

func newLibraryFilter(libs []string) libraryFilter {
	f := libraryFilter{}
	for _, lib := range libs {
		f[LibraryName(lib)] = true
	}
	return f
}

func (f libraryFilter) accept(lib string) bool { return len(f) == 0 || f[lib] }

// Select returns the lists of the given libraries and the cluster archives
// of those libraries produced at a p-value <= cutoff for phase.  Either
// selection being empty is an InputNotFound error.
func (in Inputs) Select(libs []string, cutoff float64, phase int) ([]ListFile, []ClusterFile, error) {
	filter := newLibraryFilter(libs)
	var lists []ListFile
	for _, lf := range in.Lists {
		if filter.accept(lf.Library) {
			lists = append(lists, lf)
		}
	}
	var clusters []ClusterFile
	for _, cf := range in.Clusters {
		if filter.accept(cf.Library) && cf.PValue <= cutoff && cf.Phase == phase {
			clusters = append(clusters, cf)
		}
	}
	if len(lists) == 0 || len(clusters) == 0 {
		return nil, nil, phas.E(phas.InputNotFound, fmt.Sprintf(
			"found %d prediction lists and %d cluster archives for libraries %v at p <= %s, phase %d; check the phase and library names",
			len(lists), len(clusters), libs, phas.FormatPValue(cutoff), phase))
	}
	return lists, clusters, nil
}
