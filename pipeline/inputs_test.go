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
package pipeline_test

import (
	"testing"

	"github.com/grailbio/phasmerge/phas"
	"github.com/grailbio/phasmerge/pipeline"
	"github.com/grailbio/testutil/expect"
)

func TestParseListName(t *testing.T) {
	for _, test := range []struct {
		path, lib string
	}{
		{"/in/leaf.score_p1e-07_sRNA_21_out.cluster.boundary.without.PARE.validation.list", "leaf"},
		{"2600_chopped.txt.score_p1e-07_sRNA_21_out.cluster.boundary.without.PARE.validation.list", "2600_chopped.txt"},
		{"short.list", "short"},
	} {
		expect.EQ(t, pipeline.ParseListName(test.path).Library, test.lib, "path %s", test.path)
	}
}

func TestParseClusterName(t *testing.T) {
	cf, ok := pipeline.ParseClusterName("/in/2600_chopped.score_p1e-07_sRNA_21_out.cluster")
	expect.True(t, ok)
	expect.EQ(t, cf, pipeline.ClusterFile{
		Path:    "/in/2600_chopped.score_p1e-07_sRNA_21_out.cluster",
		Library: "2600_chopped",
		PValue:  1e-07,
		Phase:   21,
	})

	cf, ok = pipeline.ParseClusterName("leaf.txt.score_p0.0005_sRNA_24_out.cluster")
	expect.True(t, ok)
	expect.EQ(t, cf.Library, "leaf")
	expect.EQ(t, cf.PValue, 0.0005)
	expect.EQ(t, cf.Phase, 24)

	for _, bad := range []string{"ALL.cluster", "a_b_c.cluster", "leaf.score_pX_sRNA_21_out.cluster", "leaf.score_p1e-07_sRNA_nt_out.cluster"} {
		_, ok := pipeline.ParseClusterName(bad)
		expect.False(t, ok, "name %s", bad)
	}
}

func TestLibraryName(t *testing.T) {
	expect.EQ(t, pipeline.LibraryName("/data/leaf.txt"), "leaf")
	expect.EQ(t, pipeline.LibraryName("root.chopped.fas"), "root.chopped")
	expect.EQ(t, pipeline.LibraryName("flower"), "flower")
}

func TestSelect(t *testing.T) {
	in := pipeline.Inputs{
		Lists: []pipeline.ListFile{{Path: "leaf.list", Library: "leaf"}, {Path: "root.list", Library: "root"}},
		Clusters: []pipeline.ClusterFile{
			{Path: "leaf1", Library: "leaf", PValue: 1e-05, Phase: 21},
			{Path: "leaf2", Library: "leaf", PValue: 1e-04, Phase: 21},
			{Path: "leaf3", Library: "leaf", PValue: 1e-07, Phase: 24},
			{Path: "root1", Library: "root", PValue: 1e-07, Phase: 21},
		},
	}
	expect.EQ(t, in.PValues(), []float64{1e-04, 1e-05, 1e-07})

	lists, clusters, err := in.Select([]string{"/data/leaf.txt"}, 1e-05, 21)
	expect.NoError(t, err)
	expect.EQ(t, lists, []pipeline.ListFile{{Path: "leaf.list", Library: "leaf"}})
	expect.EQ(t, len(clusters), 1)
	expect.EQ(t, clusters[0].Path, "leaf1")

	lists, clusters, err = in.Select(nil, 1e-05, 21)
	expect.NoError(t, err)
	expect.EQ(t, len(lists), 2)
	expect.EQ(t, len(clusters), 2)

	_, _, err = in.Select([]string{"flower.txt"}, 1e-05, 21)
	expect.EQ(t, phas.KindOf(err), phas.InputNotFound)
	_, _, err = in.Select(nil, 1e-05, 22)
	expect.EQ(t, phas.KindOf(err), phas.InputNotFound)
}
