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

/*
bio-phasmerge consolidates the phased small-RNA loci predicted per library
into one non-redundant locus set, matches each locus to its best supporting
cluster, and writes the summary tables.

  bio-phasmerge merge -dir predictions -libs leaf.txt,root.txt -out results
  bio-phasmerge compare a_summary.txt b_summary.txt
  bio-phasmerge index genome.fa genome
*/

import (
	"os"

	"github.com/grailbio/base/grail"
	"v.io/x/lib/cmdline"
)

func newCmdRoot() *cmdline.Command {
	return &cmdline.Command{
		Name:     "bio-phasmerge",
		Short:    "Merge phased small-RNA locus predictions across libraries",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdMerge(),
			newCmdCompare(),
			newCmdIndex(),
		},
	}
}

func main() {
	shutdown := grail.Init()
	cmdline.HideGlobalFlagsExcept()
	env := cmdline.EnvFromOS()
	err := cmdline.ParseAndRun(newCmdRoot(), env, os.Args[1:])
	shutdown()
	os.Exit(cmdline.ExitCode(err, env.Stderr))
}
