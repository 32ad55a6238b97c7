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

// Library maps tag sequences to their abundance in one sequencing library.
type Library struct {
	Name string
	abun map[string]int64
}

// NewLibrary returns an empty library.
func NewLibrary(name string) *Library {
	return &Library{Name: name, abun: map[string]int64{}}
}

// Add records n more reads of seq.  A sequence reported more than once
// accumulates.
func (l *Library) Add(seq string, n int64) {
	l.abun[seq] += n
}

// Abundance returns the abundance of seq, 0 if absent.
func (l *Library) Abundance(seq string) int64 { return l.abun[seq] }

// Len returns the number of distinct sequences.
func (l *Library) Len() int { return len(l.abun) }

// LibraryNames returns the names of libs in order.
func LibraryNames(libs []*Library) []string {
	names := make([]string, len(libs))
	for i, l := range libs {
		names[i] = l.Name
	}
	return names
}
