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
	"fmt"
	"strconv"
	"strings"
)

// ChromKind tells which identifier space a ChromID belongs to.
type ChromKind uint8

const (
	// NoChrom is the kind of the zero ChromID.
	NoChrom ChromKind = iota
	// GenomicChrom ids are chromosome numbers.
	GenomicChrom
	// NamedChrom ids are transcript, scaffold or contig names.
	NamedChrom
)

// ChromID identifies a chromosome, scaffold or transcript.  It is either
// Genomic(n) or Named(s); the two spaces never compare equal, and collections
// mixing them are rejected when they are built (see GroupByChrom and
// NewClusterSet).  ChromID is comparable and may be used as a map key.
type ChromID struct {
	kind ChromKind
	num  uint64
	name string
}

// Genomic returns the genomic chromosome id n.
func Genomic(n uint64) ChromID { return ChromID{kind: GenomicChrom, num: n} }

// Named returns the named chromosome id s.
func Named(s string) ChromID { return ChromID{kind: NamedChrom, name: s} }

// ParseChrom parses s as a chromosome id of the space used by mode.
func ParseChrom(mode Mode, s string) (ChromID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ChromID{}, E(MalformedRecord, "empty chromosome id")
	}
	if mode.Named() {
		return Named(s), nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return ChromID{}, E(MalformedRecord, "genomic chromosome id "+strconv.Quote(s)+" is not an integer", err)
	}
	return Genomic(n), nil
}

// Kind returns the identifier space of c.
func (c ChromID) Kind() ChromKind { return c.kind }

// IsZero reports whether c is the zero ChromID.
func (c ChromID) IsZero() bool { return c.kind == NoChrom }

func (c ChromID) String() string {
	if c.kind == GenomicChrom {
		return strconv.FormatUint(c.num, 10)
	}
	return c.name
}

// Less orders ids within one space: numerically for genomic ids and
// lexically for names.  Ids of different spaces are ordered by kind.
func (c ChromID) Less(o ChromID) bool {
	if c.kind != o.kind {
		return c.kind < o.kind
	}
	if c.kind == GenomicChrom {
		return c.num < o.num
	}
	return c.name < o.name
}

// sortKey is the key the collapsed table is ordered by: the id left-padded
// with '0' to eight characters, lowercased.
func (c ChromID) sortKey() string {
	s := c.String()
	if len(s) < 8 {
		s = strings.Repeat("0", 8-len(s)) + s
	}
	return strings.ToLower(s)
}

// checkSpace returns an error unless the n ids returned by id share one
// identifier space.
func checkSpace(n int, id func(i int) ChromID) error {
	var kind ChromKind
	for i := 0; i < n; i++ {
		c := id(i)
		if c.kind == NoChrom {
			return E(MalformedRecord, "record without a chromosome id")
		}
		if kind == NoChrom {
			kind = c.kind
		} else if c.kind != kind {
			return E(MalformedRecord, fmt.Sprintf("genomic and named chromosome ids mixed in one collection (%s)", c))
		}
	}
	return nil
}
