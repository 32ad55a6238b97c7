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
	"encoding/binary"
	"math"

	"blainsmith.com/go/seahash"
)

// Fingerprint returns a checksum of loci that depends on their order,
// chromosomes, coordinates and p-values.  Two runs over the same inputs in
// the same fold order produce the same fingerprint.
func Fingerprint(loci []Locus) uint64 {
	h := seahash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:]) // nolint: errcheck
	}
	for _, l := range loci {
		name := l.Chrom.String()
		put(uint64(len(name)))
		h.Write([]byte(name)) // nolint: errcheck
		put(uint64(l.Start))
		put(uint64(l.End))
		put(math.Float64bits(l.PValue))
	}
	return h.Sum64()
}
