// Package fasta contains a streaming parser for FASTA files.  Briefly, FASTA
// files consist of a number of named sequences that may be interrupted by
// newlines.  For example:
//
// >seq_1|25
// ACGTAC
// GAGGAC
// GCG
// >seq_2|3
// ACGT
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appear after a space are ignored.
// For example, '>seq_1|25 leaf library' becomes 'seq_1|25'.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 // 1 MB
	maxLineSize    = 1024 * 1024 * 300
)

// Scanner reads FASTA records one at a time, without holding the file in
// memory.  Typical use:
//
//   sc := fasta.NewScanner(r)
//   for sc.Scan() {
//     fmt.Println(sc.Name(), sc.Seq())
//   }
//   if err := sc.Err(); err != nil { ... }
type Scanner struct {
	sc      *bufio.Scanner
	name    string
	seq     strings.Builder
	pending string // header line read ahead of the next record
	done    bool
	err     error
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, bufferInitSize), maxLineSize)
	return &Scanner{sc: sc}
}

// Scan reads the next record.  It returns false at the end of input or on
// error.
func (s *Scanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}
	header := s.pending
	s.pending = ""
	for header == "" {
		if !s.sc.Scan() {
			s.done = true
			if err := s.sc.Err(); err != nil {
				s.err = errors.Wrap(err, "couldn't read FASTA data")
			}
			return false
		}
		line := strings.TrimRight(s.sc.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] != '>' {
			s.err = errors.Errorf("malformed FASTA file: sequence %q before the first header", line)
			return false
		}
		header = line
	}
	s.name = strings.Split(header[1:], " ")[0]
	s.seq.Reset()
	for s.sc.Scan() {
		line := strings.TrimRight(s.sc.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' { // Start of the next record.
			s.pending = line
			return true
		}
		s.seq.WriteString(line)
	}
	s.done = true
	if err := s.sc.Err(); err != nil {
		s.err = errors.Wrap(err, "couldn't read FASTA data")
		return false
	}
	return true
}

// Name returns the name of the current record.
func (s *Scanner) Name() string { return s.name }

// Seq returns the sequence of the current record, with newlines removed.
func (s *Scanner) Seq() string { return s.seq.String() }

// Err returns the first error encountered.
func (s *Scanner) Err() error { return s.err }
