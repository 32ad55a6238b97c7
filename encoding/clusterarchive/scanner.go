// Package clusterarchive reads the cluster files written alongside phased
// locus predictions.  A file is a sequence of blocks, each introduced by
// '>'.  The first line of a block is a whitespace-separated header carrying
// the cluster id (field 2), chromosome (field 6), start (field 10) and end
// (field 12).  Every following non-empty line is one tab-separated tag
// record:
//
//   field  2: strand, '+' or '-'
//   field  3: position
//   field  4: tag name
//   field  5: sequence
//   field  6: length
//   field  7: abundance
//   field  9: k=<score>
//   field 10: hits=<count>
//   field 12: p-value
//
// Text before the first '>' is ignored.
package clusterarchive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/phasmerge/encoding/textfile"
	"github.com/grailbio/phasmerge/interval"
	"github.com/grailbio/phasmerge/phas"
)

const (
	headerFields = 13
	tagFields    = 13
)

// Scanner reads clusters one block at a time.  Typical use:
//
//   sc := clusterarchive.NewScanner(r, "x.cluster", phas.GenomicMode)
//   for sc.Scan() {
//     c := sc.Cluster()
//     ...
//   }
//   if err := sc.Err(); err != nil { ... }
type Scanner struct {
	r     *bufio.Reader
	name  string
	mode  phas.Mode
	block int
	// started is set once the first '>' has been consumed.
	started bool
	cluster phas.Cluster
	err     error
}

// NewScanner creates a Scanner reading from r.  name is used in error
// messages.
func NewScanner(r io.Reader, name string, mode phas.Mode) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 1<<20), name: name, mode: mode}
}

// next returns the text up to (not including) the next '>', or up to EOF.
func (s *Scanner) next() (string, bool, error) {
	chunk, err := s.r.ReadString('>')
	if err == io.EOF {
		return chunk, chunk != "", nil
	}
	if err != nil {
		return "", false, err
	}
	return chunk[:len(chunk)-1], true, nil
}

// Scan reads the next cluster.  It returns false at the end of input or on
// error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if !s.started {
		s.started = true
		for {
			// Skip the preamble.
			b, err := s.r.ReadByte()
			if err == io.EOF {
				return false
			}
			if err != nil {
				s.err = phas.E(phas.MalformedRecord, s.name, err)
				return false
			}
			if b == '>' {
				break
			}
		}
	}
	for {
		block, ok, err := s.next()
		if err != nil {
			s.err = phas.E(phas.MalformedRecord, s.name, err)
			return false
		}
		if !ok {
			return false
		}
		s.block++
		if strings.TrimSpace(block) == "" {
			continue
		}
		if s.cluster, err = ParseBlock(block, s.mode); err != nil {
			s.err = phas.E(phas.MalformedRecord, fmt.Sprintf("%s: block %d: %v", s.name, s.block, err))
			return false
		}
		return true
	}
}

// Cluster returns the cluster read by the last successful Scan.
func (s *Scanner) Cluster() phas.Cluster { return s.cluster }

// Err returns the first error encountered.
func (s *Scanner) Err() error { return s.err }

// ParseBlock parses the text of one block, without its leading '>'.
func ParseBlock(block string, mode phas.Mode) (phas.Cluster, error) {
	c := phas.Cluster{Raw: block}
	lines := strings.Split(block, "\n")
	header := strings.Fields(lines[0])
	if len(header) < headerFields {
		return c, fmt.Errorf("header %q: want at least %d fields, got %d", lines[0], headerFields, len(header))
	}
	c.ID = header[2]
	var err error
	if c.Chrom, err = phas.ParseChrom(mode, header[6]); err != nil {
		return c, err
	}
	start, err := strconv.Atoi(header[10])
	if err != nil {
		return c, fmt.Errorf("header start: %v", err)
	}
	end, err := strconv.Atoi(header[12])
	if err != nil {
		return c, fmt.Errorf("header end: %v", err)
	}
	if c.Interval, err = interval.New(start, end); err != nil {
		return c, err
	}
	for i, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		tag, err := parseTag(line)
		if err != nil {
			return c, fmt.Errorf("tag line %d: %v", i+1, err)
		}
		c.Tags = append(c.Tags, tag)
	}
	return c, nil
}

func parseTag(line string) (phas.Tag, error) {
	var t phas.Tag
	f := strings.Split(line, "\t")
	if len(f) < tagFields {
		return t, fmt.Errorf("want at least %d fields, got %d", tagFields, len(f))
	}
	switch f[2] {
	case "+":
		t.Strand = 'w'
	case "-":
		t.Strand = 'c'
	default:
		return t, fmt.Errorf("bad strand %q", f[2])
	}
	var err error
	if t.Pos, err = strconv.Atoi(f[3]); err != nil {
		return t, fmt.Errorf("position: %v", err)
	}
	t.Name = strings.Replace(f[4], "|", "_", -1)
	t.Seq = f[5]
	if t.Len, err = strconv.Atoi(f[6]); err != nil {
		return t, fmt.Errorf("length: %v", err)
	}
	if t.Abundance, err = strconv.ParseInt(f[7], 10, 64); err != nil {
		return t, fmt.Errorf("abundance: %v", err)
	}
	if t.K, err = assignedInt(f[9]); err != nil {
		return t, fmt.Errorf("k: %v", err)
	}
	if t.Hits, err = assignedInt(f[10]); err != nil {
		return t, fmt.Errorf("hits: %v", err)
	}
	t.PValue = f[12]
	return t, nil
}

// assignedInt parses the integer in "name=<n>".
func assignedInt(s string) (int, error) {
	i := strings.IndexByte(s, '=')
	if i < 0 {
		return 0, fmt.Errorf("missing '=' in %q", s)
	}
	return strconv.Atoi(strings.TrimSpace(s[i+1:]))
}

// ReadFile reads every cluster of a (possibly gzipped) file, in file order.
func ReadFile(ctx context.Context, path string, mode phas.Mode) (clusters []phas.Cluster, err error) {
	in, err := textfile.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	sc := NewScanner(in, path, mode)
	for sc.Scan() {
		clusters = append(clusters, sc.Cluster())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	log.Debug.Printf("%s: %d clusters", path, len(clusters))
	return clusters, nil
}
