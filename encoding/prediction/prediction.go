// Package prediction parses the locus lists written by the phased-locus
// prediction pipeline.  Each non-empty line describes one candidate locus:
//
//   <p-value>|<phase>|<ignored> = <chromosome>:<start>..<end>
//
// for example "1e-07|21|4.2 = 3:27574117..27574772".  The chromosome is
// everything before the last ':' so transcript names may contain colons.
package prediction

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

// ParseLine parses one record.  The returned locus has no Source.
func ParseLine(line string, mode phas.Mode) (phas.Locus, error) {
	var l phas.Locus
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return l, fmt.Errorf("missing '=' in %q", line)
	}
	left := strings.Split(strings.TrimSpace(parts[0]), "|")
	if len(left) != 3 {
		return l, fmt.Errorf("want pval|phase|score before '=', got %q", parts[0])
	}
	right := strings.Split(strings.TrimSpace(parts[1]), "..")
	if len(right) != 2 {
		return l, fmt.Errorf("want chr:start..end after '=', got %q", parts[1])
	}
	colon := strings.LastIndexByte(right[0], ':')
	if colon < 0 {
		return l, fmt.Errorf("missing ':' in %q", parts[1])
	}
	var err error
	if l.PValue, err = strconv.ParseFloat(strings.TrimSpace(left[0]), 64); err != nil {
		return l, fmt.Errorf("p-value: %v", err)
	}
	if l.Phase, err = strconv.Atoi(strings.TrimSpace(left[1])); err != nil {
		return l, fmt.Errorf("phase: %v", err)
	}
	if l.Chrom, err = phas.ParseChrom(mode, right[0][:colon]); err != nil {
		return l, err
	}
	start, err := strconv.Atoi(strings.TrimSpace(right[0][colon+1:]))
	if err != nil {
		return l, fmt.Errorf("start: %v", err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(right[1]))
	if err != nil {
		return l, fmt.Errorf("end: %v", err)
	}
	if l.Interval, err = interval.New(start, end); err != nil {
		return l, err
	}
	return l, nil
}

// Read parses every record of r and returns those with p-value <= cutoff,
// tagged with source.  name is used in error messages.
func Read(r io.Reader, name string, mode phas.Mode, cutoff float64, source string) ([]phas.Locus, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1<<20)
	var loci []phas.Locus
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		l, err := ParseLine(line, mode)
		if err != nil {
			return nil, phas.E(phas.MalformedRecord, fmt.Sprintf("%s:%d: %v", name, lineno, err))
		}
		if l.PValue > cutoff {
			continue
		}
		l.Source = source
		loci = append(loci, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, phas.E(phas.MalformedRecord, name, err)
	}
	return loci, nil
}

// ReadFile is Read on a (possibly gzipped) file.
func ReadFile(ctx context.Context, path string, mode phas.Mode, cutoff float64, source string) (loci []phas.Locus, err error) {
	in, err := textfile.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	if loci, err = Read(in, path, mode, cutoff, source); err != nil {
		return nil, err
	}
	log.Printf("%s: %d loci at p <= %s", path, len(loci), phas.FormatPValue(cutoff))
	return loci, nil
}
