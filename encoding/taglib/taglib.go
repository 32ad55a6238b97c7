// Package taglib loads per-library tag abundances.  Two layouts are
// supported:
//
//   T: "<tag>\t<abundance>" lines
//   F: a FASTA file with ">name|<abundance>" headers, each followed by the
//      tag sequence.  The FASTA file sits next to the library file with the
//      extension replaced by ".fas".
//
// A tag listed more than once accumulates its abundances.
package taglib

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/phasmerge/encoding/fasta"
	"github.com/grailbio/phasmerge/encoding/textfile"
	"github.com/grailbio/phasmerge/phas"
)

// Format names a library file layout.
type Format byte

const (
	// TagCount files hold "<tag>\t<abundance>" lines.
	TagCount Format = 'T'
	// Fasta files hold ">name|<abundance>" records.
	Fasta Format = 'F'
)

// ParseFormat parses "T" or "F".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "T":
		return TagCount, nil
	case "F":
		return Fasta, nil
	}
	return 0, fmt.Errorf("library format must be T or F, got %q", s)
}

func (f Format) String() string { return string(f) }

// FastaPath returns the path of the FASTA file holding the tags of the
// library file path: the extension is replaced by ".fas".
func FastaPath(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		path = path[:i]
	}
	return path + ".fas"
}

type tagCountRow struct {
	Tag       string
	Abundance int64
}

func readTagCount(r io.Reader, name string, lib *phas.Library) error {
	tr := tsv.NewReader(r)
	lineno := 0
	for {
		var row tagCountRow
		lineno++
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				return nil
			}
			return phas.E(phas.MalformedRecord, fmt.Sprintf("%s:%d: %v", name, lineno, err))
		}
		lib.Add(strings.TrimSpace(row.Tag), row.Abundance)
	}
}

func readFasta(r io.Reader, name string, lib *phas.Library) error {
	sc := fasta.NewScanner(r)
	for sc.Scan() {
		fields := strings.Split(sc.Name(), "|")
		if len(fields) < 2 {
			return phas.E(phas.MalformedRecord, fmt.Sprintf("%s: header %q has no abundance", name, sc.Name()))
		}
		abun, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return phas.E(phas.MalformedRecord, fmt.Sprintf("%s: header %q", name, sc.Name()), err)
		}
		lib.Add(strings.TrimSpace(sc.Seq()), abun)
	}
	if err := sc.Err(); err != nil {
		return phas.E(phas.MalformedRecord, name, err)
	}
	return nil
}

// Read loads the library stored at path under the given name.
func Read(ctx context.Context, path, name string, format Format) (lib *phas.Library, err error) {
	parse := readTagCount
	if format == Fasta {
		path = FastaPath(path)
		parse = readFasta
	}
	in, err := textfile.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	lib = phas.NewLibrary(name)
	if err := parse(in, path, lib); err != nil {
		return nil, err
	}
	log.Printf("%s: cached %d tags", path, lib.Len())
	return lib, nil
}

// ReadAll loads the libraries at paths, named by names, using up to
// parallelism goroutines.  The result is in the order of paths.
func ReadAll(ctx context.Context, paths, names []string, format Format, parallelism int) ([]*phas.Library, error) {
	if len(paths) != len(names) {
		log.Panicf("taglib.ReadAll: %d paths, %d names", len(paths), len(names))
	}
	libs := make([]*phas.Library, len(paths))
	err := phas.RunSharded(ctx, "read libraries", len(paths), parallelism, func(i int) error {
		var err error
		libs[i], err = Read(ctx, paths[i], names[i], format)
		return err
	})
	if err != nil {
		return nil, err
	}
	return libs, nil
}
