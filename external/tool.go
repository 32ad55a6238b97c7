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

// Package external runs the command-line tools that surround the merge: the
// short-read aligner that builds a sequence index and the prediction
// pipeline that emits candidate loci and cluster archives.  Calls are never
// retried.
package external

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/grailbio/base/log"
	"v.io/x/lib/envvar"
	"v.io/x/lib/lookpath"
)

// Kind classifies tool failures.
type Kind int

const (
	// UnknownKind is returned by KindOf for errors not produced by this package.
	UnknownKind Kind = iota
	// ToolMissing means the binary could not be found on PATH.
	ToolMissing
	// NonZeroExit means the tool ran and failed.
	NonZeroExit
	// MalformedOutput means the tool succeeded but did not leave the expected
	// files behind.
	MalformedOutput
)

func (k Kind) String() string {
	switch k {
	case ToolMissing:
		return "tool missing"
	case NonZeroExit:
		return "non-zero exit"
	case MalformedOutput:
		return "malformed output"
	}
	return "unknown"
}

// Error describes a failed tool invocation.
type Error struct {
	Kind Kind
	Tool string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Tool, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or UnknownKind.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return UnknownKind
}

// Tool is a located binary.
type Tool struct {
	Name string
	// Path is the absolute path of the binary.
	Path string
}

// Look finds name on the PATH of the current process.
func Look(name string) (*Tool, error) {
	return LookIn(envvar.SliceToMap(os.Environ()), name)
}

// LookIn finds name on the PATH found in env.
func LookIn(env map[string]string, name string) (*Tool, error) {
	path, err := lookpath.Look(env, name)
	if err != nil {
		return nil, &Error{Kind: ToolMissing, Tool: name, Err: err}
	}
	return &Tool{Name: name, Path: path}, nil
}

// maxStderr bounds the stderr text kept in a NonZeroExit error.
const maxStderr = 4096

// Run runs the tool with args in dir (the current directory if empty) and
// returns its standard output.
func (t *Tool) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Debug.Printf("running %s %s", t.Path, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[len(msg)-maxStderr:]
		}
		if msg != "" {
			err = fmt.Errorf("%v: %s", err, msg)
		}
		return nil, &Error{Kind: NonZeroExit, Tool: t.Name, Err: err}
	}
	return stdout.Bytes(), nil
}
