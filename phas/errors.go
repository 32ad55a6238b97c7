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

	"github.com/grailbio/base/errors"
)

// Kind classifies the fatal conditions the pipeline reports.  None of them is
// recoverable: the run stops at the first one.
type Kind int

const (
	// UnknownKind is returned by KindOf for errors not produced by this package.
	UnknownKind Kind = iota
	// InputNotFound means a required input file or directory does not exist.
	InputNotFound
	// MalformedRecord means a prediction, cluster, or tag-count record could not be parsed.
	MalformedRecord
	// NoLociAtThreshold means nothing survived to the final table at the chosen p-value.
	NoLociAtThreshold
	// WorkerTaskFailure means a pooled task failed; the whole stage is abandoned.
	WorkerTaskFailure
)

var kindNames = [...]string{
	UnknownKind:       "unknown",
	InputNotFound:     "input not found",
	MalformedRecord:   "malformed record",
	NoLociAtThreshold: "no loci at threshold",
	WorkerTaskFailure: "worker task failure",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// baseKind maps k onto the generic error kinds of grailbio/base/errors.
func (k Kind) baseKind() errors.Kind {
	switch k {
	case InputNotFound:
		return errors.NotExist
	case MalformedRecord:
		return errors.Invalid
	case NoLociAtThreshold:
		return errors.Precondition
	}
	return errors.Other
}

// Error is the error type returned by this package and the readers feeding it.
type Error struct {
	Kind Kind
	// Err carries the message and the underlying cause.
	Err error
}

// E constructs an *Error of the given kind.  The remaining arguments are
// passed to errors.E, so they may include a message string and a cause.
func E(kind Kind, args ...interface{}) error {
	return &Error{Kind: kind, Err: errors.E(append([]interface{}{kind.baseKind()}, args...)...)}
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or UnknownKind if err was not produced by E.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return UnknownKind
}

// asWorkerFailure wraps err as a WorkerTaskFailure unless it already carries
// a Kind.
func asWorkerFailure(err error, what string) error {
	if err == nil || KindOf(err) != UnknownKind {
		return err
	}
	return E(WorkerTaskFailure, what, err)
}
