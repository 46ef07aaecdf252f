// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

import (
	"errors"
	"fmt"
)

// Sentinel kinds of fatal extraction failures. Match them with errors.Is.
var (
	ErrMissingArchive     = errors.New("extract: archive does not exist")
	ErrMissingDestination = errors.New("extract: destination does not exist")
	ErrInputOverflow      = errors.New("extract: input exceeded buffer")
	ErrInputRead          = errors.New("extract: cannot read input")
	ErrFilesystem         = errors.New("extract: filesystem operation failed")
)

// fatalError carries the operator-facing message of a fatal failure.
// It unwraps to both its kind and the underlying cause.
type fatalError struct {
	msg  string
	kind error
	err  error
}

func fatalf(kind, cause error, format string, args ...any) error {
	return &fatalError{
		msg:  fmt.Sprintf(format, args...),
		kind: kind,
		err:  cause,
	}
}

func (e *fatalError) Error() string { return e.msg }

func (e *fatalError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}
