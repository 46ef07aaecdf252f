// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lounzip

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every failure reported by an [Archive]. The values
// follow the libzip numbering so diagnostics stay comparable with other
// unzip front ends.
type ErrorCode int

const (
	ErrOK             ErrorCode = iota // no error
	ErrMultidisk                       // multi-disk archives are not supported
	ErrRename                          // renaming the temporary file failed
	ErrClose                           // closing the archive failed
	ErrSeek                            // seek error
	ErrRead                            // read error
	ErrWrite                           // write error
	ErrCRC                             // CRC mismatch
	ErrZipClosed                       // containing archive was closed
	ErrNoEnt                           // no such file
	ErrExists                          // file already exists
	ErrOpen                            // cannot open file
	ErrTmpOpen                         // failure to create temporary file
	ErrZlib                            // decompressor initialization failed
	ErrMemory                          // allocation failure
	ErrChanged                         // entry has been changed
	ErrCompNotSupp                     // compression method not supported
	ErrEOF                             // premature end of file
	ErrInval                           // invalid argument
	ErrNoZip                           // not a zip archive
	ErrInternal                        // internal error
	ErrInconsistent                    // archive is inconsistent
	ErrRemove                          // cannot remove file
	ErrDeleted                         // entry has been deleted
	ErrEncrNotSupp                     // encryption method not supported
	ErrReadOnly                        // read-only archive
	ErrNoPassword                      // no password provided
	ErrWrongPassword                   // wrong password provided
	ErrOpNotSupp                       // operation not supported
	ErrInUse                           // resource still in use
	ErrTell                            // tell error
	ErrCompressedData                  // compressed data invalid
	ErrCancelled                       // operation cancelled

	numErrorCodes
)

var errorMessages = [numErrorCodes]string{
	ErrOK:             "",
	ErrMultidisk:      "multidisk zip archives are not supported.",
	ErrRename:         "renaming a temporary file failed.",
	ErrClose:          "closing zip archive failed.",
	ErrSeek:           "cannot seek the archive, possibly an I/O error.",
	ErrRead:           "cannot read the archive, possibly an I/O error.",
	ErrWrite:          "cannot write archive contents, possibly an I/O error.",
	ErrCRC:            "crc validation failed.",
	ErrZipClosed:      "containing zip archive was closed.",
	ErrNoEnt:          "no such file exists.",
	ErrExists:         "another file already exists with that name.",
	ErrOpen:           "zip archive cannot be opened.",
	ErrTmpOpen:        "failed to create temporary file.",
	ErrZlib:           "zlib initialization failed.",
	ErrMemory:         "memory allocation failed.",
	ErrChanged:        "archive entry has been altered.",
	ErrCompNotSupp:    "unsupported compression method.",
	ErrEOF:            "premature end of file.",
	ErrInval:          "invalid argument was provided.",
	ErrNoZip:          "invalid zip archive.",
	ErrInternal:       "an internal error has occurred.",
	ErrInconsistent:   "unexpected inconsistencies were found.",
	ErrRemove:         "removing a file failed.",
	ErrDeleted:        "an unexpected error occurred.",
	ErrEncrNotSupp:    "unsupported encryption algorithm.",
	ErrReadOnly:       "zip archive is read-only.",
	ErrNoPassword:     "",
	ErrWrongPassword:  "wrong password was provided.",
	ErrOpNotSupp:      "unsupported operation.",
	ErrInUse:          "resource is still in use.",
	ErrTell:           "cannot tell the file.",
	ErrCompressedData: "invalid compressed data was found.",
	ErrCancelled:      "ongoing operation was cancelled.",
}

// Message returns the operator-facing text for c. Codes outside the known
// range get a generic message instead of an empty one.
func (c ErrorCode) Message() string {
	if c < 0 || c >= numErrorCodes {
		return fmt.Sprintf("unknown error (code %d)", int(c))
	}
	return errorMessages[c]
}

// Error makes a bare code usable as an errors.Is target.
func (c ErrorCode) Error() string {
	if msg := c.Message(); msg != "" {
		return msg
	}
	return fmt.Sprintf("error code %d", int(c))
}

// Error is the failure type of every [Archive] operation.
type Error struct {
	Code ErrorCode
	Op   string // operation that failed, e.g. "open" or "commit"
	Name string // archive path or entry name, may be empty
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	return e.Code.Error()
}

// Detail renders the code together with the operation and the cause.
// It is meant for debug logging, not for operator diagnostics.
func (e *Error) Detail() string {
	s := e.Op
	if e.Name != "" {
		s += " " + e.Name
	}
	s += ": " + e.Code.Error()
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same ErrorCode or an *Error with the same code.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return e.Code == t
	case *Error:
		return e.Code == t.Code
	}
	return false
}

// CodeOf extracts the ErrorCode carried by err, or ErrInternal when err did
// not come from this package. A nil error yields ErrOK.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrOK
	}
	var ze *Error
	if errors.As(err, &ze) {
		return ze.Code
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return ErrInternal
}

func newError(code ErrorCode, op, name string, err error) *Error {
	return &Error{Code: code, Op: op, Name: name, Err: err}
}
