// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

import (
	"errors"
	"fmt"
	"io"

	"github.com/lemon4ksan/lounzip"
)

const chunkSize = 1024

// transfer copies exactly size bytes from src to dst in chunks of at most
// chunkSize. It never asks src for bytes past size. A stream that ends
// early yields lounzip.ErrEOF.
func transfer(dst io.Writer, src io.Reader, size int64) (int64, error) {
	var (
		buf     [chunkSize]byte
		written int64
	)
	for written < size {
		n := int64(chunkSize)
		if remaining := size - written; remaining < n {
			n = remaining
		}

		nr, rerr := src.Read(buf[:n])
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, &writeError{err: werr}
			}
			if nw != nr {
				return written, &writeError{err: io.ErrShortWrite}
			}
		}
		if rerr != nil {
			if written == size {
				break
			}
			if errors.Is(rerr, io.EOF) {
				return written, lounzip.ErrEOF
			}
			return written, rerr
		}
	}
	return written, nil
}

// writeError marks a failure on the destination side of a transfer.
type writeError struct {
	err error
}

func (e *writeError) Error() string { return fmt.Sprintf("write: %v", e.err) }

func (e *writeError) Unwrap() error { return e.err }
