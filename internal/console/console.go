// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package console reads operator input for interactive prompts.
//
// A Console owns a single buffered reader over the interactive input so
// that bytes typed ahead of one prompt are still available to the next.
// Passwords are read with terminal echo disabled; the previous terminal
// attributes are restored on every return path and when the process is
// interrupted while a password prompt is outstanding.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

const (
	// MaxPasswordSize is the password buffer size, terminator included.
	MaxPasswordSize = 82
	// MaxRenameSize is the rename buffer size, terminator included.
	MaxRenameSize = 1024
)

var (
	// ErrOverflow is returned when a line does not fit the read buffer.
	ErrOverflow = errors.New("console: input exceeds buffer")
	// ErrInput is returned when the input stream cannot be read.
	ErrInput = errors.New("console: reading input stream failed")
	// ErrTerminal is returned when terminal attributes cannot be
	// inspected or changed.
	ErrTerminal = errors.New("console: terminal attributes unavailable")
)

// Console reads prompt answers from an input stream.
type Console struct {
	in  *bufio.Reader
	fd  int
	out io.Writer
	log *log.Logger
}

// New returns a Console reading from in. Output that the terminal would
// normally echo (the newline ending a password) is written to out.
// A nil logger selects the charm default logger.
func New(in io.Reader, out io.Writer, logger *log.Logger) *Console {
	if logger == nil {
		logger = log.Default()
	}
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &Console{
		in:  bufio.NewReaderSize(in, MaxRenameSize),
		fd:  fd,
		out: out,
		log: logger,
	}
}

// IsTerminal reports whether the input stream is a terminal.
func (c *Console) IsTerminal() bool {
	return c.fd >= 0 && term.IsTerminal(c.fd)
}

// ReadLine reads one line into a buffer of size bytes and returns it
// without the newline. A line that fills the buffer, newline included,
// yields ErrOverflow; the rest of that line is consumed.
func (c *Console) ReadLine(size int) (string, error) {
	line, overflow, err := c.readLine(size - 2)
	if err != nil {
		return "", err
	}
	if overflow {
		return "", ErrOverflow
	}
	return string(line), nil
}

// ReadRenameTarget reads a replacement path with echo untouched.
func (c *Console) ReadRenameTarget() (string, error) {
	return c.ReadLine(MaxRenameSize)
}

// ReadPassword reads one line with terminal echo disabled. Content longer
// than MaxPasswordSize-1 bytes is truncated with a warning. An empty line
// yields an empty, non-nil password. The caller owns the returned slice
// and should zero it once the password is no longer needed.
func (c *Console) ReadPassword() ([]byte, error) {
	if c.fd < 0 {
		return nil, fmt.Errorf("%w: input is not a file", ErrTerminal)
	}

	guard, err := disableEcho(c.fd)
	if err != nil {
		return nil, err
	}

	password, overflow, readErr := c.readLine(MaxPasswordSize - 1)
	restoreErr := guard.Restore()

	// The terminal did not echo the newline that ended the line.
	fmt.Fprintln(c.out)

	if readErr != nil {
		clear(password)
		return nil, readErr
	}
	if restoreErr != nil {
		clear(password)
		return nil, restoreErr
	}
	if overflow {
		c.log.Warn("password was too big...")
	}
	return password, nil
}

// readLine reads up to a newline, keeping at most max bytes. overflow
// reports that the line was longer than max; the excess is discarded.
// End of input ends the line when at least one byte was read.
func (c *Console) readLine(max int) (line []byte, overflow bool, err error) {
	if max < 0 {
		max = 0
	}
	line = make([]byte, 0, max)
	read := 0
	for {
		b, err := c.in.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && read > 0 {
				return line, overflow, nil
			}
			clear(line)
			return nil, false, fmt.Errorf("%w: %w", ErrInput, err)
		}
		if b == '\n' {
			return line, overflow, nil
		}
		read++
		if len(line) < max {
			line = append(line, b)
		} else {
			overflow = true
		}
	}
}
