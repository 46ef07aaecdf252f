// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux || darwin

package console

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func openPty(t *testing.T) (ptmx, tty *os.File) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	t.Cleanup(func() {
		tty.Close()
		ptmx.Close()
	})
	return ptmx, tty
}

func echoEnabled(t *testing.T, tty *os.File) bool {
	t.Helper()
	termios, err := unix.IoctlGetTermios(int(tty.Fd()), ioctlReadTermios)
	require.NoError(t, err)
	return termios.Lflag&unix.ECHO != 0
}

func TestReadPassword_Terminal(t *testing.T) {
	ptmx, tty := openPty(t)
	require.True(t, echoEnabled(t, tty))

	_, err := ptmx.Write([]byte("hunter2\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	c := New(tty, &out, nil)
	assert.True(t, c.IsTerminal())

	password, err := c.ReadPassword()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(password))
	assert.Equal(t, "\n", out.String())
	assert.True(t, echoEnabled(t, tty), "echo must be restored")
}

func TestReadPassword_EmptyLine(t *testing.T) {
	ptmx, tty := openPty(t)

	_, err := ptmx.Write([]byte("\n"))
	require.NoError(t, err)

	c := New(tty, &bytes.Buffer{}, nil)
	password, err := c.ReadPassword()
	require.NoError(t, err)
	assert.NotNil(t, password)
	assert.Empty(t, password)
}

func TestReadPassword_Truncates(t *testing.T) {
	ptmx, tty := openPty(t)

	long := strings.Repeat("p", 100)
	_, err := ptmx.Write([]byte(long + "\nafter\n"))
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Prefix: "test"})
	c := New(tty, &bytes.Buffer{}, logger)

	password, err := c.ReadPassword()
	require.NoError(t, err)
	assert.Equal(t, long[:MaxPasswordSize-1], string(password))
	assert.Contains(t, logs.String(), "password was too big...")
	assert.True(t, echoEnabled(t, tty))

	// The discarded tail must not leak into the next prompt.
	next, err := c.ReadLine(10)
	require.NoError(t, err)
	assert.Equal(t, "after", next)
}

func TestReadPassword_ExactlyAtLimit(t *testing.T) {
	ptmx, tty := openPty(t)

	exact := strings.Repeat("k", MaxPasswordSize-1)
	_, err := ptmx.Write([]byte(exact + "\n"))
	require.NoError(t, err)

	var logs bytes.Buffer
	c := New(tty, &bytes.Buffer{}, log.NewWithOptions(&logs, log.Options{}))

	password, err := c.ReadPassword()
	require.NoError(t, err)
	assert.Equal(t, exact, string(password))
	assert.Empty(t, logs.String())
}

func TestReadPassword_RestoresOnReadFailure(t *testing.T) {
	ptmx, tty := openPty(t)

	// Ctrl-D on an empty canonical line is end of input.
	_, err := ptmx.Write([]byte{0x04})
	require.NoError(t, err)

	c := New(tty, &bytes.Buffer{}, nil)
	_, err = c.ReadPassword()
	assert.ErrorIs(t, err, ErrInput)
	assert.True(t, echoEnabled(t, tty), "echo must be restored after a failed read")
}
