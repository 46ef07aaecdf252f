// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package console

import "golang.org/x/sys/unix"

// setEcho toggles ECHO only; canonical line editing stays enabled.
func setEcho(fd int, on bool) error {
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return err
	}

	newState := *termios
	if on {
		newState.Lflag |= unix.ECHO
	} else {
		newState.Lflag &^= unix.ECHO
	}
	return unix.IoctlSetTermios(fd, ioctlWriteTermios, &newState)
}
