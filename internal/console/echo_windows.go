// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package console

import "golang.org/x/sys/windows"

func setEcho(fd int, on bool) error {
	h := windows.Handle(fd)
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return err
	}

	newMode := mode
	if on {
		newMode |= windows.ENABLE_ECHO_INPUT
	} else {
		newMode &^= windows.ENABLE_ECHO_INPUT
	}
	return windows.SetConsoleMode(h, newMode)
}
