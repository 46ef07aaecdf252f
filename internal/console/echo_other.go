// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !windows

package console

import (
	"fmt"
	"runtime"
)

func setEcho(int, bool) error {
	return fmt.Errorf("echo control is not supported on %s", runtime.GOOS)
}
