// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command lounzip extracts, lists, renames and deletes zip archive entries.
//
//	lounzip e [-y] [-o dir] archive.zip...
//	lounzip l [--verbose] [--human] archive.zip...
//	lounzip r archive.zip old-name new-name
//	lounzip d archive.zip name...
//	lounzip h
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
