// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"strings"

	"github.com/lemon4ksan/lounzip"
)

// matchEntries returns the live entries addressed by name: the entry with
// exactly that name or, when name denotes a directory (with or without
// the trailing slash), the directory entry and everything below it.
func matchEntries(a *lounzip.Archive, name string) ([]lounzip.EntryInfo, error) {
	dir := strings.TrimSuffix(name, "/") + "/"

	var matches []lounzip.EntryInfo
	for i := 0; i < a.NumEntries(); i++ {
		info, err := a.Stat(i)
		if errors.Is(err, lounzip.ErrDeleted) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if info.Name == name || info.Name == dir || strings.HasPrefix(info.Name, dir) {
			matches = append(matches, info)
		}
	}
	return matches, nil
}
