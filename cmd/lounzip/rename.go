// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lemon4ksan/lounzip"
)

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "r archive.zip old-name new-name",
		Short: "rename a file in that zip archive",
		Args: func(_ *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return failf("no zip file archive was provided.")
			case 1:
				return failf("old file name is required.")
			case 2:
				return failf("new file name is required.")
			case 3:
				return nil
			}
			return failf("an unknown argument was provided.")
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.renameEntry(args[0], args[1], args[2]); err != nil {
				return fail(err)
			}
			fmt.Fprintf(a.stdout, "changed from '%s' to '%s'.\n", args[1], args[2])
			return nil
		},
	}
}

// renameEntry renames oldName to newName. Renaming a directory moves the
// entries below it as well.
func (a *app) renameEntry(path, oldName, newName string) error {
	if oldName == "" {
		return errors.New("old file path cannot be an empty string.")
	}
	if newName == "" {
		return errors.New("new file path cannot be an empty string.")
	}

	archive, err := lounzip.Open(path)
	if err != nil {
		return err
	}

	matches, err := matchEntries(archive, oldName)
	if err != nil {
		archive.Discard()
		return err
	}
	if len(matches) == 0 {
		archive.Discard()
		return fmt.Errorf("no archived file was found with name '%s'.", oldName)
	}

	oldDir := strings.TrimSuffix(oldName, "/") + "/"
	newDir := strings.TrimSuffix(newName, "/") + "/"
	for _, info := range matches {
		target := newName
		if info.IsDir() || info.Name != oldName {
			target = newDir + strings.TrimPrefix(info.Name, oldDir)
		}
		a.log.Debug("rename", "from", info.Name, "to", target)
		if err := archive.Rename(info.Index, target); err != nil {
			archive.Discard()
			return err
		}
	}
	return archive.Close()
}
