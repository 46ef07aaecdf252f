// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lemon4ksan/lounzip"
)

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "d archive.zip name...",
		Short: "delete a file from that zip archive",
		Args: func(_ *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return failf("no zip file archive was provided.")
			case 1:
				return failf("file name is required.")
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return fail(a.deleteEntries(args[0], args[1:]))
		},
	}
}

// deleteEntries removes every named entry, reporting each one. When a name
// matches nothing, deletions made for earlier names are still committed.
func (a *app) deleteEntries(path string, names []string) error {
	for _, name := range names {
		if name == "" {
			return errors.New("file path cannot be an empty string.")
		}
	}

	archive, err := lounzip.Open(path)
	if err != nil {
		return err
	}

	var deleted []string
	for _, name := range names {
		matches, err := matchEntries(archive, name)
		if err != nil {
			archive.Discard()
			return err
		}
		if len(matches) == 0 {
			if err := a.commitDeletes(archive, deleted); err != nil {
				return err
			}
			return fmt.Errorf("no archived file was found with name '%s'.", name)
		}
		for _, info := range matches {
			a.log.Debug("delete", "name", info.Name)
			if err := archive.Delete(info.Index); err != nil {
				archive.Discard()
				return err
			}
		}
		deleted = append(deleted, name)
	}
	return a.commitDeletes(archive, deleted)
}

func (a *app) commitDeletes(archive *lounzip.Archive, names []string) error {
	if err := archive.Close(); err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintf(a.stdout, "file '%s' was deleted from the archive.\n", name)
	}
	return nil
}
