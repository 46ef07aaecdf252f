// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lemon4ksan/lounzip"
)

type listOptions struct {
	verbose bool
	human   bool
}

func (a *app) listCmd() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "l [--verbose] [--human] archive.zip...",
		Short: "list all files in that zip archive",
		Args:  requireArchive,
		RunE: func(_ *cobra.Command, archives []string) error {
			for _, path := range archives {
				if err := listArchive(a.stdout, path, opts); err != nil {
					return fail(err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "show method, CRC-32 and host system")
	cmd.Flags().BoolVarP(&opts.human, "human", "H", false, "print sizes in human readable units")
	return cmd
}

func listArchive(w io.Writer, path string, opts listOptions) error {
	a, err := lounzip.Open(path)
	if err != nil {
		return err
	}
	defer a.Discard()

	for i := 0; i < a.NumEntries(); i++ {
		info, err := a.Stat(i)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, formatEntry(info, opts))
	}
	return nil
}

func formatEntry(info lounzip.EntryInfo, opts listOptions) string {
	stamp := info.ModTime.Format("2006-01-02 15:04")

	var size string
	switch {
	case info.IsDir():
		size = "directory"
	case opts.human:
		size = humanize.Bytes(uint64(info.Size))
	default:
		size = fmt.Sprintf("%d bytes", info.Size)
	}

	if opts.verbose {
		return fmt.Sprintf("%s %-8s %08x %-9s %s (%s)",
			stamp, info.Method, info.CRC32, info.HostSystem, info.Name, size)
	}
	return fmt.Sprintf("%s %s (%s)", stamp, info.Name, size)
}
