// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (a *app) helpCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "h",
		Aliases: []string{"help"},
		Short:   "print this help menu",
		Args:    cobra.ArbitraryArgs,
		Run: func(c *cobra.Command, _ []string) {
			printUsage(c.OutOrStdout())
		},
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "%s - a unzipping program\n\n", TitleStyle.Render("lounzip"))
	fmt.Fprintln(w, SubtitleStyle.Render("Commands:"))
	fmt.Fprintln(w, " (e|x) - extract an zip archive")
	fmt.Fprintln(w, " (l)   - list all files in that zip archive")
	fmt.Fprintln(w, " (r)   - rename a file in that zip archive")
	fmt.Fprintln(w, " (d)   - delete a file from that zip archive")
	fmt.Fprintln(w, " (h)   - print this help menu")
	fmt.Fprintln(w)
	fmt.Fprintln(w, SubtitleStyle.Render("Switches:"))
	fmt.Fprintln(w, " (-y)  - assume 'yes' on archive extraction")
	fmt.Fprintln(w, " (-o)  - output directory for the unarchived contents")
}
