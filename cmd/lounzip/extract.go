// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"

	"github.com/lemon4ksan/lounzip/internal/console"
	"github.com/lemon4ksan/lounzip/internal/extract"
)

func (a *app) extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "e [-y] [-o dir] archive.zip...",
		Aliases: []string{"x"},
		Short:   "extract an zip archive",
		Args:    requireArchive,
		RunE:    a.runExtract,
	}
	cmd.Flags().BoolP("yes", "y", false, "assume 'yes' on archive extraction")
	cmd.Flags().StringP("output", "o", ".", "output directory for the unarchived contents")
	return cmd
}

func (a *app) runExtract(_ *cobra.Command, archives []string) error {
	prompt := console.New(a.stdin, a.stdout, a.log)
	if !prompt.IsTerminal() {
		a.log.Debug("standard input is not a terminal, password prompts will fail")
	}

	x := extract.New(a.fs, prompt,
		extract.WithOutput(a.stdout),
		extract.WithLogger(a.log),
		extract.WithAssumeYes(a.cfg.AssumeYes),
		extract.WithOKMark(SuccessStyle.Render("[ok]")),
	)

	for _, archive := range archives {
		outcome, err := x.Extract(archive, a.cfg.Output)
		if err != nil {
			return fail(err)
		}
		a.log.Debug("extracted",
			"archive", archive,
			"files", outcome.Extracted,
			"dirs", outcome.Directories,
			"skipped", outcome.Skipped,
		)
		if outcome.Exited {
			return nil
		}
	}
	return nil
}

// requireArchive rejects a command line without an archive.
func requireArchive(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return failf("no zip file archive was provided.")
	}
	return nil
}
