// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lemon4ksan/lounzip"
	"github.com/lemon4ksan/lounzip/internal/config"
)

// app holds what every command needs: the standard streams, the
// filesystem extraction writes to, the logger and the loaded settings.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	fs     afero.Fs
	log    *log.Logger

	cfgFile string
	debug   bool
	cfg     config.Config
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	logger := log.NewWithOptions(stderr, log.Options{Prefix: config.AppName})
	logger.SetStyles(logStyles())
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		fs:     afero.NewOsFs(),
		log:    logger,
		cfg:    config.DefaultConfig(),
	}
}

// run executes the command line and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := newApp(stdin, stdout, stderr)
	root := a.rootCmd()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var ze *lounzip.Error
	if errors.As(err, &ze) {
		a.log.Debug("archive failure", "detail", ze.Detail())
	}
	a.log.Error(err.Error())

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lounzip <command> [options] archive.zip [args...]",
		Short:         "a unzipping program",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: a.loadConfig,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return failf("no args")
			}
			return failf("an unknown argument was provided.")
		},
	}

	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(flagError)
	root.SetHelpFunc(func(c *cobra.Command, _ []string) {
		printUsage(c.OutOrStdout())
	})

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/lounzip/config.toml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(a.extractCmd())
	root.AddCommand(a.listCmd())
	root.AddCommand(a.renameCmd())
	root.AddCommand(a.deleteCmd())
	root.SetHelpCommand(a.helpCmd())

	return root
}

// loadConfig resolves settings once flags are parsed, so that flags of
// the running command override the config file and environment.
func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	flags := map[string]*pflag.Flag{
		config.KeyAssumeYes: cmd.Flags().Lookup("yes"),
		config.KeyOutput:    cmd.Flags().Lookup("output"),
	}
	cfg, err := config.Load(config.LoadOptions{
		ConfigFilePath: a.cfgFile,
		Flags:          flags,
	})
	if err != nil {
		return fail(err)
	}
	a.cfg = cfg

	level, _ := log.ParseLevel(cfg.LogLevel)
	if a.debug {
		level = log.DebugLevel
	}
	a.log.SetLevel(level)
	if cfg.Source != "" {
		a.log.Debug("loaded config", "path", cfg.Source)
	}
	return nil
}

// flagError maps pflag parse failures onto the tool's messages.
func flagError(_ *cobra.Command, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "needs an argument") &&
		(strings.Contains(msg, "'o'") || strings.Contains(msg, "--output")) {
		return failf("output path is not provided.")
	}
	return failf("an unknown argument was provided.")
}
