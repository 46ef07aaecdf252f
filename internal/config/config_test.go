// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoadOptions{ConfigDirPath: t.TempDir()})
	require.NoError(t, err)

	assert.False(t, cfg.AssumeYes)
	assert.Equal(t, ".", cfg.Output)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Source)
}

func TestLoad_ConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "assume_yes = true\noutput = \"/srv/out\"\n")

	cfg, err := Load(LoadOptions{ConfigDirPath: dir})
	require.NoError(t, err)

	assert.True(t, cfg.AssumeYes)
	assert.Equal(t, "/srv/out", cfg.Output)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "log_level = \"debug\"\n")

	cfg, err := Load(LoadOptions{ConfigFilePath: path})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = Load(LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.toml")})
	assert.ErrorContains(t, err, "config file not found")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output = \"from-file\"\n")
	t.Setenv("LOUNZIP_OUTPUT", "from-env")
	t.Setenv("LOUNZIP_ASSUME_YES", "true")

	cfg, err := Load(LoadOptions{ConfigDirPath: dir})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output)
	assert.True(t, cfg.AssumeYes)
}

func TestLoad_FlagsOverrideOnlyWhenSet(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output = \"from-file\"\nassume_yes = true\n")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("output", "o", ".", "")
	fs.BoolP("yes", "y", false, "")
	require.NoError(t, fs.Parse([]string{"-o", "from-flag"}))

	cfg, err := Load(LoadOptions{
		ConfigDirPath: dir,
		Flags: map[string]*pflag.Flag{
			KeyOutput:    fs.Lookup("output"),
			KeyAssumeYes: fs.Lookup("yes"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Output)
	assert.True(t, cfg.AssumeYes, "unset flag must not mask the file value")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "log_level = \"chatty\"\n")

	_, err := Load(LoadOptions{ConfigDirPath: dir})
	assert.ErrorContains(t, err, "invalid log_level")
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output = [unterminated\n")

	_, err := Load(LoadOptions{ConfigDirPath: dir})
	assert.Error(t, err)
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), dir)
}
