// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads lounzip settings. Sources are layered: built-in
// defaults, then the TOML config file, then LOUNZIP_* environment
// variables, then command-line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "lounzip"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "LOUNZIP"
)

// Keys understood by Load. Flags bound through LoadOptions.Flags must use
// the same names with dashes in place of underscores.
const (
	KeyAssumeYes = "assume_yes"
	KeyOutput    = "output"
	KeyLogLevel  = "log_level"
)

// Config holds the effective settings.
type Config struct {
	// AssumeYes answers "all" to every overwrite prompt.
	AssumeYes bool `mapstructure:"assume_yes"`
	// Output is the extraction destination directory.
	Output string `mapstructure:"output"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		AssumeYes: false,
		Output:    ".",
		LogLevel:  "info",
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// ConfigFilePath, when set, is the only file considered and must exist.
	ConfigFilePath string
	// ConfigDirPath overrides the per-user configuration directory.
	ConfigDirPath string
	// Flags maps configuration keys to command-line flags. A flag only
	// overrides lower layers when it was set explicitly.
	Flags map[string]*pflag.Flag
}

// ConfigDir returns the lounzip configuration directory:
// $XDG_CONFIG_HOME/lounzip, defaulting to ~/.config/lounzip.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, AppName), nil
}

// Load resolves the configuration.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyAssumeYes, defaults.AssumeYes)
	v.SetDefault(KeyOutput, defaults.Output)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	resolvedPath, err := readConfigFile(v, opts)
	if err != nil {
		return Config{}, err
	}

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = resolvedPath

	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid %s %q: %w", KeyLogLevel, cfg.LogLevel, err)
	}
	if cfg.Output == "" {
		cfg.Output = defaults.Output
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, opts LoadOptions) (string, error) {
	v.SetConfigType(ConfigFileExt)

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config %s: %w", opts.ConfigFilePath, err)
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			// No home directory: run on defaults.
			return "", nil
		}
		cfgDir = dir
	}

	v.SetConfigName(ConfigFileName)
	v.AddConfigPath(cfgDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config in %s: %w", cfgDir, err)
	}
	return v.ConfigFileUsed(), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
