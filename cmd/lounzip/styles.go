// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Color palette shared by help output, progress marks and diagnostics.
const (
	ColorPrimary = lipgloss.Color("#7C3AED")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorSuccess = lipgloss.Color("#10B981")
	ColorError   = lipgloss.Color("#EF4444")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle is for the program name in the help text.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for help section headings.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for the mark printed after each extracted file.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)
)

// logStyles labels log levels the way the diagnostics read: "error:",
// "warn:" and so on.
func logStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("debug:").
		Foreground(ColorVerbose)
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("info:")
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("warn:").
		Foreground(ColorWarning)
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("error:").
		Bold(true).
		Foreground(ColorError)
	return styles
}
