// Copyright (c) 2025 Neomantra Corp

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorDarkPurple  = lipgloss.Color("#3F3080")
	colorLightPurple = lipgloss.Color("#655BA7")
	colorRed         = lipgloss.Color("#E24F36")
	colorGrue        = lipgloss.Color("#4495AA")
	colorGreen       = lipgloss.Color("#7BAA7D")
	colorYellow      = lipgloss.Color("#FBF4A5")
	colorWhite       = lipgloss.Color("#FFFFFF")

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true).
			BorderForeground(colorLightPurple)

	classStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	memberStyle  = lipgloss.NewStyle().Foreground(colorGrue)
	scalarStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorDarkPurple)
	collapsedArrow = "▶"
	expandedArrow  = "▼"
)
