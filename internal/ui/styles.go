package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	if !ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}

// Ayu theme color palette
var (
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}

	// Status colors
	ColorStatusInProgress = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorStatusCompleted = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#aad94c",
	}
	ColorStatusBlocked = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f26d78",
	}

	// Type colors
	ColorTypeBug = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f26d78",
	}
	ColorTypeEpic = lipgloss.AdaptiveColor{
		Light: "#d2a6ff",
		Dark:  "#d2a6ff",
	}
	ColorTypeProject = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
)

// Styles
var (
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	BoldStyle   = lipgloss.NewStyle().Bold(true)

	StatusInProgressStyle = lipgloss.NewStyle().Foreground(ColorStatusInProgress)
	StatusCompletedStyle  = lipgloss.NewStyle().Foreground(ColorStatusCompleted)
	StatusBlockedStyle    = lipgloss.NewStyle().Foreground(ColorStatusBlocked)

	TypeBugStyle     = lipgloss.NewStyle().Foreground(ColorTypeBug)
	TypeEpicStyle    = lipgloss.NewStyle().Foreground(ColorTypeEpic)
	TypeProjectStyle = lipgloss.NewStyle().Foreground(ColorTypeProject).Bold(true)
)

// Status icons
const (
	StatusIconPlanned    = "○"
	StatusIconInProgress = "◐"
	StatusIconBlocked    = "●"
	StatusIconCompleted  = "✓"
)

// RenderStatusIcon returns the icon for a status with coloring.
func RenderStatusIcon(status string) string {
	switch status {
	case "planned":
		return StatusIconPlanned
	case "in-progress":
		return StatusInProgressStyle.Render(StatusIconInProgress)
	case "blocked":
		return StatusBlockedStyle.Render(StatusIconBlocked)
	case "completed":
		return StatusCompletedStyle.Render(StatusIconCompleted)
	default:
		return "?"
	}
}

// RenderStatus renders a status string with coloring.
func RenderStatus(status string) string {
	switch status {
	case "in-progress":
		return StatusInProgressStyle.Render(status)
	case "blocked":
		return StatusBlockedStyle.Render(status)
	case "completed":
		return StatusCompletedStyle.Render(status)
	default:
		return status
	}
}

// RenderType renders a work item type with coloring.
func RenderType(itemType string) string {
	switch itemType {
	case "Bug":
		return TypeBugStyle.Render(itemType)
	case "Epic":
		return TypeEpicStyle.Render(itemType)
	case "Project":
		return TypeProjectStyle.Render(itemType)
	default:
		return itemType
	}
}

// RenderProgressBar renders a fixed-width percentage bar.
func RenderProgressBar(percentage, width int) string {
	if width <= 0 {
		width = 10
	}
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	filled := percentage * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	label := fmt.Sprintf("%s %3d%%", bar, percentage)
	if percentage == 100 {
		return StatusCompletedStyle.Render(label)
	}
	return AccentStyle.Render(label)
}

// RenderID renders a work item ID (standard text).
func RenderID(id string) string {
	return id
}

// RenderMuted renders text in muted gray.
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderBold renders text in bold.
func RenderBold(s string) string {
	return BoldStyle.Render(s)
}

// RenderAccent renders text with accent color.
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderDeletedLine renders an entire line in the dimmed style.
func RenderDeletedLine(line string) string {
	return MutedStyle.Render(line)
}
