package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/dmx/internal/download"
	"github.com/handiism/dmx/internal/interactive"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 2)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))
)

// Render formats an effect for printing above the prompt. It returns ""
// for effects with nothing to show.
func Render(effect interactive.Effect) string {
	var b strings.Builder

	switch effect.Kind {
	case interactive.EffectNone:
		if effect.Message != "" {
			b.WriteString(dimStyle.Render(effect.Message))
		}

	case interactive.EffectResultsUpdated, interactive.EffectNavigationChanged, interactive.EffectListing:
		if effect.Message != "" {
			b.WriteString(subtitleStyle.Render(effect.Message))
			b.WriteString("\n")
		}
		if len(effect.TopTracks) > 0 {
			b.WriteString(infoStyle.Render("Top tracks:"))
			b.WriteString("\n")
			writeEntries(&b, effect.TopTracks, "t")
			b.WriteString(infoStyle.Render("Albums:"))
			b.WriteString("\n")
		}
		writeEntries(&b, effect.Entries, "")

	case interactive.EffectDownloadStarted:
		for _, item := range effect.Items {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  ♪ %s - %s", item.Subtitle(), item.Title())))
			b.WriteString("\n")
		}
		for _, err := range effect.Errs {
			b.WriteString(errorStyle.Render("✗ " + err.Error()))
			b.WriteString("\n")
		}
		b.WriteString(boxStyle.Render(summary(effect.Tally)))

	case interactive.EffectPreviewStarted, interactive.EffectPreviewToggled, interactive.EffectPreviewStopped:
		b.WriteString(infoStyle.Render("♫ " + effect.Message))

	case interactive.EffectHelp:
		b.WriteString(infoStyle.Render(strings.Join(effect.Lines, "\n")))

	case interactive.EffectStatus:
		b.WriteString(titleStyle.Render("Status"))
		for _, line := range effect.Lines {
			b.WriteString("\n  ")
			b.WriteString(line)
		}

	case interactive.EffectInfo:
		b.WriteString(infoStyle.Render("› " + effect.Message))

	case interactive.EffectQuit:
		b.WriteString(subtitleStyle.Render(effect.Message))

	case interactive.EffectError:
		b.WriteString(errorStyle.Render("✗ " + effect.Message))
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeEntries(b *strings.Builder, entries []interactive.Entry, prefix string) {
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("  %s%2d. %s", prefix, e.Index, e.Label))
		if e.Detail != "" {
			b.WriteString(dimStyle.Render(" (" + e.Detail + ")"))
		}
		b.WriteString("\n")
	}
}

func summary(t interactive.Tally) string {
	title := "✨ Download Complete!"
	if t.Failed > 0 {
		title = "Download finished with errors"
	}
	return fmt.Sprintf("%s\n\nDownloaded: %d\nAlready present: %d\nFailed: %d",
		title, t.Succeeded, t.Skipped, t.Failed)
}

func renderEvent(e download.ProgressEvent) string {
	var style lipgloss.Style
	prefix := "•"
	switch e.Level {
	case download.LevelError:
		style = errorStyle
		prefix = "✗"
	case download.LevelWarning:
		style = warningStyle
		prefix = "!"
	case download.LevelSuccess:
		style = successStyle
		prefix = "✓"
	case download.LevelInfo:
		style = infoStyle
		prefix = "›"
	default:
		style = dimStyle
	}
	return style.Render(prefix + " " + e.Message)
}

func renderBanner(lines []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("♪ dmx"))
	b.WriteString(dimStyle.Render(" - search and download from Deezer"))
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(line))
	}
	return b.String()
}

func progressLine(p interactive.Progress) string {
	if p.Current == "" {
		return fmt.Sprintf("Items: %d/%d", p.Done, p.Total)
	}
	return fmt.Sprintf("Items: %d/%d | %s", p.Done, p.Total, p.Current)
}
