package tui

import (
	"fmt"
	"strings"

	"github.com/steviee/go-northstar/internal/installer"
)

const barWidth = 30

// View renders the TUI
func (m Model) View() string {
	if m.quitting && !m.finished {
		return "Update cancelled.\n"
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render("go-northstar update"))
	b.WriteString("\n\n")

	if m.release != "" {
		b.WriteString(labelStyle.Render("Release: "))
		b.WriteString(m.release)
		b.WriteString("\n")
	}

	switch {
	case m.finished && m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", m.err)))
		b.WriteString("\n")
		return b.String()
	case m.finished && m.result != nil:
		b.WriteString(m.renderPhases())
		b.WriteString(successStyle.Render(fmt.Sprintf("Installed %d files into %s", len(m.result.Files), m.result.GamePath)))
		b.WriteString("\n")
		return b.String()
	case !m.started:
		b.WriteString("Fetching release information...\n")
	default:
		b.WriteString(m.renderPhases())
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("q: cancel"))
	b.WriteString("\n")

	return b.String()
}

// renderPhases renders the download and extraction lines.
func (m Model) renderPhases() string {
	width := barWidth + 20
	if m.width > 0 && m.width < width {
		width = m.width
	}

	var b strings.Builder
	b.WriteString(renderSeparator(width, "progress"))
	b.WriteString("\n")

	downloaded := m.phase != installer.EventDownloading
	b.WriteString(fmt.Sprintf("%s Download  %s\n", phaseIndicator(downloaded), m.renderDownload()))

	if m.phase >= installer.EventExtracting {
		extracted := m.phase == installer.EventUpdated
		b.WriteString(fmt.Sprintf("%s Extract\n", phaseIndicator(extracted)))
	}

	return b.String()
}

func (m Model) renderDownload() string {
	return renderDownloadBar(m.bytesDone, m.bytesTotal, barWidth)
}
