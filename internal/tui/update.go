package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/steviee/go-northstar/internal/installer"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case eventMsg:
		m.applyEvent(msg.event)
		return m, waitForMsg(m.msgs)

	case doneMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		if msg.err != nil {
			slog.Debug("update failed", "error", msg.err)
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyEvent(e installer.Event) {
	m.started = true
	m.phase = e.Kind
	if e.Release != nil {
		m.release = e.Release.Name
		if m.release == "" {
			m.release = e.Release.TagName
		}
	}

	switch e.Kind {
	case installer.EventDownloading:
		m.bytesDone = e.BytesDone
		if e.BytesTotal > 0 {
			m.bytesTotal = e.BytesTotal
		}
	case installer.EventUpdated:
		m.result = e.Result
	}
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if m.finished {
			return m, tea.Quit
		}
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}

	return m, nil
}
