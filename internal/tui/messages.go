package tui

import "github.com/steviee/go-northstar/internal/installer"

// eventMsg carries one installer event into the program.
type eventMsg struct {
	event installer.Event
}

// doneMsg is sent once the update returns.
type doneMsg struct {
	result *installer.Result
	err    error
}
