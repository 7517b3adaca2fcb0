package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/steviee/go-northstar/internal/installer"
)

// ErrCancelled is returned by Run when the user quits before the update ends.
var ErrCancelled = errors.New("update cancelled")

// UpdateFunc runs an update, reporting progress to observe.
type UpdateFunc func(ctx context.Context, observe installer.Observer) (*installer.Result, error)

// Model is the bubbletea model for the update progress view.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	run    UpdateFunc
	msgs   chan tea.Msg

	// launch guards the update goroutine; done closes when it has returned.
	launch *sync.Once
	done   chan struct{}

	started    bool
	phase      installer.EventKind
	release    string
	bytesDone  int64
	bytesTotal int64

	result   *installer.Result
	err      error
	finished bool
	quitting bool
	width    int
}

// NewModel creates a progress model that runs the update when started.
func NewModel(ctx context.Context, run UpdateFunc) Model {
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:    ctx,
		cancel: cancel,
		run:    run,
		msgs:   make(chan tea.Msg, 16),
		launch: &sync.Once{},
		done:   make(chan struct{}),
	}
}

// Init starts the update.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.startUpdateCmd(),
		waitForMsg(m.msgs),
	)
}

// startUpdateCmd runs the update on its own goroutine. Events and the final
// result are forwarded to msgs, which is closed afterwards.
func (m Model) startUpdateCmd() tea.Cmd {
	return func() tea.Msg {
		m.launch.Do(func() {
			go func() {
				defer close(m.done)
				defer close(m.msgs)
				result, err := m.run(m.ctx, forward(m.ctx, m.msgs))
				select {
				case m.msgs <- doneMsg{result: result, err: err}:
				case <-m.ctx.Done():
				}
			}()
		})
		return nil
	}
}

// stop cancels the update and waits for it to return, so its cleanup (such
// as removing a partial download) has run. An update that never started is
// prevented from starting.
func (m Model) stop() {
	m.cancel()
	m.launch.Do(func() {
		close(m.msgs)
		close(m.done)
	})
	<-m.done
}

// forward returns an observer that sends events to msgs until ctx ends.
func forward(ctx context.Context, msgs chan<- tea.Msg) installer.Observer {
	return func(e installer.Event) {
		select {
		case msgs <- eventMsg{event: e}:
		case <-ctx.Done():
		}
	}
}

// waitForMsg returns a command that delivers the next forwarded message.
func waitForMsg(msgs <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-msgs
		if !ok {
			return nil
		}
		return msg
	}
}

// Run shows the progress view while run executes and returns its outcome.
func Run(ctx context.Context, run UpdateFunc, opts ...tea.ProgramOption) (*installer.Result, error) {
	final, err := tea.NewProgram(NewModel(ctx, run), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("run progress view: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	m.stop()

	if m.err != nil {
		return nil, m.err
	}
	if !m.finished {
		return nil, ErrCancelled
	}
	return m.result, nil
}
