// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"context"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f6be00"))
	messageStyle = lipgloss.NewStyle().Faint(true)
)

// doneMsg tells the model the work has finished.
type doneMsg struct{}

type model struct {
	spinner spinner.Model
	message string
	done    bool
}

func newModel(message string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return model{spinner: s, message: message}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + messageStyle.Render(m.message)
}

// Enabled reports whether a spinner should be drawn on f. It never is when
// disabled is set or f is not a terminal.
func Enabled(disabled bool, f *os.File) bool {
	if disabled || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Run calls fn, drawing a spinner with message on w while it works when
// enabled is true. fn's result is returned unchanged.
func Run[T any](ctx context.Context, w io.Writer, enabled bool, message string, fn func(context.Context) (T, error)) (T, error) {
	if !enabled {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(message),
		tea.WithContext(ctx),
		tea.WithOutput(w),
		tea.WithInput(nil),
	)

	type result struct {
		value T
		err   error
	}
	results := make(chan result, 1)

	go func() {
		v, err := fn(ctx)
		results <- result{v, err}
		p.Send(doneMsg{})
	}()

	// An interrupted spinner cancels the work.
	if _, err := p.Run(); err != nil {
		log.WithError(err).Debug("spinner stopped")
		cancel()
	}

	r := <-results
	return r.value, r.err
}
