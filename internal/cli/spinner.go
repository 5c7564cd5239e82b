// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// spinner.go - Progress spinner shown while waiting on a completion.

package cli

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// stopMsg tells the spinner program to exit.
type stopMsg struct{}

// thinkingModel is a minimal bubbletea model that renders a spinner
// next to a status message until stopped.
type thinkingModel struct {
	spinner spinner.Model
	message string
}

func newThinkingModel(message string) thinkingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	return thinkingModel{spinner: s, message: message}
}

func (m thinkingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m thinkingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m thinkingModel) View() string {
	return m.spinner.View() + " " + DimStyle.Render(m.message)
}

// Thinking runs a spinner in the background. Call the returned stop
// function to clear it. On non-TTY output the spinner is skipped and
// stop is a no-op.
func Thinking(message string) (stop func()) {
	if !IsStdoutTTY() {
		return func() {}
	}

	// The chat loop owns signal handling; the spinner must not
	// install its own.
	prog := tea.NewProgram(
		newThinkingModel(message),
		tea.WithoutSignalHandler(),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = prog.Run()
	}()

	return func() {
		prog.Send(stopMsg{})
		<-done
	}
}
