package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunesync/internal/tasks"
)

// Work is a long-running operation reporting through a progress channel.
type Work func(progress chan<- tasks.ProgressUpdate) error

// ProgressModel shows the latest [tasks.ProgressUpdate] of a running operation.
type ProgressModel struct {
	title    string
	spinner  spinner.Model
	progress chan tasks.ProgressUpdate
	latest   tasks.ProgressUpdate
	runErr   error
	err      error
	done     bool
}

// NewProgressModel creates a model that runs work once started.
func NewProgressModel(title string) *ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &ProgressModel{title: title, spinner: s}
}

// RunWithProgress runs work behind a progress view and returns its error.
func RunWithProgress(ctx context.Context, title string, work Work, opts ...tea.ProgramOption) error {
	m := NewProgressModel(title)
	m.start(work)

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("progress view failed: %w", err)
	}
	return m.err
}

func (m *ProgressModel) start(work Work) {
	m.progress = make(chan tasks.ProgressUpdate, 64)
	go func() {
		m.runErr = work(m.progress)
		close(m.progress)
	}()
}

func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			return m, tea.Quit
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.latest = msg.data.(tasks.ProgressUpdate)
			return m, m.waitForProgress()
		case MsgRunComplete:
			m.done = true
			if err, ok := msg.data.(error); ok {
				m.err = err
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *ProgressModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progress
		if !ok {
			return runCompleteMsg(m.runErr)
		}
		return progressUpdateMsg(update)
	}
}

func (m *ProgressModel) View() string {
	if m.done {
		return ""
	}

	phase := m.latest.Phase.String()
	if m.latest.Total > 0 {
		phase = fmt.Sprintf("%s (%d/%d)", phase, m.latest.Step, m.latest.Total)
	}
	return fmt.Sprintf("%s\n\n%s %s\n%s\n", styles.Title(m.title), m.spinner.View(), phase, styles.Help(m.latest.Message))
}
