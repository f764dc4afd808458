package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunesync/internal/matching"
	"github.com/desertthunder/tunesync/internal/models"
)

var _ matching.Confirmer = (*Picker)(nil)

// Picker asks the user to confirm a candidate in a full-screen list.
type Picker struct {
	input  io.Reader
	output io.Writer
}

// NewPicker creates a [Picker] on the given terminal streams; nil keeps bubbletea's defaults.
func NewPicker(input io.Reader, output io.Writer) *Picker {
	return &Picker{input: input, output: output}
}

// Confirm shows the candidates and blocks until the user picks, skips or switches to auto-first.
// ctrl+c returns [context.Canceled].
func (p *Picker) Confirm(ctx context.Context, query models.TrackQuery, candidates []models.RemoteTrackCandidate) (matching.Choice, error) {
	if len(candidates) == 0 {
		return matching.Choice{Kind: matching.SkipTrack}, nil
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.input != nil {
		opts = append(opts, tea.WithInput(p.input))
	}
	if p.output != nil {
		opts = append(opts, tea.WithOutput(p.output))
	}

	final, err := tea.NewProgram(newPickerModel(query, candidates), opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return matching.Choice{Kind: matching.SkipTrack}, ctxErr
		}
		return matching.Choice{Kind: matching.SkipTrack}, fmt.Errorf("candidate picker failed: %w", err)
	}

	m, ok := final.(*pickerModel)
	if !ok {
		return matching.Choice{Kind: matching.SkipTrack}, nil
	}
	return m.result()
}

// pickerModel is the bubbletea model behind [Picker].
type pickerModel struct {
	query  models.TrackQuery
	list   list.Model
	keys   keyMap
	help   help.Model
	choice matching.Choice
	done   bool
	stop   bool
}

func newPickerModel(query models.TrackQuery, candidates []models.RemoteTrackCandidate) *pickerModel {
	l := list.New(candidateItems(candidates), list.NewDefaultDelegate(), 80, 20)
	l.Title = fmt.Sprintf("Matches for %s", query.Label())
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return &pickerModel{
		query:  query,
		list:   l,
		keys:   newKeyMap(),
		help:   help.New(),
		choice: matching.Choice{Kind: matching.SkipTrack},
	}
}

func (m *pickerModel) Init() tea.Cmd {
	return nil
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.pick):
			return m.finish(matching.Choice{Kind: matching.Pick, Index: m.list.Index()})
		case key.Matches(msg, m.keys.skip), key.Matches(msg, m.keys.quit):
			return m.finish(matching.Choice{Kind: matching.SkipTrack})
		case key.Matches(msg, m.keys.auto):
			return m.finish(matching.Choice{Kind: matching.AutoFirst})
		case key.Matches(msg, m.keys.stop):
			m.stop = true
			return m.finish(matching.Choice{Kind: matching.SkipTrack})
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *pickerModel) finish(choice matching.Choice) (tea.Model, tea.Cmd) {
	m.choice = choice
	m.done = true
	return m, tea.Quit
}

func (m *pickerModel) result() (matching.Choice, error) {
	switch {
	case m.stop:
		return matching.Choice{Kind: matching.SkipTrack}, context.Canceled
	case !m.done:
		return matching.Choice{Kind: matching.SkipTrack}, nil
	default:
		return m.choice, nil
	}
}

func (m *pickerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s\n\n%s", m.list.View(), m.help.ShortHelpView(m.keys.ShortHelp()))
}
