package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/tunesync/internal/formatter"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string    { return p.ok.Render(s) }
func (p *Palette) Err(s string) string   { return p.err.Render(s) }
func (p *Palette) Warn(s string) string  { return p.warn.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }

// Styles returns the default palette.
func Styles() *Palette {
	return styles
}

// RenderSummary renders the counters of a report followed by every row that was not a success.
func RenderSummary(report formatter.Report) string {
	var b strings.Builder

	b.WriteString(styles.Title(report.Title))
	b.WriteString("\n")
	for _, s := range report.Summary {
		fmt.Fprintf(&b, "%-18s %d\n", s.Label+":", s.Value)
	}

	var problems []formatter.Row
	for _, row := range report.Rows {
		switch row.Outcome {
		case "skipped", "not_found":
			problems = append(problems, row)
		}
	}
	if len(problems) == 0 {
		b.WriteString("\n" + styles.OK("✓ Done"))
		return b.String()
	}

	b.WriteString("\n" + styles.Warn(fmt.Sprintf("%d not handled:", len(problems))))
	for _, row := range problems {
		line := fmt.Sprintf("\n  • %s", row.Source)
		if row.Detail != "" {
			line += styles.Help(" (" + row.Detail + ")")
		}
		b.WriteString(line)
	}
	return b.String()
}
