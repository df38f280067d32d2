// Package components renders the building blocks of the terminal reports.
package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyforge/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a [0,1] fraction.
type ProgressBar struct {
	Label       string
	LabelWidth  int // pad labels to this width so bars line up
	Fraction    float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, fraction float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Fraction:    fraction,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// Filled returns how many of barWidth cells are filled.
func (p ProgressBar) Filled(barWidth int) int {
	f := p.Fraction
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return int(float64(barWidth) * f)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var b strings.Builder

	if p.Label != "" {
		label := lipgloss.NewStyle().Foreground(theme.Text).Width(p.LabelWidth).Render(p.Label)
		b.WriteString(label + "  ")
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 7 // "  100.0%" minus the leading space
	}

	barWidth := p.Width - lipgloss.Width(b.String()) - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := p.Filled(barWidth)
	b.WriteString(theme.ProgressFilled.Render(strings.Repeat(" ", filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)))

	if p.ShowPercent {
		b.WriteString(theme.Label.Render(fmt.Sprintf("  %.1f%%", p.Fraction*100)))
	}
	return b.String()
}
