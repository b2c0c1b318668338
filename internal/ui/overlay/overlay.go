// Package overlay draws modal content on top of an already rendered view
// without clearing the screen underneath.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where the foreground is anchored.
type Position int

const (
	Center Position = iota
	Top
	Bottom
)

// Config controls overlay placement.
type Config struct {
	Width    int
	Height   int
	Position Position
	PadY     int // rows between the anchored edge and a Top or Bottom overlay

	// Dim strips the background styling and repaints it muted, so the
	// modal reads as the only interactive surface.
	Dim      bool
	DimColor lipgloss.TerminalColor
}

// Place renders fg on top of bg. Both may contain ANSI sequences. An empty
// background yields fg centered in a blank viewport.
func Place(cfg Config, fg, bg string) string {
	if bg == "" {
		return lipgloss.Place(cfg.Width, cfg.Height, lipgloss.Center, lipgloss.Center, fg)
	}

	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}
	if cfg.Dim {
		bgLines = dim(bgLines, cfg.DimColor)
	}

	x, y := origin(cfg, lipgloss.Width(fg), len(fgLines))
	for i, fgLine := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], fgLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of line starting at column x with fg.
func splice(line, fg string, x int) string {
	left := ansi.Truncate(line, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	var right string
	end := x + ansi.StringWidth(fg)
	if end < ansi.StringWidth(line) {
		right = ansi.TruncateLeft(line, end, "")
	}
	return left + fg + right
}

func dim(lines []string, color lipgloss.TerminalColor) []string {
	style := lipgloss.NewStyle()
	if color != nil {
		style = style.Foreground(color)
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = style.Render(ansi.Strip(l))
	}
	return out
}

func origin(cfg Config, fgWidth, fgHeight int) (x, y int) {
	x = (cfg.Width - fgWidth) / 2
	switch cfg.Position {
	case Top:
		y = cfg.PadY
	case Bottom:
		y = cfg.Height - fgHeight - cfg.PadY
	default:
		y = (cfg.Height - fgHeight) / 2
	}
	return max(x, 0), max(y, 0)
}
