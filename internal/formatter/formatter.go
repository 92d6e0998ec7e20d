// package formatter renders per-cycle synchronization reports for the CLI
package formatter

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/mpdgen/internal/tasks"
)

var styles = NewPalette("#7D56F4", "#626262", "#04B575", "#FFA500")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title     lipgloss.Style
	unchanged lipgloss.Style
	changed   lipgloss.Style
	created   lipgloss.Style
}

func NewPalette(t, u, c, e string) *Palette {
	return &Palette{
		title:     NewBold(t),
		unchanged: NewStyle(u),
		changed:   NewBold(c),
		created:   NewStyle(e),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

// RenderResult formats one cycle's sync decisions, one line per playlist
// plus a summary line.
func RenderResult(res *tasks.Result) string {
	var buf bytes.Buffer

	buf.WriteString(styles.title.Render(fmt.Sprintf("cycle %s", res.CycleID)))
	buf.WriteString("\n")

	for _, pl := range res.Playlists {
		var line string
		switch pl.Action {
		case tasks.ActionNone:
			line = styles.unchanged.Render(fmt.Sprintf("  %-12s %s (%d tracks)", pl.Action, pl.Name, pl.Tracks))
		case tasks.ActionCreate:
			line = styles.created.Render(fmt.Sprintf("  %-12s %s", pl.Action, pl.Name))
		case tasks.ActionRewrite:
			line = styles.changed.Render(fmt.Sprintf("  %-12s %s (%d tracks)", pl.Action, pl.Name, pl.Tracks))
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}

	buf.WriteString(fmt.Sprintf("%d playlists, %d mutations\n", len(res.Playlists), res.Mutations))
	return buf.String()
}
