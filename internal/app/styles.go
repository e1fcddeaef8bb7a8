package app

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var elementColors = map[string]lipgloss.Color{
	"fire-text":  lipgloss.Color("#E4572E"),
	"earth-text": lipgloss.Color("#4E9F3D"),
	"air-text":   lipgloss.Color("#E9C46A"),
	"water-text": lipgloss.Color("#3A86FF"),
}

// palette renders table cells for one output; colour is dropped when out is not a terminal.
type palette struct {
	renderer *lipgloss.Renderer
	header   lipgloss.Style
	cell     lipgloss.Style
	title    lipgloss.Style
}

func newPalette(out io.Writer) palette {
	r := lipgloss.NewRenderer(out)
	return palette{
		renderer: r,
		header:   r.NewStyle().Bold(true).Padding(0, 1),
		cell:     r.NewStyle().Padding(0, 1),
		title:    r.NewStyle().Bold(true).Underline(true),
	}
}

func (p palette) element(class string) lipgloss.Style {
	if color, ok := elementColors[class]; ok {
		return p.cell.Foreground(color)
	}
	return p.cell
}

// table renders rows with the sign column (signCol, -1 for none) coloured by classes[row].
func (p palette) table(out io.Writer, headers []string, rows [][]string, signCol int, classes []string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.renderer.NewStyle()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			if col == signCol && row >= 0 && row < len(classes) {
				return p.element(classes[row])
			}
			return p.cell
		})
	fmt.Fprintln(out, t.Render())
}

func (p palette) heading(out io.Writer, text string) {
	fmt.Fprintln(out, p.title.Render(text))
}

func dms(deg, min, sec uint8) string {
	return fmt.Sprintf("%02d°%02d'%02d\"", deg, min, sec)
}
