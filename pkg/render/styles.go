package render

import "github.com/charmbracelet/lipgloss"

var (
	red    = lipgloss.Color("#CF040E")
	yellow = lipgloss.Color("#FAD105")
	green  = lipgloss.Color("#17C81D")
	purple = lipgloss.Color("#DA0ED3")
	wet    = lipgloss.Color("#1277EF")
	subtle = lipgloss.AdaptiveColor{Light: "#9A9C93", Dark: "#6C6C6C"}
)

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	cell      lipgloss.Style
	player    lipgloss.Style
	leader    lipgloss.Style
	safetyCar lipgloss.Style
	green     lipgloss.Style
	rain      lipgloss.Style
	subtle    lipgloss.Style
	border    lipgloss.Border
	doc       lipgloss.Style
}

func colorStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, true, false),
		header:    lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(purple),
		cell:      lipgloss.NewStyle().Padding(0, 1),
		player:    lipgloss.NewStyle().Padding(0, 1).Bold(true),
		leader:    lipgloss.NewStyle().Padding(0, 1).Foreground(green),
		safetyCar: lipgloss.NewStyle().Bold(true).Foreground(yellow),
		green:     lipgloss.NewStyle().Foreground(green),
		rain:      lipgloss.NewStyle().Foreground(wet),
		subtle:    lipgloss.NewStyle().Foreground(subtle),
		border:    lipgloss.RoundedBorder(),
		doc:       lipgloss.NewStyle().Margin(0, 1),
	}
}

// plainStyles avoid colors and box drawing characters
func plainStyles() styles {
	pad := lipgloss.NewStyle().Padding(0, 1)
	return styles{
		title:     lipgloss.NewStyle(),
		header:    pad,
		cell:      pad,
		player:    pad,
		leader:    pad,
		safetyCar: lipgloss.NewStyle(),
		green:     lipgloss.NewStyle(),
		rain:      lipgloss.NewStyle(),
		subtle:    lipgloss.NewStyle(),
		border:    lipgloss.ASCIIBorder(),
		doc:       lipgloss.NewStyle(),
	}
}

var crashStyle = lipgloss.NewStyle().Foreground(red)
