package social

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim      = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorPositive = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorNegative = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#F25D94"}
	colorNeutral  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
)

// styles are bound to the output writer so colour is dropped when it is
// not a terminal
type styles struct {
	section  lipgloss.Style
	rule     lipgloss.Style
	label    lipgloss.Style
	notice   lipgloss.Style
	bullet   lipgloss.Style
	positive lipgloss.Style
	negative lipgloss.Style
	neutral  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		section:  r.NewStyle().Bold(true).Foreground(colorAccent),
		rule:     r.NewStyle().Foreground(colorDim),
		label:    r.NewStyle().Bold(true),
		notice:   r.NewStyle().Foreground(colorDim).Italic(true),
		bullet:   r.NewStyle().Foreground(colorAccent),
		positive: r.NewStyle().Bold(true).Foreground(colorPositive),
		negative: r.NewStyle().Bold(true).Foreground(colorNegative),
		neutral:  r.NewStyle().Bold(true).Foreground(colorNeutral),
	}
}

func (s styles) sentiment(label string) lipgloss.Style {
	switch label {
	case "positive":
		return s.positive
	case "negative":
		return s.negative
	default:
		return s.neutral
	}
}
