package theme

import (
	"github.com/charmbracelet/lipgloss"

	agendadomain "countdown/internal/modules/agenda/domain"
)

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Peach    = lipgloss.Color("#fab387")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
)

// Tailwind 500 shades, one per agenda color.
var itemColors = map[agendadomain.Color]lipgloss.Color{
	agendadomain.ColorRed:     "#ef4444",
	agendadomain.ColorOrange:  "#f97316",
	agendadomain.ColorAmber:   "#f59e0b",
	agendadomain.ColorYellow:  "#eab308",
	agendadomain.ColorLime:    "#84cc16",
	agendadomain.ColorGreen:   "#22c55e",
	agendadomain.ColorEmerald: "#10b981",
	agendadomain.ColorTeal:    "#14b8a6",
	agendadomain.ColorCyan:    "#06b6d4",
	agendadomain.ColorSky:     "#0ea5e9",
	agendadomain.ColorBlue:    "#3b82f6",
	agendadomain.ColorIndigo:  "#6366f1",
	agendadomain.ColorViolet:  "#8b5cf6",
	agendadomain.ColorPurple:  "#a855f7",
	agendadomain.ColorFuchsia: "#d946ef",
	agendadomain.ColorPink:    "#ec4899",
	agendadomain.ColorRose:    "#f43f5e",
}

// ItemColor resolves an agenda color. ok is false for ColorNone and unknown
// names.
func ItemColor(c agendadomain.Color) (lipgloss.Color, bool) {
	color, ok := itemColors[c]
	return color, ok
}

// Accent picks the color of the running item: red in overtime, else the
// item's own color, else green, turning yellow in the last minute and red
// once time is up.
func Accent(c agendadomain.Color, timeLeftSeconds int, overtime bool) lipgloss.Color {
	if overtime {
		return itemColors[agendadomain.ColorRed]
	}
	if color, ok := ItemColor(c); ok {
		return color
	}
	switch {
	case timeLeftSeconds <= 0:
		return itemColors[agendadomain.ColorRed]
	case timeLeftSeconds <= 60:
		return itemColors[agendadomain.ColorYellow]
	default:
		return itemColors[agendadomain.ColorGreen]
	}
}
