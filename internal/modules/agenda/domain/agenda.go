package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	apperrors "countdown/internal/platform/errors"
)

const (
	MinItemMinutes = 1
	MaxItemMinutes = 120
)

var (
	ErrEmptyAgenda  = fmt.Errorf("%w: agenda must contain at least one item", apperrors.ErrInvalidInput)
	ErrItemDuration = fmt.Errorf("%w: item minutes must be between %d and %d", apperrors.ErrInvalidInput, MinItemMinutes, MaxItemMinutes)
	ErrItemTitle    = fmt.Errorf("%w: item title is required", apperrors.ErrInvalidInput)
	ErrUnknownColor = fmt.Errorf("%w: unknown item color", apperrors.ErrInvalidInput)
)

// Color is the closed set of display colors an item may carry. The zero value
// means the view falls back to time-based coloring.
type Color string

const (
	ColorNone    Color = ""
	ColorRed     Color = "red"
	ColorOrange  Color = "orange"
	ColorAmber   Color = "amber"
	ColorYellow  Color = "yellow"
	ColorLime    Color = "lime"
	ColorGreen   Color = "green"
	ColorEmerald Color = "emerald"
	ColorTeal    Color = "teal"
	ColorCyan    Color = "cyan"
	ColorSky     Color = "sky"
	ColorBlue    Color = "blue"
	ColorIndigo  Color = "indigo"
	ColorViolet  Color = "violet"
	ColorPurple  Color = "purple"
	ColorFuchsia Color = "fuchsia"
	ColorPink    Color = "pink"
	ColorRose    Color = "rose"
)

var colors = []Color{
	ColorRed, ColorOrange, ColorAmber, ColorYellow, ColorLime, ColorGreen, ColorEmerald, ColorTeal,
	ColorCyan, ColorSky, ColorBlue, ColorIndigo, ColorViolet, ColorPurple, ColorFuchsia, ColorPink, ColorRose,
}

// Colors lists every named color in display order.
func Colors() []Color {
	return append([]Color(nil), colors...)
}

func ParseColor(raw string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(raw)))
	if err := c.Validate(); err != nil {
		return ColorNone, err
	}
	return c, nil
}

func (c Color) Validate() error {
	if c == ColorNone {
		return nil
	}
	for _, known := range colors {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownColor, string(c))
}

// CueKind names the three notifications the engine emits.
type CueKind string

const (
	CueStart      CueKind = "start"
	CueTransition CueKind = "transition"
	CueEnd        CueKind = "end"
)

type Item struct {
	Title   string `yaml:"title" json:"title"`
	Minutes int    `yaml:"time" json:"time"`
	Color   Color  `yaml:"color,omitempty" json:"color,omitempty"`
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return ErrItemTitle
	}
	if i.Minutes < MinItemMinutes || i.Minutes > MaxItemMinutes {
		return fmt.Errorf("%w: %q has %d", ErrItemDuration, i.Title, i.Minutes)
	}
	return i.Color.Validate()
}

// PlannedSeconds is the planned duration of the item in whole seconds.
func (i Item) PlannedSeconds() int {
	return i.Minutes * 60
}

// Definition is the ordered agenda. Order defines progression.
type Definition []Item

func (d Definition) Validate() error {
	if len(d) == 0 {
		return ErrEmptyAgenda
	}
	for idx, item := range d {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", idx+1, err)
		}
	}
	return nil
}

func (d Definition) TotalMinutes() int {
	total := 0
	for _, item := range d {
		total += item.Minutes
	}
	return total
}

// Clone returns a copy that does not share the backing array.
func (d Definition) Clone() Definition {
	return append(Definition(nil), d...)
}

type Settings struct {
	Title            string             `yaml:"title"`
	Agenda           Definition         `yaml:"agenda"`
	Cues             map[CueKind]string `yaml:"sounds"`
	ActiveTemplateID string             `yaml:"active_template_id,omitempty"`
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: meeting title is required", apperrors.ErrInvalidInput)
	}
	return s.Agenda.Validate()
}

func (s Settings) Equal(other Settings) bool {
	return s.Title == other.Title &&
		s.ActiveTemplateID == other.ActiveTemplateID &&
		slices.Equal(s.Agenda, other.Agenda) &&
		maps.Equal(s.Cues, other.Cues)
}

// CueID resolves the sound selected for kind, or "" when none is selected.
func (s Settings) CueID(kind CueKind) string {
	if s.Cues == nil {
		return ""
	}
	return s.Cues[kind]
}

func DefaultAgenda() Definition {
	return Definition{
		{Title: "Segue", Minutes: 5},
		{Title: "Data", Minutes: 5},
		{Title: "Rocks", Minutes: 5},
		{Title: "Headlines", Minutes: 5},
		{Title: "To-Dos", Minutes: 5},
		{Title: "Issues", Minutes: 60},
		{Title: "Conclude", Minutes: 5},
	}
}

func DefaultCues() map[CueKind]string {
	return map[CueKind]string{
		CueStart:      "meeting-chime",
		CueTransition: "simple-medium",
		CueEnd:        "meeting-chime-2",
	}
}

func DefaultSettings() Settings {
	return Settings{
		Title:  "L10 Meeting Agenda",
		Agenda: DefaultAgenda(),
		Cues:   DefaultCues(),
	}
}

type Template struct {
	ID        string             `yaml:"id"`
	Name      string             `yaml:"name"`
	Title     string             `yaml:"title"`
	Agenda    Definition         `yaml:"agenda"`
	Cues      map[CueKind]string `yaml:"sounds"`
	CreatedAt time.Time          `yaml:"created_at"`
	UpdatedAt time.Time          `yaml:"updated_at"`
}

func (t Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: template id is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: template name is required", apperrors.ErrInvalidInput)
	}
	return t.Agenda.Validate()
}

// IsValidation reports whether err came from agenda validation.
func IsValidation(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidInput)
}
