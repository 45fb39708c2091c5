package xlsxreport

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_theme.yaml
var defaultThemeYAML string

// Style names looked up by the styled renderer.
const (
	StyleHeader           = "header"
	StyleNewRow           = "new_row"
	StyleNormalRow        = "normal_row"
	StyleStatusNew        = "status_new"
	StyleGroupCell        = "group_cell"
	StyleSummaryHeader    = "summary_header"
	StyleSummaryTotal     = "summary_total"
	StyleSummaryHighlight = "summary_highlight"
	StyleSummaryNormal    = "summary_normal"
)

// Theme holds the report styling. It is loaded from YAML.
type Theme struct {
	Font   FontTemplate              `yaml:"font"`
	Width  WidthConfig               `yaml:"width"`
	Styles map[string]*StyleTemplate `yaml:"styles"`
}

// WidthConfig bounds the computed column widths, in characters.
type WidthConfig struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Padding float64 `yaml:"padding"`
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font      *FontTemplate      `yaml:"font"`
	Fill      *FillTemplate      `yaml:"fill"`
	Alignment *AlignmentTemplate `yaml:"alignment"`
	Border    *BorderTemplate    `yaml:"border"`
	Height    float64            `yaml:"height"`
}

type AlignmentTemplate struct {
	Horizontal string `yaml:"horizontal"` // center, left, right
	Vertical   string `yaml:"vertical"`   // top, center, bottom
}

type FontTemplate struct {
	Name  string  `yaml:"name"`
	Size  float64 `yaml:"size"`
	Bold  bool    `yaml:"bold"`
	Color string  `yaml:"color"` // Hex color
}

type FillTemplate struct {
	Color string `yaml:"color"` // Hex color
}

type BorderTemplate struct {
	Color string `yaml:"color"` // Hex color
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() *Theme {
	t, err := ParseTheme([]byte(defaultThemeYAML))
	if err != nil {
		panic(fmt.Sprintf("xlsxreport: embedded theme: %v", err))
	}
	return t
}

// LoadTheme reads a YAML theme file. Settings missing from the file keep their defaults.
func LoadTheme(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme: %w", err)
	}
	return ParseTheme(data)
}

// ParseTheme decodes a YAML theme on top of the built-in one.
func ParseTheme(data []byte) (*Theme, error) {
	t := &Theme{}
	if err := yaml.Unmarshal([]byte(defaultThemeYAML), t); err != nil {
		return nil, fmt.Errorf("decode default theme: %w", err)
	}
	overlay := &Theme{}
	if err := yaml.Unmarshal(data, overlay); err != nil {
		return nil, fmt.Errorf("decode theme: %w", err)
	}
	t.merge(overlay)
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Theme) merge(o *Theme) {
	if o.Font.Name != "" {
		t.Font.Name = o.Font.Name
	}
	if o.Font.Size > 0 {
		t.Font.Size = o.Font.Size
	}
	if o.Width.Min > 0 {
		t.Width.Min = o.Width.Min
	}
	if o.Width.Max > 0 {
		t.Width.Max = o.Width.Max
	}
	if o.Width.Padding > 0 {
		t.Width.Padding = o.Width.Padding
	}
	if t.Styles == nil {
		t.Styles = make(map[string]*StyleTemplate)
	}
	for name, s := range o.Styles {
		t.Styles[name] = s
	}
}

func (t *Theme) validate() error {
	if t.Width.Min <= 0 || t.Width.Max < t.Width.Min {
		return fmt.Errorf("theme: invalid width bounds [%v,%v]", t.Width.Min, t.Width.Max)
	}
	return nil
}

// Style returns the named style, or nil.
func (t *Theme) Style(name string) *StyleTemplate {
	if t == nil || t.Styles == nil {
		return nil
	}
	return t.Styles[name]
}
