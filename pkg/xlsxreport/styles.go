package xlsxreport

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// styleCache creates each named theme style once per file.
type styleCache struct {
	f     *excelize.File
	theme *Theme
	ids   map[string]int
}

func newStyleCache(f *excelize.File, theme *Theme) *styleCache {
	return &styleCache{f: f, theme: theme, ids: make(map[string]int)}
}

// id returns the excelize style id of a theme style, creating it on first use.
// Unknown names map to the default style (0).
func (c *styleCache) id(name string) (int, error) {
	if id, ok := c.ids[name]; ok {
		return id, nil
	}
	tmpl := c.theme.Style(name)
	if tmpl == nil {
		c.ids[name] = 0
		return 0, nil
	}
	id, err := createStyle(c.f, tmpl, c.theme.Font)
	if err != nil {
		return 0, fmt.Errorf("creating style %s: %w", name, err)
	}
	c.ids[name] = id
	return id, nil
}

// height returns the row height of a theme style, 0 when unset.
func (c *styleCache) height(name string) float64 {
	if tmpl := c.theme.Style(name); tmpl != nil {
		return tmpl.Height
	}
	return 0
}

// createStyle converts a StyleTemplate into an excelize style. base supplies
// the font family and size when the template leaves them empty.
func createStyle(f *excelize.File, tmpl *StyleTemplate, base FontTemplate) (int, error) {
	if tmpl == nil {
		return 0, nil
	}

	style := &excelize.Style{
		Font: &excelize.Font{
			Family: base.Name,
			Size:   base.Size,
		},
	}
	if tmpl.Font != nil {
		style.Font.Bold = tmpl.Font.Bold
		style.Font.Color = strings.TrimPrefix(tmpl.Font.Color, "#")
		if tmpl.Font.Name != "" {
			style.Font.Family = tmpl.Font.Name
		}
		if tmpl.Font.Size > 0 {
			style.Font.Size = tmpl.Font.Size
		}
	}
	if tmpl.Fill != nil && tmpl.Fill.Color != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	if tmpl.Alignment != nil {
		style.Alignment = &excelize.Alignment{
			Horizontal: tmpl.Alignment.Horizontal,
			Vertical:   tmpl.Alignment.Vertical,
		}
	}
	if tmpl.Border != nil && tmpl.Border.Color != "" {
		borderColor := strings.TrimPrefix(tmpl.Border.Color, "#")
		style.Border = []excelize.Border{
			{Type: "left", Color: borderColor, Style: 1},
			{Type: "top", Color: borderColor, Style: 1},
			{Type: "bottom", Color: borderColor, Style: 1},
			{Type: "right", Color: borderColor, Style: 1},
		}
	}
	return f.NewStyle(style)
}
