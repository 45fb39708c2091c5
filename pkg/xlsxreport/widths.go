package xlsxreport

import (
	"fmt"
	"unicode/utf8"
)

// ColumnWidths sizes each column to its longest header or cell text plus
// padding, clamped to [min, max]. rows may be ragged.
func ColumnWidths(headers []string, rows [][]interface{}, cfg WidthConfig) []float64 {
	n := len(headers)
	for _, r := range rows {
		if len(r) > n {
			n = len(r)
		}
	}

	longest := make([]int, n)
	for i, h := range headers {
		longest[i] = utf8.RuneCountInString(h)
	}
	for _, r := range rows {
		for i, v := range r {
			if l := utf8.RuneCountInString(cellText(v)); l > longest[i] {
				longest[i] = l
			}
		}
	}

	widths := make([]float64, n)
	for i, l := range longest {
		w := float64(l) + cfg.Padding
		if w < cfg.Min {
			w = cfg.Min
		}
		if w > cfg.Max {
			w = cfg.Max
		}
		widths[i] = w
	}
	return widths
}

// cellText is the string a cell value displays as, used for sizing.
func cellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprintf("%v", v)
}
