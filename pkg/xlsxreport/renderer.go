package xlsxreport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Renderer serializes a workbook description to xlsx.
type Renderer interface {
	Render(ctx context.Context, wb *Workbook, w io.Writer) error
}

// ErrNoSections is returned when a workbook has nothing to render.
var ErrNoSections = errors.New("workbook has no sections")

// StyledRenderer renders every section with theme styles, computed column
// widths and a frozen header row on tables.
type StyledRenderer struct {
	theme *Theme
}

// NewStyledRenderer creates a renderer; a nil theme means DefaultTheme().
func NewStyledRenderer(theme *Theme) *StyledRenderer {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &StyledRenderer{theme: theme}
}

// Render builds the whole workbook and writes it to w.
func (r *StyledRenderer) Render(ctx context.Context, wb *Workbook, w io.Writer) error {
	if wb == nil || len(wb.Sections) == 0 {
		return ErrNoSections
	}

	f := excelize.NewFile()
	defer f.Close()

	styles := newStyleCache(f, r.theme)
	names := SheetNames(wb)

	for i, sec := range wb.Sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		sheet := names[i]
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}

		var err error
		switch sec.Kind {
		case SectionKindTable:
			err = r.renderTable(f, styles, sheet, sec.Table)
		case SectionKindSummary:
			err = r.renderSummary(f, styles, sheet, sec.Summary)
		default:
			err = fmt.Errorf("unknown section kind %q", sec.Kind)
		}
		if err != nil {
			return fmt.Errorf("rendering sheet %s: %w", sheet, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing Excel file: %w", err)
	}
	return nil
}

func (r *StyledRenderer) renderTable(f *excelize.File, styles *styleCache, sheet string, t *Table) error {
	if t == nil {
		return errors.New("table section without table")
	}
	if len(t.Headers) == 0 {
		return errors.New("table without headers")
	}

	headerStyle, err := styles.id(StyleHeader)
	if err != nil {
		return err
	}
	newStyle, err := styles.id(StyleNewRow)
	if err != nil {
		return err
	}
	normalStyle, err := styles.id(StyleNormalRow)
	if err != nil {
		return err
	}

	lastCol := len(t.Headers)
	for _, row := range t.Rows {
		if len(row.Values) > lastCol {
			lastCol = len(row.Values)
		}
	}

	// Header
	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := writeStyledRow(f, sheet, 1, header, lastCol, headerStyle); err != nil {
		return err
	}
	if h := styles.height(StyleHeader); h > 0 {
		if err := f.SetRowHeight(sheet, 1, h); err != nil {
			return err
		}
	}

	// Data
	for i, row := range t.Rows {
		rowNum := i + 2
		styleName, styleID := StyleNormalRow, normalStyle
		if row.Class == RowNew {
			styleName, styleID = StyleNewRow, newStyle
		}
		if err := writeStyledRow(f, sheet, rowNum, row.Values, lastCol, styleID); err != nil {
			return err
		}
		if h := styles.height(styleName); h > 0 {
			if err := f.SetRowHeight(sheet, rowNum, h); err != nil {
				return err
			}
		}

		leadStyle := ""
		switch {
		case t.Lead == LeadStatus && row.Class == RowNew:
			leadStyle = StyleStatusNew
		case t.Lead == LeadGroup:
			leadStyle = StyleGroupCell
		}
		if leadStyle != "" {
			id, err := styles.id(leadStyle)
			if err != nil {
				return err
			}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
				return err
			}
		}
	}

	rows := make([][]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = row.Values
	}
	if err := setColumnWidths(f, sheet, ColumnWidths(t.Headers, rows, r.theme.Width)); err != nil {
		return err
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (r *StyledRenderer) renderSummary(f *excelize.File, styles *styleCache, sheet string, rows []SummaryRow) error {
	lastCol := 1
	cells := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells[i] = row.cells()
		if len(cells[i]) > lastCol {
			lastCol = len(cells[i])
		}
	}

	for i, row := range rows {
		rowNum := i + 1
		styleName := StyleSummaryNormal
		switch row.Hint {
		case HintHeader:
			styleName = StyleSummaryHeader
		case HintTotal:
			styleName = StyleSummaryTotal
		}
		styleID, err := styles.id(styleName)
		if err != nil {
			return err
		}
		if err := writeStyledRow(f, sheet, rowNum, cells[i], lastCol, styleID); err != nil {
			return err
		}
		if len(row.Highlight) == 0 {
			continue
		}
		hlID, err := styles.id(StyleSummaryHighlight)
		if err != nil {
			return err
		}
		for idx := range cells[i] {
			if !row.highlighted(idx) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(idx+1, rowNum)
			if err := f.SetCellStyle(sheet, cell, cell, hlID); err != nil {
				return err
			}
		}
	}

	return setColumnWidths(f, sheet, ColumnWidths(nil, cells, r.theme.Width))
}

// writeStyledRow writes values starting at column A and styles the first lastCol cells.
func writeStyledRow(f *excelize.File, sheet string, rowNum int, values []interface{}, lastCol int, styleID int) error {
	start, _ := excelize.CoordinatesToCellName(1, rowNum)
	if len(values) > 0 {
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return fmt.Errorf("setting row %d: %w", rowNum, err)
		}
	}
	if styleID == 0 || lastCol == 0 {
		return nil
	}
	end, _ := excelize.CoordinatesToCellName(lastCol, rowNum)
	if err := f.SetCellStyle(sheet, start, end, styleID); err != nil {
		return fmt.Errorf("styling row %d: %w", rowNum, err)
	}
	return nil
}

func setColumnWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, colName, colName, w); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}
	return nil
}

// =============================================================================
// Sheet names
// =============================================================================

const maxSheetNameLen = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "-", "\\", "-", "/", "-", "?", "-", "*", "-", "[", "(", "]", ")",
)

// SheetNames returns a valid, unique Excel sheet name for every section, in order.
func SheetNames(wb *Workbook) []string {
	used := make(map[string]struct{}, len(wb.Sections))
	names := make([]string, len(wb.Sections))
	for i, sec := range wb.Sections {
		base := sanitizeSheetName(sec.Name)
		name := base
		for n := 2; ; n++ {
			if _, taken := used[strings.ToLower(name)]; !taken {
				break
			}
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncateRunes(base, maxSheetNameLen-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = struct{}{}
		names[i] = name
	}
	return names
}

func sanitizeSheetName(name string) string {
	name = strings.TrimSpace(sheetNameReplacer.Replace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Sheet"
	}
	return truncateRunes(name, maxSheetNameLen)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
