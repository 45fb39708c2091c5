package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/locvowork/idpel_checker/internal/domain"
	"github.com/locvowork/idpel_checker/internal/logger"
	"github.com/locvowork/idpel_checker/pkg/xlsxreport"
)

// Layout selects how an outcome is laid out in the report workbook.
type Layout string

const (
	LayoutSingleFlat       Layout = "single_flat"
	LayoutStatusColumn     Layout = "status_column"
	LayoutSeparateSheets   Layout = "separate_sheets"
	LayoutMultiGroupBundle Layout = "multi_group_bundle"
	LayoutNewOnly          Layout = "new_only"
)

// Status column markers.
const (
	StatusNewMarker = "BARU"
	StatusOldMarker = "LAMA"
	StatusHeader    = "STATUS"
	GroupHeader     = "SHEET"
)

// Section names used by the layouts.
const (
	SheetData        = "Data"
	SheetAllRecords  = "Semua Data"
	SheetNewRecords  = "Data Baru"
	SheetSummary     = "Ringkasan"
	SheetBundleTitle = "SUMMARY"
	SheetCombinedNew = "SEMUA DATA BARU"
)

// TimestampLayout formats artifact timestamps; colons are not allowed in file names.
const TimestampLayout = "2006-01-02T15-04-05"

// genericToken names artifacts of a layout without a dedicated token.
const genericToken = "result"

// Token is the purpose token used in artifact file names.
func (l Layout) Token() string {
	switch l {
	case LayoutSingleFlat:
		return "highlighted"
	case LayoutStatusColumn:
		return "status"
	case LayoutSeparateSheets, LayoutMultiGroupBundle:
		return "multisheet"
	case LayoutNewOnly:
		return "new_only"
	}
	return genericToken
}

// Valid reports whether l is one of the known layouts.
func (l Layout) Valid() bool {
	switch l {
	case LayoutSingleFlat, LayoutStatusColumn, LayoutSeparateSheets, LayoutMultiGroupBundle, LayoutNewOnly:
		return true
	}
	return false
}

// ParseLayout converts a user supplied name (case and dash insensitive) to a Layout.
func ParseLayout(s string) (Layout, error) {
	l := Layout(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !l.Valid() {
		return "", &domain.ValidationError{Field: "layout", Reason: fmt.Sprintf("unknown layout %q", s)}
	}
	return l, nil
}

// FileName returns the conventional artifact name <token>_<UTC timestamp>.xlsx.
func FileName(token string, at time.Time) string {
	if token == "" {
		token = genericToken
	}
	return fmt.Sprintf("%s_%s.xlsx", token, at.UTC().Format(TimestampLayout))
}

// Artifact is a serialized report ready to be offered for download.
type Artifact struct {
	FileName string
	Data     []byte
	Layout   Layout
	// Degraded is set when the styled renderer failed and the plain fallback produced Data.
	Degraded bool
}

// ReportBuilder turns diff outcomes into xlsx artifacts.
type ReportBuilder struct {
	renderer xlsxreport.Renderer
	fallback xlsxreport.Renderer
	now      func() time.Time
}

// ReportBuilderOption configures a ReportBuilder.
type ReportBuilderOption func(*ReportBuilder)

// WithFallbackRenderer replaces the plain fallback renderer.
func WithFallbackRenderer(r xlsxreport.Renderer) ReportBuilderOption {
	return func(b *ReportBuilder) {
		if r != nil {
			b.fallback = r
		}
	}
}

// WithClock sets the time source used for file names and report dates.
func WithClock(now func() time.Time) ReportBuilderOption {
	return func(b *ReportBuilder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewReportBuilder creates a builder rendering through renderer.
// A nil renderer means a styled renderer with the default theme.
func NewReportBuilder(renderer xlsxreport.Renderer, opts ...ReportBuilderOption) *ReportBuilder {
	if renderer == nil {
		renderer = xlsxreport.NewStyledRenderer(nil)
	}
	b := &ReportBuilder{
		renderer: renderer,
		fallback: xlsxreport.NewPlainRenderer(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build lays out outcome according to layout and serializes it.
// A styled render failure is recovered once through the fallback renderer;
// only when both fail is a *domain.RenderError returned.
func (b *ReportBuilder) Build(ctx context.Context, layout Layout, outcome domain.Outcome) (*Artifact, error) {
	now := b.now()
	wb, err := b.describe(layout, outcome, now)
	if err != nil {
		return nil, err
	}

	art := &Artifact{
		FileName: FileName(layout.Token(), now),
		Layout:   layout,
	}

	var buf bytes.Buffer
	if err := b.renderer.Render(ctx, wb, &buf); err != nil {
		logger.WarnLog(ctx, "styled render of %s failed, using plain fallback: %v", layout, err)
		buf.Reset()
		if ferr := b.fallback.Render(ctx, wb, &buf); ferr != nil {
			logger.ErrorLog(ctx, "plain fallback failed: %v (layout %s)", ferr, layout)
			return nil, &domain.RenderError{Cause: err, FallbackCause: ferr}
		}
		art.Degraded = true
	}
	art.Data = buf.Bytes()

	logger.InfoLog(ctx, "built %s (%d bytes, degraded=%t)", art.FileName, len(art.Data), art.Degraded)
	return art, nil
}

// Describe returns the workbook description of outcome without rendering it.
func (b *ReportBuilder) Describe(layout Layout, outcome domain.Outcome) (*xlsxreport.Workbook, error) {
	return b.describe(layout, outcome, b.now())
}

func (b *ReportBuilder) describe(layout Layout, outcome domain.Outcome, now time.Time) (*xlsxreport.Workbook, error) {
	if domain.IsNilOutcome(outcome) {
		return nil, &domain.ValidationError{Reason: "no diff result to report"}
	}

	switch layout {
	case LayoutSingleFlat, LayoutStatusColumn, LayoutSeparateSheets:
		d, ok := outcome.(*domain.DiffResult)
		if !ok {
			return nil, &domain.ValidationError{Field: "layout", Reason: fmt.Sprintf("layout %s needs a single-group result", layout)}
		}
		switch layout {
		case LayoutSingleFlat:
			return singleFlat(d), nil
		case LayoutStatusColumn:
			return statusColumn(d), nil
		default:
			return separateSheets(d), nil
		}

	case LayoutMultiGroupBundle:
		m, ok := outcome.(*domain.MultiGroupDiffResult)
		if !ok {
			return nil, &domain.ValidationError{Field: "layout", Reason: fmt.Sprintf("layout %s needs a multi-group result", layout)}
		}
		return multiGroupBundle(m, now), nil

	case LayoutNewOnly:
		_, fresh := domain.Totals(outcome)
		if fresh == 0 {
			return nil, &domain.EmptyResultNotice{Message: "no new records to download"}
		}
		if m, ok := outcome.(*domain.MultiGroupDiffResult); ok {
			return xlsxreport.NewWorkbook().AddTable(SheetCombinedNew, combinedNewTable(m), true), nil
		}
		d := outcome.(*domain.DiffResult)
		return xlsxreport.NewWorkbook().AddTable(SheetNewRecords, recordTable(headersOf(d), d.NewData), true), nil
	}

	return nil, &domain.ValidationError{Field: "layout", Reason: fmt.Sprintf("unsupported layout %q", layout)}
}

// ============================================================================
// Layouts
// ============================================================================

func singleFlat(d *domain.DiffResult) *xlsxreport.Workbook {
	return xlsxreport.NewWorkbook().AddTable(SheetData, recordTable(headersOf(d), d.All), true)
}

func statusColumn(d *domain.DiffResult) *xlsxreport.Workbook {
	headers := headersOf(d)
	table := &xlsxreport.Table{
		Headers: append([]string{StatusHeader}, headers...),
		Rows:    make([]xlsxreport.TableRow, 0, len(d.All)),
		Lead:    xlsxreport.LeadStatus,
	}
	for _, rec := range d.All {
		marker := StatusOldMarker
		if rec.IsNew {
			marker = StatusNewMarker
		}
		values := append([]interface{}{marker}, recordValues(headers, rec.Record)...)
		table.Rows = append(table.Rows, xlsxreport.TableRow{Values: values, Class: rowClass(rec.IsNew)})
	}
	return xlsxreport.NewWorkbook().AddTable(SheetData, table, true)
}

func separateSheets(d *domain.DiffResult) *xlsxreport.Workbook {
	headers := headersOf(d)
	return xlsxreport.NewWorkbook().
		AddTable(SheetAllRecords, recordTable(headers, d.All), true).
		AddTable(SheetNewRecords, recordTable(headers, d.NewData), false).
		AddSummary(SheetSummary, []xlsxreport.SummaryRow{
			{Label: "Total Data", Values: []interface{}{d.TotalAll}},
			{Label: "Data Baru", Values: []interface{}{d.TotalNew}, Hint: xlsxreport.HintTotal},
			{Label: "Data Lama", Values: []interface{}{d.TotalOld()}},
			{Label: "Persentase Data Baru", Values: []interface{}{Percentage(d.TotalNew, d.TotalAll)}},
		})
}

func multiGroupBundle(m *domain.MultiGroupDiffResult, now time.Time) *xlsxreport.Workbook {
	rows := []xlsxreport.SummaryRow{
		{Label: "LAPORAN ANALISIS IDPEL MULTI-SHEET", Hint: xlsxreport.HintHeader},
		{Label: "Tanggal Analisis", Values: []interface{}{now.Format("2006-01-02 15:04:05")}},
		{},
		{Label: "RINGKASAN PER SHEET", Hint: xlsxreport.HintHeader},
		{Label: "Sheet", Values: []interface{}{"Total Data", "Data Baru", "Persentase"}},
	}
	for _, name := range m.ProcessedGroups {
		g := m.Group(name)
		row := xlsxreport.SummaryRow{
			Label:  name,
			Values: []interface{}{g.TotalAll, g.TotalNew, Percentage(g.TotalNew, g.TotalAll)},
		}
		if g.TotalNew > 0 {
			row.Highlight = []int{2}
		}
		rows = append(rows, row)
	}
	rows = append(rows,
		xlsxreport.SummaryRow{},
		xlsxreport.SummaryRow{Label: "TOTAL KESELURUHAN", Hint: xlsxreport.HintHeader},
		xlsxreport.SummaryRow{Label: "Total Data Diproses", Values: []interface{}{m.TotalProcessedAll}},
		xlsxreport.SummaryRow{Label: "Total Data Baru", Values: []interface{}{m.TotalNewAll}, Hint: xlsxreport.HintTotal},
	)

	wb := xlsxreport.NewWorkbook().AddSummary(SheetBundleTitle, rows)
	for _, name := range m.ProcessedGroups {
		g := m.Group(name)
		if g.TotalNew == 0 {
			continue
		}
		wb.AddTable(name+" BARU", recordTable(headersOf(&g.DiffResult), g.NewData), false)
	}
	return wb.AddTable(SheetCombinedNew, combinedNewTable(m), true)
}

// combinedNewTable lists every new record of the processed groups in target
// order, each row led by its group name.
func combinedNewTable(m *domain.MultiGroupDiffResult) *xlsxreport.Table {
	var fields []string
	seen := map[string]bool{GroupHeader: true}
	for _, name := range m.ProcessedGroups {
		for _, h := range headersOf(&m.Group(name).DiffResult) {
			if !seen[h] {
				seen[h] = true
				fields = append(fields, h)
			}
		}
	}

	table := &xlsxreport.Table{
		Headers: append([]string{GroupHeader}, fields...),
		Lead:    xlsxreport.LeadGroup,
	}
	for _, name := range m.ProcessedGroups {
		for _, rec := range m.Group(name).NewData {
			values := append([]interface{}{name}, recordValues(fields, rec.Record)...)
			table.Rows = append(table.Rows, xlsxreport.TableRow{Values: values, Class: xlsxreport.RowNew})
		}
	}
	return table
}

// ============================================================================
// Helpers
// ============================================================================

// Percentage formats part/total with two decimals; a zero total is "0%".
func Percentage(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(total)*100)
}

func headersOf(d *domain.DiffResult) []string {
	if len(d.Headers) > 0 {
		return d.Headers
	}
	if d.KeyField != "" {
		return []string{d.KeyField}
	}
	return []string{DefaultKeyField}
}

func recordTable(headers []string, records []domain.AnnotatedRecord) *xlsxreport.Table {
	table := &xlsxreport.Table{
		Headers: headers,
		Rows:    make([]xlsxreport.TableRow, 0, len(records)),
	}
	for _, rec := range records {
		table.Rows = append(table.Rows, xlsxreport.TableRow{
			Values: recordValues(headers, rec.Record),
			Class:  rowClass(rec.IsNew),
		})
	}
	return table
}

// recordValues projects r onto headers; absent fields become empty cells.
func recordValues(headers []string, r domain.Record) []interface{} {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = r.Values[h]
	}
	return values
}

func rowClass(isNew bool) xlsxreport.RowClass {
	if isNew {
		return xlsxreport.RowNew
	}
	return xlsxreport.RowNormal
}
