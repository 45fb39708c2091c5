package xlsxreport

// =============================================================================
// Workbook description
// =============================================================================

const (
	SectionKindTable   = "table"   // flat table: header row + classified data rows
	SectionKindSummary = "summary" // label/value rows with row-level hints
)

// RowClass is the visual class of a table row.
type RowClass int

const (
	RowNormal RowClass = iota
	RowNew
)

// LeadColumn selects a special style for the first column of a table.
type LeadColumn int

const (
	LeadNone   LeadColumn = iota
	LeadStatus            // status marker; stronger emphasis than the row when the row is new
	LeadGroup             // originating group name
)

// SummaryHint is the row-level style hint of a summary row.
type SummaryHint int

const (
	HintNormal SummaryHint = iota
	HintHeader
	HintTotal
)

// Workbook describes a report: an ordered list of named sections, one sheet each.
type Workbook struct {
	Sections []*Section
}

// Section is either a table or a summary. Exactly one section of a workbook
// should be Primary; it is what the plain renderer serializes.
type Section struct {
	Name    string
	Kind    string
	Primary bool
	Table   *Table
	Summary []SummaryRow
}

// Table is a flat table whose first row is a header.
type Table struct {
	Headers []string
	Rows    []TableRow
	Lead    LeadColumn
}

// TableRow is one data row of a table.
type TableRow struct {
	Values []interface{}
	Class  RowClass
}

// SummaryRow is one label/value row of a summary section.
// Highlight lists cell indexes (0 is the label) that get the highlight style.
type SummaryRow struct {
	Label     string
	Values    []interface{}
	Hint      SummaryHint
	Highlight []int
}

// NewWorkbook creates an empty workbook description.
func NewWorkbook() *Workbook {
	return &Workbook{}
}

// AddTable appends a table section and returns the workbook for chaining.
func (wb *Workbook) AddTable(name string, table *Table, primary bool) *Workbook {
	wb.Sections = append(wb.Sections, &Section{
		Name:    name,
		Kind:    SectionKindTable,
		Primary: primary,
		Table:   table,
	})
	return wb
}

// AddSummary appends a summary section and returns the workbook for chaining.
func (wb *Workbook) AddSummary(name string, rows []SummaryRow) *Workbook {
	wb.Sections = append(wb.Sections, &Section{
		Name:    name,
		Kind:    SectionKindSummary,
		Summary: rows,
	})
	return wb
}

// Primary returns the primary table section, falling back to the first table.
func (wb *Workbook) Primary() *Section {
	var first *Section
	for _, sec := range wb.Sections {
		if sec.Kind != SectionKindTable {
			continue
		}
		if sec.Primary {
			return sec
		}
		if first == nil {
			first = sec
		}
	}
	return first
}

// Section returns the section with the given name, or nil.
func (wb *Workbook) Section(name string) *Section {
	for _, sec := range wb.Sections {
		if sec.Name == name {
			return sec
		}
	}
	return nil
}

// cells returns the row as label followed by values.
func (r SummaryRow) cells() []interface{} {
	out := make([]interface{}, 0, len(r.Values)+1)
	out = append(out, r.Label)
	return append(out, r.Values...)
}

func (r SummaryRow) highlighted(idx int) bool {
	for _, h := range r.Highlight {
		if h == idx {
			return true
		}
	}
	return false
}
