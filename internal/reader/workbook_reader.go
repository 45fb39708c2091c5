package reader

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/locvowork/idpel_checker/internal/domain"
	"github.com/locvowork/idpel_checker/internal/logger"
	"github.com/locvowork/idpel_checker/pkg/dataflow"
)

// GroupField is the field naming the sheet a record was read from.
const GroupField = "SHEET"

// keyColumnFallback is the zero-based index of column C, where the customer
// id sits in the standard export when its header is missing.
const keyColumnFallback = 2

// minKeyDigits is how many digits a cell needs to be taken for a customer id.
const minKeyDigits = 10

// WorkbookReader turns xlsx snapshots into record groups.
type WorkbookReader struct {
	keyField string
}

// NewWorkbookReader creates a reader that emits keyField on grouped records.
func NewWorkbookReader(keyField string) *WorkbookReader {
	if keyField == "" {
		keyField = "IDPEL"
	}
	return &WorkbookReader{keyField: keyField}
}

var _ domain.SnapshotReader = (*WorkbookReader)(nil)

// ============================================================================
// Single sheet
// ============================================================================

// ReadSingle reads the first sheet of the workbook. The first row is the
// header; every following non-blank row becomes a record holding its
// non-empty cells as strings.
func (r *WorkbookReader) ReadSingle(ctx context.Context, src io.Reader) (domain.RecordGroup, error) {
	f, err := open(src)
	if err != nil {
		return domain.RecordGroup{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.RecordGroup{}, &domain.ValidationError{Reason: "workbook has no sheets"}
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.RecordGroup{}, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}

	group := domain.RecordGroup{Name: sheet}
	if len(rows) == 0 {
		return group, nil
	}
	group.Headers = headerNames(rows[0])

	for i, row := range rows[1:] {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.RecordGroup{}, err
			}
		}
		rec, ok := rowRecord(group.Headers, row)
		if !ok {
			continue
		}
		group.Records = append(group.Records, rec)
	}

	logger.DebugLog(ctx, "read sheet %q: %d records, %d columns", sheet, group.Len(), len(group.Headers))
	return group, nil
}

// headerNames trims header cells, names blank ones after their column letter
// and suffixes duplicates with _1, _2, ...
func headerNames(row []string) []string {
	used := make(map[string]int, len(row))
	names := make([]string, len(row))
	for i, cell := range row {
		name := strings.TrimSpace(cell)
		if name == "" {
			name, _ = excelize.ColumnNumberToName(i + 1)
		}
		if n, dup := used[name]; dup {
			used[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		used[name] = 0
		names[i] = name
	}
	return names
}

// rowRecord maps the non-empty cells of row onto headers; ok is false for blank rows.
func rowRecord(headers, row []string) (domain.Record, bool) {
	rec := domain.Record{Values: make(map[string]interface{})}
	for i, cell := range row {
		if i >= len(headers) || strings.TrimSpace(cell) == "" {
			continue
		}
		rec.Fields = append(rec.Fields, headers[i])
		rec.Values[headers[i]] = cell
	}
	return rec, len(rec.Fields) > 0
}

// ============================================================================
// Target sheets
// ============================================================================

// ReadGroups reads the target sheets present in the workbook. Each record
// carries only the key field and the sheet name; rows where no key can be
// located are skipped. Targets absent from the workbook are absent from the map.
func (r *WorkbookReader) ReadGroups(ctx context.Context, src io.Reader, targets []string) (map[string]domain.RecordGroup, error) {
	if len(targets) == 0 {
		return nil, &domain.ValidationError{Field: "targets", Reason: "no target sheets configured"}
	}

	f, err := open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	present := make(map[string]bool)
	for _, s := range f.GetSheetList() {
		present[s] = true
	}

	groups := make(map[string]domain.RecordGroup, len(targets))
	for _, name := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !present[name] {
			logger.DebugLog(ctx, "target sheet %q not in workbook", name)
			continue
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", name, err)
		}
		groups[name] = r.keyGroup(name, rows)
		logger.DebugLog(ctx, "read sheet %q: %d keyed records", name, groups[name].Len())
	}
	return groups, nil
}

func (r *WorkbookReader) keyGroup(name string, rows [][]string) domain.RecordGroup {
	group := domain.RecordGroup{
		Name:    name,
		Headers: []string{r.keyField, GroupField},
	}
	if len(rows) == 0 {
		return group
	}

	keyCol := findColumn(rows[0], r.keyField)
	for _, row := range rows[1:] {
		key := locateKey(row, keyCol)
		if key == "" {
			continue
		}
		group.Records = append(group.Records, domain.NewRecord(r.keyField, key, GroupField, name))
	}
	return group
}

// findColumn returns the index of the header equal to field ignoring case
// and spaces, or -1.
func findColumn(header []string, field string) int {
	want := squash(field)
	for i, h := range header {
		if squash(h) == want {
			return i
		}
	}
	return -1
}

// locateKey finds the key of a data row: the key column when the header
// names one and the cell is filled, else column C, else the first cell with
// enough digits.
func locateKey(row []string, keyCol int) string {
	if v := cellAt(row, keyCol); v != "" {
		return v
	}
	if v := cellAt(row, keyColumnFallback); v != "" {
		return v
	}
	for _, cell := range row {
		v := strings.TrimSpace(cell)
		if countDigits(v) >= minKeyDigits {
			return v
		}
	}
	return ""
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func countDigits(s string) int {
	n := 0
	for _, c := range s {
		if unicode.IsDigit(c) {
			n++
		}
	}
	return n
}

func squash(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// ============================================================================
// Pairs
// ============================================================================

type readFunc func(ctx context.Context, src io.Reader) (interface{}, error)

type pairJob struct {
	side string
	src  io.Reader
}

type pairResult struct {
	side  string
	value interface{}
}

// ReadSinglePair reads the first sheet of both snapshots concurrently.
func (r *WorkbookReader) ReadSinglePair(ctx context.Context, oldSrc, newSrc io.Reader) (oldGroup, newGroup domain.RecordGroup, err error) {
	oldV, newV, err := readPair(ctx, oldSrc, newSrc, func(ctx context.Context, src io.Reader) (interface{}, error) {
		return r.ReadSingle(ctx, src)
	})
	if err != nil {
		return domain.RecordGroup{}, domain.RecordGroup{}, err
	}
	return oldV.(domain.RecordGroup), newV.(domain.RecordGroup), nil
}

// ReadGroupsPair reads the target sheets of both snapshots concurrently.
func (r *WorkbookReader) ReadGroupsPair(ctx context.Context, oldSrc, newSrc io.Reader, targets []string) (oldGroups, newGroups map[string]domain.RecordGroup, err error) {
	oldV, newV, err := readPair(ctx, oldSrc, newSrc, func(ctx context.Context, src io.Reader) (interface{}, error) {
		return r.ReadGroups(ctx, src, targets)
	})
	if err != nil {
		return nil, nil, err
	}
	return oldV.(map[string]domain.RecordGroup), newV.(map[string]domain.RecordGroup), nil
}

// readPair runs read on both sources in parallel and waits for both.
func readPair(ctx context.Context, oldSrc, newSrc io.Reader, read readFunc) (oldV, newV interface{}, err error) {
	jobs := dataflow.From(ctx, pairJob{side: "old", src: oldSrc}, pairJob{side: "new", src: newSrc})
	results := dataflow.Map(ctx, jobs, func(msg interface{}) (interface{}, error) {
		job := msg.(pairJob)
		v, err := read(ctx, job.src)
		if err != nil {
			return nil, fmt.Errorf("reading %s snapshot: %w", job.side, err)
		}
		return pairResult{side: job.side, value: v}, nil
	}, dataflow.WithWorkers(2))

	err = dataflow.ForEach(ctx, results, func(msg interface{}) error {
		res := msg.(pairResult)
		if res.side == "old" {
			oldV = res.value
		} else {
			newV = res.value
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return oldV, newV, nil
}

// open parses an xlsx stream; any parse failure is a validation problem of the input.
func open(src io.Reader) (*excelize.File, error) {
	if src == nil {
		return nil, &domain.ValidationError{Reason: "no input file"}
	}
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("unreadable workbook: %v", err)}
	}
	return f, nil
}
