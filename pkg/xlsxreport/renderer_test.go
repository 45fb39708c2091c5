package xlsxreport

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleWorkbook() *Workbook {
	table := &Table{
		Headers: []string{"IDPEL", "NAMA"},
		Rows: []TableRow{
			{Values: []interface{}{"A3", "Budi"}, Class: RowNew},
			{Values: []interface{}{"A1", "Sari"}, Class: RowNormal},
		},
	}
	return NewWorkbook().
		AddTable("Data", table, true).
		AddSummary("Ringkasan", []SummaryRow{
			{Label: "Ringkasan", Hint: HintHeader},
			{Label: "Total Data", Values: []interface{}{2}},
			{Label: "Data Baru", Values: []interface{}{1}, Hint: HintTotal, Highlight: []int{1}},
		})
}

func TestStyledRenderer_WritesAllSections(t *testing.T) {
	var buf bytes.Buffer
	err := NewStyledRenderer(nil).Render(context.Background(), sampleWorkbook(), &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Data", "Ringkasan"}, f.GetSheetList())

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"IDPEL", "NAMA"},
		{"A3", "Budi"},
		{"A1", "Sari"},
	}, rows)

	summary, err := f.GetRows("Ringkasan")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"Data Baru", "1"}, summary[2])
}

func TestStyledRenderer_FreezesHeaderAndStylesRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStyledRenderer(nil).Render(context.Background(), sampleWorkbook(), &buf))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	panes, err := f.GetPanes("Data")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)

	headerStyle, err := f.GetCellStyle("Data", "A1")
	require.NoError(t, err)
	newStyle, err := f.GetCellStyle("Data", "A2")
	require.NoError(t, err)
	normalStyle, err := f.GetCellStyle("Data", "A3")
	require.NoError(t, err)

	assert.NotEqual(t, headerStyle, newStyle)
	assert.NotEqual(t, newStyle, normalStyle)
	assert.NotEqual(t, headerStyle, normalStyle)
}

func TestStyledRenderer_StatusLeadIsEmphasised(t *testing.T) {
	wb := NewWorkbook().AddTable("Data", &Table{
		Headers: []string{"STATUS", "IDPEL"},
		Lead:    LeadStatus,
		Rows: []TableRow{
			{Values: []interface{}{"BARU", "A3"}, Class: RowNew},
			{Values: []interface{}{"LAMA", "A1"}, Class: RowNormal},
		},
	}, true)

	var buf bytes.Buffer
	require.NoError(t, NewStyledRenderer(nil).Render(context.Background(), wb, &buf))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	statusNew, _ := f.GetCellStyle("Data", "A2")
	restNew, _ := f.GetCellStyle("Data", "B2")
	statusOld, _ := f.GetCellStyle("Data", "A3")
	restOld, _ := f.GetCellStyle("Data", "B3")

	assert.NotEqual(t, statusNew, restNew, "status cell of a new row stands out")
	assert.Equal(t, statusOld, restOld, "status cell of an old row matches its row")
}

func TestStyledRenderer_AppliesColumnWidths(t *testing.T) {
	wb := NewWorkbook().AddTable("Data", &Table{
		Headers: []string{"IDPEL", "ALAMAT"},
		Rows: []TableRow{
			{Values: []interface{}{"512345678901", "JL. MERDEKA NO. 10"}},
		},
	}, true)

	var buf bytes.Buffer
	require.NoError(t, NewStyledRenderer(nil).Render(context.Background(), wb, &buf))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	width, err := f.GetColWidth("Data", "A")
	require.NoError(t, err)
	assert.InDelta(t, 15, width, 0.01)

	width, err = f.GetColWidth("Data", "B")
	require.NoError(t, err)
	assert.InDelta(t, 21, width, 0.01)
}

func TestStyledRenderer_EmptyWorkbook(t *testing.T) {
	var buf bytes.Buffer
	err := NewStyledRenderer(nil).Render(context.Background(), NewWorkbook(), &buf)
	assert.ErrorIs(t, err, ErrNoSections)
}

func TestSheetNames(t *testing.T) {
	wb := NewWorkbook().
		AddTable("DMP BARU", &Table{Headers: []string{"IDPEL"}}, false).
		AddTable("dmp baru", &Table{Headers: []string{"IDPEL"}}, false).
		AddTable("a/b:c*d?[e]", &Table{Headers: []string{"IDPEL"}}, false).
		AddTable("", &Table{Headers: []string{"IDPEL"}}, false).
		AddTable("THIS NAME IS MUCH LONGER THAN THIRTY ONE CHARS", &Table{Headers: []string{"IDPEL"}}, false)

	names := SheetNames(wb)
	assert.Equal(t, "DMP BARU", names[0])
	assert.Equal(t, "dmp baru (2)", names[1])
	assert.Equal(t, "a-b-c-d-(e)", names[2])
	assert.Equal(t, "Sheet", names[3])
	assert.Len(t, []rune(names[4]), 31)
}
