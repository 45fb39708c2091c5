package xlsxreport

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPlainRenderer_WritesPrimaryTableOnly(t *testing.T) {
	wb := NewWorkbook().
		AddSummary("Ringkasan", []SummaryRow{{Label: "Total", Values: []interface{}{2}}}).
		AddTable("Semua", &Table{
			Headers: []string{"IDPEL"},
			Rows:    []TableRow{{Values: []interface{}{"X"}}},
		}, false).
		AddTable("Baru", &Table{
			Headers: []string{"SHEET", "IDPEL"},
			Rows: []TableRow{
				{Values: []interface{}{"DMP", "A3"}, Class: RowNew},
				{Values: []interface{}{"DKP", "B9"}, Class: RowNew},
			},
		}, true)

	var buf bytes.Buffer
	require.NoError(t, NewPlainRenderer().Render(context.Background(), wb, &buf))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PlainSheetName}, f.GetSheetList())

	rows, err := f.GetRows(PlainSheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"SHEET", "IDPEL"},
		{"DMP", "A3"},
		{"DKP", "B9"},
	}, rows)

	panes, err := f.GetPanes(PlainSheetName)
	require.NoError(t, err)
	assert.False(t, panes.Freeze)
}

func TestPlainRenderer_NoTable(t *testing.T) {
	wb := NewWorkbook().AddSummary("Ringkasan", nil)

	var buf bytes.Buffer
	err := NewPlainRenderer().Render(context.Background(), wb, &buf)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
