package xlsxreport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// PlainSheetName is the sheet the plain renderer writes to.
const PlainSheetName = "Data"

// PlainRenderer writes only the primary table of a workbook: header and rows,
// no styles, no frozen panes. It is the degraded path when styled rendering fails.
type PlainRenderer struct{}

// NewPlainRenderer creates a PlainRenderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// Render streams the primary table to w.
func (r *PlainRenderer) Render(ctx context.Context, wb *Workbook, w io.Writer) error {
	if wb == nil {
		return ErrNoSections
	}
	sec := wb.Primary()
	if sec == nil || sec.Table == nil {
		return errors.New("workbook has no table to render")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PlainSheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(PlainSheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	header := make([]interface{}, len(sec.Table.Headers))
	for i, h := range sec.Table.Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range sec.Table.Rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row.Values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing stream: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing Excel file: %w", err)
	}
	return nil
}
