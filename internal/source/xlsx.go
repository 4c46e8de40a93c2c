package source

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pgEdge/pgedge-trades/internal/trades"
)

// DefaultSheet is the sheet written by WriteXLSX.
const DefaultSheet = "Trades"

// XLSXReader reads one worksheet of an Excel workbook. An empty Sheet
// selects the first worksheet.
type XLSXReader struct {
	Path  string
	Sheet string
}

// Read implements Reader. Cells are read unformatted, so dates arrive
// as serial day numbers or as the text that was typed.
func (x *XLSXReader) Read(ctx context.Context) (*trades.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(x.Path)
	if err != nil {
		return nil, &trades.LoadError{Source: x.Path, Err: err}
	}
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &trades.LoadError{Source: x.Path, Err: trades.ErrEmptySource}
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &trades.LoadError{Source: x.Path, Err: fmt.Errorf("sheet %q not found", sheet)}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &trades.LoadError{Source: x.Path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &trades.LoadError{Source: x.Path, Err: trades.ErrEmptySource}
	}

	return &trades.RawTable{
		Source: x.Path,
		Header: rows[0],
		Rows:   rows[1:],
	}, nil
}

// WriteXLSX writes a raw table to a new workbook with a single sheet.
func WriteXLSX(path string, raw *trades.RawTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DefaultSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeRow(f, 1, raw.Header); err != nil {
		return err
	}
	for i, row := range raw.Rows {
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, line int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(DefaultSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", line, err)
	}
	return nil
}
