package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pgEdge/pgedge-trades/internal/trades"
)

// CSVReader reads a comma separated export.
type CSVReader struct {
	Path string
}

// Read implements Reader.
func (c *CSVReader) Read(ctx context.Context) (*trades.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return nil, &trades.LoadError{Source: c.Path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &trades.LoadError{Source: c.Path, Err: trades.ErrEmptySource}
	}
	if err != nil {
		return nil, &trades.LoadError{Source: c.Path, Err: err}
	}

	raw := &trades.RawTable{Source: c.Path, Header: header}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &trades.LoadError{Source: c.Path, Row: pe.Line, Err: err}
			}
			return nil, &trades.LoadError{Source: c.Path, Err: err}
		}
		raw.Rows = append(raw.Rows, row)
	}
	return raw, nil
}

// WriteCSV writes a raw table as CSV.
func WriteCSV(path string, raw *trades.RawTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(raw.Header); err != nil {
		f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(raw.Rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return f.Close()
}
