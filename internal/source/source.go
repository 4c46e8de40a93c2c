//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source reads raw trade history from spreadsheets and from the
// PostgreSQL trade store, and writes generated history back out.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/store"
	"github.com/pgEdge/pgedge-trades/internal/trades"
)

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Reader produces an unparsed trade table.
type Reader interface {
	Read(ctx context.Context) (*trades.RawTable, error)
}

// Open returns the reader for a spreadsheet path, chosen by extension.
func Open(path, sheet string) (Reader, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return &XLSXReader{Path: path, Sheet: sheet}, nil
	case ".csv":
		return &CSVReader{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected .xlsx, .xlsm or .csv)", ErrUnsupportedFormat, ext)
	}
}

// Load reads and normalizes a trade table. Every failure is returned
// as a *trades.LoadError.
func Load(ctx context.Context, r Reader, opts trades.Options) (*trades.Table, error) {
	start := time.Now()

	raw, err := r.Read(ctx)
	if err != nil {
		var le *trades.LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, &trades.LoadError{Err: err}
	}

	table, err := trades.Normalize(raw, opts)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("source", raw.Source).
		Int("rows", raw.Len()).
		Int("records", table.Len()).
		Int("columns", len(table.Columns())).
		Dur("elapsed", time.Since(start)).
		Msg("Loaded trade history")

	return table, nil
}

// PostgresReader reads the trade history stored by the import command.
type PostgresReader struct {
	DB store.DB
}

// Read implements Reader.
func (p *PostgresReader) Read(ctx context.Context) (*trades.RawTable, error) {
	raw, err := store.LoadRaw(ctx, p.DB)
	if err != nil {
		return nil, &trades.LoadError{Source: "postgres:" + store.TradeTable, Err: err}
	}
	return raw, nil
}

// WriteFile writes a raw table to path, choosing the format by extension.
func WriteFile(path string, raw *trades.RawTable) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return WriteXLSX(path, raw)
	case ".csv":
		return WriteCSV(path, raw)
	default:
		return fmt.Errorf("%w: %q (expected .xlsx, .xlsm or .csv)", ErrUnsupportedFormat, ext)
	}
}
