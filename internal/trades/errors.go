//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package trades

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn is wrapped by a LoadError when a required column
	// is absent from the source header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrBadDate is wrapped by a LoadError when a trade date cannot be parsed.
	ErrBadDate = errors.New("unparseable trade date")

	// ErrBadSide is wrapped by a LoadError when BuySell is not BUY or SELL.
	ErrBadSide = errors.New("unrecognized side")

	// ErrEmptySource is wrapped by a LoadError when the source has no header.
	ErrEmptySource = errors.New("source has no header row")

	// ErrNoData matches any NoDataError via errors.Is.
	ErrNoData = errors.New("no data for selection")
)

// LoadError reports a structural failure while loading a trade table.
// No partial table is ever returned alongside it.
type LoadError struct {
	Source string
	// Row is the 1-based spreadsheet line (the header is line 1), or 0
	// when the failure is not tied to a row.
	Row    int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("failed to load trade history")
	if e.Source != "" {
		fmt.Fprintf(&b, " from %s", e.Source)
	}
	switch {
	case e.Row > 0 && e.Column != "":
		fmt.Fprintf(&b, " (row %d, column %s)", e.Row, e.Column)
	case e.Row > 0:
		fmt.Fprintf(&b, " (row %d)", e.Row)
	case e.Column != "":
		fmt.Fprintf(&b, " (column %s)", e.Column)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NoDataError is returned when a valid selection matches no trades.
// Callers present it as "no data", not as a failure.
type NoDataError struct {
	Selection string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no trades found for %s", e.Selection)
}

// Is makes errors.Is(err, ErrNoData) true for any NoDataError.
func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// IsNoData reports whether err is, or wraps, a NoDataError.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}
