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
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-trades/internal/logging"
)

// ClientCodeWidth is the canonical width of a client code.
const ClientCodeWidth = 6

// RawTable is an unparsed table as delivered by a source adapter.
type RawTable struct {
	// Source names where the table came from, for error messages.
	Source string
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (r *RawTable) Len() int {
	return len(r.Rows)
}

// Options controls normalization.
type Options struct {
	// NumericColumns are cleaned of thousands separators, whitespace
	// and missing-value sentinels before parsing. Numeric columns not
	// listed here are parsed after trimming only.
	NumericColumns []string
}

// DefaultOptions returns the standard normalization options.
func DefaultOptions() Options {
	return Options{
		NumericColumns: append([]string(nil), DefaultNumericColumns...),
	}
}

// missingSentinels are text renderings of an empty cell.
var missingSentinels = map[string]struct{}{
	"":     {},
	"nan":  {},
	"None": {},
}

// NormalizeClientCode trims a client code and left pads it with zeros
// to ClientCodeWidth, so "51851", " 051851 " and "051851" compare equal.
// Codes already at least that wide are returned trimmed. An empty code
// stays empty.
func NormalizeClientCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || len(code) >= ClientCodeWidth {
		return code
	}
	return strings.Repeat("0", ClientCodeWidth-len(code)) + code
}

// MergeCodes normalizes and de-duplicates client codes, keeping the
// order of first appearance. Empty codes are dropped.
func MergeCodes(defaults []string, extra ...string) []string {
	seen := make(map[string]struct{}, len(defaults)+len(extra))
	merged := make([]string, 0, len(defaults)+len(extra))
	for _, list := range [][]string{defaults, extra} {
		for _, c := range list {
			c = NormalizeClientCode(c)
			if c == "" {
				continue
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged
}

// CleanNumeric parses a numeric cell. Thousands separators and
// whitespace are removed, "nan", "None" and "" become absent, and any
// value that still fails to parse is absent too. It never fails.
func CleanNumeric(s string) decimal.NullDecimal {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Join(strings.Fields(s), "")
	if _, ok := missingSentinels[s]; ok {
		return decimal.NullDecimal{}
	}
	return parseDecimal(s)
}

func parseDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// dateLayouts are tried in order. Slash and dash forms without a year
// prefix are month first, the way spreadsheet exports render them.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-06",
	"1-2-06",
	"01-02-2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
	"Jan 2, 2006",
	"20060102",
}

// excelEpoch is day zero of the 1900 date system as Excel counts it.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseTradeDate parses a trade date cell and discards the time of day.
// A trailing clock time such as "9:30" or "09:30:00 PM" may follow any
// date layout. Excel serial day numbers are accepted as well.
func ParseTradeDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrBadDate)
	}
	if t, ok := parseDateLayouts(s); ok {
		return t, nil
	}
	if day, ok := stripClock(s); ok {
		if t, ok := parseDateLayouts(day); ok {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial < 2958466 {
		days := math.Floor(serial)
		return excelEpoch.AddDate(0, 0, int(days)), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

func parseDateLayouts(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t), true
		}
	}
	return time.Time{}, false
}

// stripClock removes trailing fields that hold a time of day.
func stripClock(s string) (string, bool) {
	fields := strings.Fields(s)
	n := len(fields)
	for n > 1 {
		f := strings.ToUpper(fields[n-1])
		if !strings.Contains(f, ":") && f != "AM" && f != "PM" {
			break
		}
		n--
	}
	if n == len(fields) {
		return s, false
	}
	return strings.Join(fields[:n], " "), true
}

// Normalize converts a raw table into an immutable, date-sorted Table.
// Missing required columns, unparseable trade dates and unknown sides
// fail the whole load with a *LoadError. Unparseable numeric cells
// become absent values. A blank trade date leaves TradeDate zero; such
// rows sort first and group together.
func Normalize(raw *RawTable, opts Options) (*Table, error) {
	if raw == nil || len(raw.Header) == 0 {
		src := ""
		if raw != nil {
			src = raw.Source
		}
		return nil, &LoadError{Source: src, Err: ErrEmptySource}
	}

	index := make(map[string]int, len(raw.Header))
	columns := make([]string, 0, len(raw.Header))
	for i, h := range raw.Header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; dup || h == "" {
			continue
		}
		index[h] = i
		columns = append(columns, h)
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &LoadError{Source: raw.Source, Column: col, Err: ErrMissingColumn}
		}
	}

	cleaned := make(map[string]bool, len(opts.NumericColumns))
	for _, col := range opts.NumericColumns {
		cleaned[col] = true
	}
	numeric := func(row []string, col string) decimal.NullDecimal {
		v := cell(row, index[col])
		if cleaned[col] {
			return CleanNumeric(v)
		}
		return parseDecimal(strings.TrimSpace(v))
	}

	records := make([]Record, 0, len(raw.Rows))
	absent := 0
	for i, row := range raw.Rows {
		if blank(row) {
			continue
		}
		line := i + 2

		var err error
		var date time.Time
		if v := cell(row, index[ColTradeDate]); strings.TrimSpace(v) != "" {
			if date, err = ParseTradeDate(v); err != nil {
				return nil, &LoadError{Source: raw.Source, Row: line, Column: ColTradeDate, Err: err}
			}
		}
		side, err := ParseSide(cell(row, index[ColSide]))
		if err != nil {
			return nil, &LoadError{Source: raw.Source, Row: line, Column: ColSide, Err: err}
		}

		rec := Record{
			ClientCode:     NormalizeClientCode(cell(row, index[ColClientCode])),
			ClientName:     strings.TrimSpace(cell(row, index[ColClientName])),
			Instrument:     strings.TrimSpace(cell(row, index[ColInstrument])),
			InstrumentName: strings.TrimSpace(cell(row, index[ColInstrumentName])),
			TradeDate:      date,
			Side:           side,
			Quantity:       numeric(row, ColQuantity),
			ExecutedPrice:  numeric(row, ColExecutedPrice),
			Consideration:  numeric(row, ColConsideration),
		}
		if !rec.Quantity.Valid || !rec.ExecutedPrice.Valid {
			absent++
		}
		records = append(records, rec)
	}

	t := NewTable(raw.Source, columns, records)

	logging.Debug().
		Str("source", raw.Source).
		Int("rows", t.Len()).
		Int("columns", len(columns)).
		Int("rows_with_absent_values", absent).
		Msg("Normalized trade history")

	return t, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
