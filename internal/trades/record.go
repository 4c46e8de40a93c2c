//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package trades defines the canonical trade record shape and the
// normalizer that turns raw spreadsheet cells into it.
package trades

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source column names. These are the headers the trade history
// spreadsheet is expected to carry.
const (
	ColClientCode     = "ClntCode"
	ColClientName     = "ClntName"
	ColInstrument     = "Instrument"
	ColInstrumentName = "InstrumentName"
	ColTradeDate      = "TradeDate"
	ColSide           = "BuySell"
	ColQuantity       = "Quantity"
	ColExecutedPrice  = "Executed_Price"
	ColConsideration  = "Consideration"
)

// RequiredColumns lists every column a source table must provide,
// in the order exported tables are written.
var RequiredColumns = []string{
	ColClientCode,
	ColClientName,
	ColInstrument,
	ColInstrumentName,
	ColTradeDate,
	ColSide,
	ColQuantity,
	ColExecutedPrice,
	ColConsideration,
}

// DefaultNumericColumns are the columns cleaned of separators and
// missing-value sentinels before parsing.
var DefaultNumericColumns = []string{ColQuantity, ColExecutedPrice, ColConsideration}

// DateLayout is the canonical rendering of a trade date.
const DateLayout = "2006-01-02"

// Side is the trade direction.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Sides lists the trade directions in presentation order.
var Sides = []Side{Buy, Sell}

// Index returns the position of the side in Sides, or -1.
func (s Side) Index() int {
	switch s {
	case Buy:
		return 0
	case Sell:
		return 1
	default:
		return -1
	}
}

// ParseSide accepts BUY or SELL in any case, surrounded by whitespace.
func ParseSide(s string) (Side, error) {
	switch side := Side(strings.ToUpper(strings.TrimSpace(s))); side {
	case Buy, Sell:
		return side, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadSide, s)
	}
}

// Record is one normalized trade row.
type Record struct {
	ClientCode     string
	ClientName     string
	Instrument     string
	InstrumentName string

	// TradeDate is midnight UTC, or zero when the cell was blank.
	TradeDate time.Time
	Side      Side

	// Absent values have Valid == false. They count as zero in sums
	// and are skipped by means.
	Quantity      decimal.NullDecimal
	ExecutedPrice decimal.NullDecimal
	Consideration decimal.NullDecimal
}

// Date returns the calendar date of t as midnight UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a trade date in DateLayout. A zero date renders
// as the empty string.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
