//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-trades/internal/trades"
)

// Key is a grouping dimension.
type Key int

const (
	KeyClientCode Key = iota
	KeyClientName
	KeyInstrument
	KeyInstrumentName
	KeyTradeDate
	KeySide
)

// Column returns the source column the key reads, or "" for an
// unknown key.
func (k Key) Column() string {
	switch k {
	case KeyClientCode:
		return trades.ColClientCode
	case KeyClientName:
		return trades.ColClientName
	case KeyInstrument:
		return trades.ColInstrument
	case KeyInstrumentName:
		return trades.ColInstrumentName
	case KeyTradeDate:
		return trades.ColTradeDate
	case KeySide:
		return trades.ColSide
	default:
		return ""
	}
}

func (k Key) String() string {
	if c := k.Column(); c != "" {
		return c
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// Measure is a computed value of a group.
type Measure int

const (
	// MeasureQuantity sums quantities; absent counts as zero.
	MeasureQuantity Measure = iota
	// MeasureExecutedPrice averages the executed prices present.
	MeasureExecutedPrice
	// MeasureConsideration sums consideration; absent counts as zero.
	MeasureConsideration
	// MeasureWeightedPrice sums price times quantity and derives the
	// weighted average price.
	MeasureWeightedPrice
)

func (m Measure) String() string {
	switch m {
	case MeasureQuantity:
		return trades.ColQuantity
	case MeasureExecutedPrice:
		return trades.ColExecutedPrice
	case MeasureConsideration:
		return trades.ColConsideration
	case MeasureWeightedPrice:
		return "Weighted_Price"
	default:
		return fmt.Sprintf("Measure(%d)", int(m))
	}
}

// sources returns the columns the measure reads.
func (m Measure) sources() []string {
	switch m {
	case MeasureQuantity:
		return []string{trades.ColQuantity}
	case MeasureExecutedPrice:
		return []string{trades.ColExecutedPrice}
	case MeasureConsideration:
		return []string{trades.ColConsideration}
	case MeasureWeightedPrice:
		return []string{trades.ColExecutedPrice, trades.ColQuantity}
	default:
		return nil
	}
}

// Period is the date dimension of a group: a calendar date or the
// Total marker used by summary rows.
type Period struct {
	Date  time.Time
	Total bool
}

// TotalPeriod marks rows that span every date.
var TotalPeriod = Period{Total: true}

// TotalLabel is how TotalPeriod renders.
const TotalLabel = "Total"

// DatePeriod returns the period of a single trade date.
func DatePeriod(d time.Time) Period {
	return Period{Date: trades.Date(d)}
}

func (p Period) String() string {
	if p.Total {
		return TotalLabel
	}
	if p.Date.IsZero() {
		return ""
	}
	return trades.FormatDate(p.Date)
}

// compare orders dates chronologically with Total after every date.
func (p Period) compare(o Period) int {
	switch {
	case p.Total && o.Total:
		return 0
	case p.Total:
		return 1
	case o.Total:
		return -1
	}
	return p.Date.Compare(o.Date)
}

// GroupKey holds the key values of a group. Fields outside the
// grouping keys are left at their zero value.
type GroupKey struct {
	ClientCode     string
	ClientName     string
	Instrument     string
	InstrumentName string
	Period         Period
	Side           trades.Side
}

func keyOf(r trades.Record, keys []Key) GroupKey {
	var g GroupKey
	for _, k := range keys {
		switch k {
		case KeyClientCode:
			g.ClientCode = r.ClientCode
		case KeyClientName:
			g.ClientName = r.ClientName
		case KeyInstrument:
			g.Instrument = r.Instrument
		case KeyInstrumentName:
			g.InstrumentName = r.InstrumentName
		case KeyTradeDate:
			g.Period = DatePeriod(r.TradeDate)
		case KeySide:
			g.Side = r.Side
		}
	}
	return g
}

// Project keeps only the given key fields.
func (g GroupKey) Project(keys []Key) GroupKey {
	var p GroupKey
	for _, k := range keys {
		switch k {
		case KeyClientCode:
			p.ClientCode = g.ClientCode
		case KeyClientName:
			p.ClientName = g.ClientName
		case KeyInstrument:
			p.Instrument = g.Instrument
		case KeyInstrumentName:
			p.InstrumentName = g.InstrumentName
		case KeyTradeDate:
			p.Period = g.Period
		case KeySide:
			p.Side = g.Side
		}
	}
	return p
}

// Value renders one key field for display.
func (g GroupKey) Value(k Key) string {
	switch k {
	case KeyClientCode:
		return g.ClientCode
	case KeyClientName:
		return g.ClientName
	case KeyInstrument:
		return g.Instrument
	case KeyInstrumentName:
		return g.InstrumentName
	case KeyTradeDate:
		return g.Period.String()
	case KeySide:
		return string(g.Side)
	default:
		return ""
	}
}

// Compare orders keys field by field in the order given.
func (g GroupKey) Compare(o GroupKey, keys []Key) int {
	for _, k := range keys {
		var c int
		switch k {
		case KeyTradeDate:
			c = g.Period.compare(o.Period)
		case KeySide:
			c = g.Side.Index() - o.Side.Index()
		default:
			c = strings.Compare(g.Value(k), o.Value(k))
		}
		if c != 0 {
			return c
		}
	}
	return 0
}
