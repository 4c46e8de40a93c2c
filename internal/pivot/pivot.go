//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pivot reshapes aggregated trade groups into tables with one
// row per index tuple and a fixed BUY/SELL column layout.
package pivot

import (
	"fmt"
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-trades/internal/aggregate"
	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/trades"
)

// PriceDecimals is the number of decimal places price columns keep.
const PriceDecimals = 6

// QuantityLabel is the measure label of quantity columns.
const QuantityLabel = "Quantity"

// PriceMeasure selects which aggregate price fills the price columns.
type PriceMeasure int

const (
	// ExecutedPrice uses the mean executed price.
	ExecutedPrice PriceMeasure = iota
	// WeightedAvgPrice uses the quantity weighted average price.
	WeightedAvgPrice
)

// Label returns the column label of the measure.
func (p PriceMeasure) Label() string {
	switch p {
	case ExecutedPrice:
		return "Executed_Price"
	case WeightedAvgPrice:
		return "Weighted_Avg_Price"
	default:
		return fmt.Sprintf("PriceMeasure(%d)", int(p))
	}
}

func (p PriceMeasure) source() (aggregate.Measure, bool) {
	switch p {
	case ExecutedPrice:
		return aggregate.MeasureExecutedPrice, true
	case WeightedAvgPrice:
		return aggregate.MeasureWeightedPrice, true
	default:
		return 0, false
	}
}

func (p PriceMeasure) value(r aggregate.Row) decimal.Decimal {
	if p == WeightedAvgPrice {
		return r.WeightedAvgPrice
	}
	return r.ExecutedPrice
}

// Cell is the (Quantity, price) pair of one side.
type Cell struct {
	Quantity int64
	Price    decimal.Decimal
}

// Row is one output row. Buy and Sell are always present; a side with
// no trades holds zeros.
type Row struct {
	Index []string
	Buy   Cell
	Sell  Cell
}

// Cell returns the cell of the given side.
func (r Row) Cell(side trades.Side) Cell {
	if side == trades.Sell {
		return r.Sell
	}
	return r.Buy
}

// Column names one (measure, side) output column.
type Column struct {
	Measure string
	Side    trades.Side
}

func (c Column) String() string {
	return c.Measure + " " + string(c.Side)
}

// Table is a pivoted view.
type Table struct {
	// Index names the row index levels.
	Index []string
	Price PriceMeasure
	Rows  []Row

	// Truncated is set when a fractional quantity was cut to a whole
	// number.
	Truncated bool
}

// Columns returns the value columns in presentation order: for BUY
// then SELL, quantity then price.
func (t *Table) Columns() []Column {
	cols := make([]Column, 0, 2*len(trades.Sides))
	for _, side := range trades.Sides {
		cols = append(cols,
			Column{Measure: QuantityLabel, Side: side},
			Column{Measure: t.Price.Label(), Side: side},
		)
	}
	return cols
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Totals sums the quantity columns.
func (t *Table) Totals() (buy, sell int64) {
	for _, r := range t.Rows {
		buy += r.Buy.Quantity
		sell += r.Sell.Quantity
	}
	return buy, sell
}

type cellAcc struct {
	quantity decimal.Decimal
	priceSum decimal.Decimal
	prices   int64
}

type rowAcc struct {
	key   aggregate.GroupKey
	cells [2]cellAcc
}

// Pivot re-indexes aggregate rows by the index keys and spreads the
// side dimension into columns. Rows that land in the same cell have
// their quantities summed and their prices averaged. Quantities are
// truncated toward zero to whole numbers and prices rounded to
// PriceDecimals. Empty input yields an empty table.
func Pivot(res *aggregate.Result, index []aggregate.Key, price PriceMeasure) (*Table, error) {
	t := &Table{Price: price, Index: make([]string, len(index))}
	for i, k := range index {
		t.Index[i] = k.String()
	}

	src, ok := price.source()
	if !ok {
		return nil, fmt.Errorf("unknown price measure %d", int(price))
	}
	if res == nil || len(res.Rows) == 0 {
		return t, nil
	}

	if !res.HasKey(aggregate.KeySide) {
		return nil, fmt.Errorf("cannot pivot: rows are not grouped by %s", aggregate.KeySide)
	}
	for _, k := range index {
		if k == aggregate.KeySide {
			return nil, fmt.Errorf("cannot pivot: %s is the column dimension", k)
		}
		if !res.HasKey(k) {
			return nil, fmt.Errorf("cannot pivot: rows are not grouped by %s", k)
		}
	}
	if !res.HasMeasure(src) {
		return nil, fmt.Errorf("cannot pivot: %s was not computed", src)
	}

	groups := make(map[aggregate.GroupKey]*rowAcc)
	for _, r := range res.Rows {
		side := r.Side.Index()
		if side < 0 {
			continue
		}
		pk := r.GroupKey.Project(index)
		acc, ok := groups[pk]
		if !ok {
			acc = &rowAcc{key: pk}
			groups[pk] = acc
		}
		c := &acc.cells[side]
		c.quantity = c.quantity.Add(r.Quantity)
		c.priceSum = c.priceSum.Add(price.value(r))
		c.prices++
	}

	accs := make([]*rowAcc, 0, len(groups))
	for _, acc := range groups {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool {
		return accs[i].key.Compare(accs[j].key, index) < 0
	})

	t.Rows = make([]Row, 0, len(accs))
	for _, acc := range accs {
		row := Row{Index: make([]string, len(index))}
		for i, k := range index {
			row.Index[i] = acc.key.Value(k)
		}
		row.Buy = t.finish(acc.cells[0])
		row.Sell = t.finish(acc.cells[1])
		t.Rows = append(t.Rows, row)
	}

	if t.Truncated {
		logging.Warn().
			Strs("index", t.Index).
			Msg("Fractional quantities were truncated to whole units")
	}

	return t, nil
}

func (t *Table) finish(c cellAcc) Cell {
	q := c.quantity.IntPart()
	if !c.quantity.Equal(decimal.NewFromInt(q)) {
		t.Truncated = true
	}
	price := decimal.Zero
	if c.prices > 0 {
		price = c.priceSum.Div(decimal.NewFromInt(c.prices)).RoundBank(PriceDecimals)
	}
	return Cell{Quantity: q, Price: price}
}

// Header returns the index names followed by the value column labels.
func (t *Table) Header() []string {
	h := slices.Clone(t.Index)
	for _, c := range t.Columns() {
		h = append(h, c.String())
	}
	return h
}
