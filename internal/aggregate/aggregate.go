//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package aggregate groups normalized trades by a key tuple and
// computes quantity sums, price means and weighted average prices.
package aggregate

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/trades"
)

var (
	// ErrMissingKey is wrapped when a grouping key's column is absent.
	ErrMissingKey = errors.New("grouping key column not present")

	// ErrMissingMeasure is wrapped when a measure's column is absent.
	ErrMissingMeasure = errors.New("measure column not present")
)

// AggregationError reports a grouping request the table cannot
// satisfy. No partial result accompanies it.
type AggregationError struct {
	Name string
	Err  error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed on %s: %v", e.Name, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// Row is one group with its measures. WeightedPrice and
// WeightedAvgPrice are only filled when MeasureWeightedPrice was
// requested.
type Row struct {
	GroupKey

	// Trades is the number of records in the group.
	Trades int

	Quantity         decimal.Decimal
	ExecutedPrice    decimal.Decimal
	Consideration    decimal.Decimal
	WeightedPrice    decimal.Decimal
	WeightedAvgPrice decimal.Decimal
}

// Result is an ordered sequence of groups. Callers treat it as
// read-only; it may be shared through the summary cache.
type Result struct {
	Keys     []Key
	Measures []Measure
	Rows     []Row
}

// Instrument identifies an instrument in a result.
type Instrument struct {
	Code string
	Name string
}

// HasKey reports whether rows were grouped by k.
func (r *Result) HasKey(k Key) bool {
	return slices.Contains(r.Keys, k)
}

// HasMeasure reports whether m was computed.
func (r *Result) HasMeasure(m Measure) bool {
	return slices.Contains(r.Measures, m)
}

// Filter returns a result with the rows for which keep is true.
func (r *Result) Filter(keep func(Row) bool) *Result {
	rows := make([]Row, 0)
	for _, row := range r.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return &Result{Keys: r.Keys, Measures: r.Measures, Rows: rows}
}

// Instruments returns the distinct instrument codes in row order with
// the first name seen for each.
func (r *Result) Instruments() []Instrument {
	seen := make(map[string]struct{})
	out := make([]Instrument, 0)
	for _, row := range r.Rows {
		if _, ok := seen[row.Instrument]; ok {
			continue
		}
		seen[row.Instrument] = struct{}{}
		out = append(out, Instrument{Code: row.Instrument, Name: row.InstrumentName})
	}
	return out
}

// TotalQuantity sums Quantity over every row.
func (r *Result) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, row := range r.Rows {
		total = total.Add(row.Quantity)
	}
	return total
}

type accumulator struct {
	row        Row
	priceSum   decimal.Decimal
	priceCount int64
}

func (a *accumulator) add(rec trades.Record) {
	a.row.Trades++
	if rec.Quantity.Valid {
		a.row.Quantity = a.row.Quantity.Add(rec.Quantity.Decimal)
	}
	if rec.ExecutedPrice.Valid {
		a.priceSum = a.priceSum.Add(rec.ExecutedPrice.Decimal)
		a.priceCount++
	}
	if rec.Consideration.Valid {
		a.row.Consideration = a.row.Consideration.Add(rec.Consideration.Decimal)
	}
	if rec.ExecutedPrice.Valid && rec.Quantity.Valid {
		a.row.WeightedPrice = a.row.WeightedPrice.Add(rec.ExecutedPrice.Decimal.Mul(rec.Quantity.Decimal))
	}
}

func (a *accumulator) finish(measures []Measure) Row {
	row := Row{GroupKey: a.row.GroupKey, Trades: a.row.Trades}
	for _, m := range measures {
		switch m {
		case MeasureQuantity:
			row.Quantity = a.row.Quantity
		case MeasureExecutedPrice:
			if a.priceCount > 0 {
				row.ExecutedPrice = a.priceSum.Div(decimal.NewFromInt(a.priceCount))
			}
		case MeasureConsideration:
			row.Consideration = a.row.Consideration
		case MeasureWeightedPrice:
			row.WeightedPrice = a.row.WeightedPrice
			row.WeightedAvgPrice = WeightedAverage(a.row.WeightedPrice, a.row.Quantity)
		}
	}
	return row
}

// WeightedAverage divides a price-times-quantity sum by the quantity
// sum. A zero quantity yields zero.
func WeightedAverage(weighted, quantity decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return weighted.Div(quantity)
}

// Aggregate groups the table by the exact tuple of keys and computes
// the requested measures for each group. Groups are returned sorted by
// key so identical input always yields identical output.
func Aggregate(t *trades.Table, keys []Key, measures []Measure) (*Result, error) {
	if err := validate(t, keys, measures); err != nil {
		return nil, err
	}

	groups := make(map[GroupKey]*accumulator)
	for _, rec := range t.Records() {
		gk := keyOf(rec, keys)
		acc, ok := groups[gk]
		if !ok {
			acc = &accumulator{row: Row{GroupKey: gk}}
			groups[gk] = acc
		}
		acc.add(rec)
	}

	rows := make([]Row, 0, len(groups))
	for _, acc := range groups {
		rows = append(rows, acc.finish(measures))
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].GroupKey.Compare(rows[j].GroupKey, keys) < 0
	})

	logging.Debug().
		Int("records", t.Len()).
		Int("groups", len(rows)).
		Strs("keys", keyNames(keys)).
		Msg("Aggregated trades")

	return &Result{
		Keys:     slices.Clone(keys),
		Measures: slices.Clone(measures),
		Rows:     rows,
	}, nil
}

func validate(t *trades.Table, keys []Key, measures []Measure) error {
	if t == nil {
		return &AggregationError{Name: "table", Err: errors.New("no trade table loaded")}
	}
	for _, k := range keys {
		col := k.Column()
		if col == "" || !t.HasColumn(col) {
			return &AggregationError{Name: k.String(), Err: ErrMissingKey}
		}
	}
	for _, m := range measures {
		src := m.sources()
		if len(src) == 0 {
			return &AggregationError{Name: m.String(), Err: ErrMissingMeasure}
		}
		for _, col := range src {
			if !t.HasColumn(col) {
				return &AggregationError{Name: col, Err: ErrMissingMeasure}
			}
		}
	}
	return nil
}

func keyNames(keys []Key) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return names
}

var (
	dailyKeys = []Key{KeyInstrument, KeyInstrumentName, KeyTradeDate, KeySide}
	totalKeys = []Key{KeyInstrument, KeyInstrumentName, KeySide}
	dateKeys  = []Key{KeyClientCode, KeyClientName, KeyInstrument, KeyInstrumentName, KeySide}

	clientMeasures = []Measure{MeasureQuantity, MeasureExecutedPrice, MeasureConsideration}
	dateMeasures   = []Measure{MeasureQuantity, MeasureWeightedPrice}
)

// ClientSummary aggregates one client's trades per instrument, date
// and side, then appends per instrument and side totals whose period
// is Total. A client with no trades yields a *trades.NoDataError.
func ClientSummary(t *trades.Table, code string) (*Result, error) {
	if t == nil {
		return nil, &AggregationError{Name: "table", Err: errors.New("no trade table loaded")}
	}
	code = trades.NormalizeClientCode(code)
	ct := t.FilterClient(code)
	if ct.Len() == 0 {
		return nil, &trades.NoDataError{Selection: "client code " + code}
	}

	daily, err := Aggregate(ct, dailyKeys, clientMeasures)
	if err != nil {
		return nil, err
	}
	totals, err := Aggregate(ct, totalKeys, clientMeasures)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(daily.Rows)+len(totals.Rows))
	rows = append(rows, daily.Rows...)
	for _, row := range totals.Rows {
		row.Period = TotalPeriod
		rows = append(rows, row)
	}

	logging.Debug().
		Str("client_code", code).
		Int("trades", ct.Len()).
		Int("daily_rows", len(daily.Rows)).
		Int("total_rows", len(totals.Rows)).
		Msg("Built client summary")

	return &Result{Keys: daily.Keys, Measures: daily.Measures, Rows: rows}, nil
}

// DateSummary aggregates the trades of the given clients on one date
// per client, instrument and side with weighted average prices. An
// empty client list covers every client.
func DateSummary(t *trades.Table, date time.Time, codes []string) (*Result, error) {
	if t == nil {
		return nil, &AggregationError{Name: "table", Err: errors.New("no trade table loaded")}
	}
	dt := t.FilterDate(date, codes)
	if dt.Len() == 0 {
		return nil, &trades.NoDataError{Selection: "date " + trades.FormatDate(date)}
	}
	return Aggregate(dt, dateKeys, dateMeasures)
}
