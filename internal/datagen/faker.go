//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-trades/internal/trades"
)

// Bounds of generated instrument prices and order sizes.
const (
	minBasePrice = 10
	maxBasePrice = 2500

	// Lots are multiples of lotSize up to maxLots lots.
	lotSize = 10
	maxLots = 50

	// maxDrift is the largest relative move from an instrument's base
	// price on any trade.
	maxDrift = 0.03

	maxInstrumentName = 40
)

// sideWeights biases generated flow slightly towards buying.
var sideWeights = []int{55, 45}

// Faker draws the parts of a trade from a gofakeit source.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a Faker seeded from the clock.
func NewFaker() *Faker {
	return NewFakerWithSeed(uint64(time.Now().UnixNano()))
}

// NewFakerWithSeed creates a Faker whose output is fixed by seed.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{faker: gofakeit.New(seed)}
}

// ClientCode draws a code of trades.ClientCodeWidth digits.
func (f *Faker) ClientCode() string {
	return f.faker.DigitN(uint(trades.ClientCodeWidth))
}

// ClientName draws a person's name for an account holder.
func (f *Faker) ClientName() string {
	return f.faker.Name()
}

// Symbol draws a three to five letter upper-case instrument symbol.
func (f *Faker) Symbol() string {
	return strings.ToUpper(f.faker.LetterN(uint(f.faker.IntRange(3, 5))))
}

// InstrumentName draws an issuer name, cut to fit a spreadsheet column.
func (f *Faker) InstrumentName() string {
	name := f.faker.Company()
	if len(name) > maxInstrumentName {
		name = strings.TrimSpace(name[:maxInstrumentName])
	}
	return name
}

// BasePrice draws the reference price of an instrument.
func (f *Faker) BasePrice() decimal.Decimal {
	return decimal.NewFromFloat(f.faker.Price(minBasePrice, maxBasePrice)).Round(2)
}

// ExecutedPrice moves base by up to maxDrift in either direction.
func (f *Faker) ExecutedPrice(base decimal.Decimal) decimal.Decimal {
	drift := decimal.NewFromFloat(f.faker.Float64Range(-maxDrift, maxDrift))
	return base.Mul(decimal.NewFromInt(1).Add(drift)).Round(2)
}

// Quantity draws a whole number of lots.
func (f *Faker) Quantity() int64 {
	return int64(f.faker.IntRange(1, maxLots) * lotSize)
}

// Side draws BUY or SELL.
func (f *Faker) Side() trades.Side {
	return ChooseWeighted(f, trades.Sides, sideWeights)
}

// TradeDate draws a day between start and end, inclusive.
func (f *Faker) TradeDate(start, end time.Time) time.Time {
	start, end = trades.Date(start), trades.Date(end)
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, f.faker.IntRange(0, days))
}

// Chance reports true with probability rate.
func (f *Faker) Chance(rate float64) bool {
	return rate > 0 && f.faker.Float64Range(0, 1) < rate
}

// Choose returns a random element of items, or the zero value when
// items is empty.
func Choose[T any](f *Faker, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[f.faker.IntRange(0, len(items)-1)]
}

// ChooseWeighted returns a random element of items where weights[i] is
// the relative likelihood of items[i].
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	var zero T
	if len(items) == 0 || len(weights) == 0 {
		return zero
	}

	total := 0
	for _, w := range weights {
		total += w
	}

	r := f.faker.IntRange(1, total)
	for i, w := range weights {
		if r -= w; r <= 0 {
			return items[i]
		}
	}
	return items[len(items)-1]
}
