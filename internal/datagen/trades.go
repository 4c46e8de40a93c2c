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
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/trades"
)

// TradeConfig configures sample trade history generation.
type TradeConfig struct {
	Rows        int
	Clients     int
	Instruments int

	// Start and End bound the trade dates, inclusive.
	Start time.Time
	End   time.Time

	// ClientCodes are used, in order, before random codes are drawn.
	ClientCodes []string

	// DirtyRate is the probability that a cell is rendered the way
	// hand-maintained exports render it.
	DirtyRate float64

	// Seed makes the output reproducible; 0 picks a random seed.
	Seed uint64
}

type client struct {
	code, name string
}

type instrument struct {
	symbol, name string
	basePrice    decimal.Decimal
}

type trade struct {
	client     client
	instrument instrument
	date       time.Time
	side       trades.Side
	quantity   int64
	price      decimal.Decimal
}

// TradeGenerator produces spreadsheet-shaped trade history.
type TradeGenerator struct {
	faker *Faker
	cfg   TradeConfig
}

// NewTradeGenerator creates a generator for the given configuration.
func NewTradeGenerator(cfg TradeConfig) *TradeGenerator {
	f := NewFaker()
	if cfg.Seed != 0 {
		f = NewFakerWithSeed(cfg.Seed)
	}
	return &TradeGenerator{faker: f, cfg: cfg}
}

// Generate returns a raw table with the standard trade columns. Rows
// are in trade date order.
func (g *TradeGenerator) Generate() *trades.RawTable {
	clients := g.clients()
	instruments := g.instruments()

	generated := make([]trade, 0, g.cfg.Rows)
	for i := 0; i < g.cfg.Rows; i++ {
		inst := Choose(g.faker, instruments)
		generated = append(generated, trade{
			client:     Choose(g.faker, clients),
			instrument: inst,
			date:       g.faker.TradeDate(g.cfg.Start, g.cfg.End),
			side:       g.faker.Side(),
			quantity:   g.faker.Quantity(),
			price:      g.faker.ExecutedPrice(inst.basePrice),
		})
	}
	slices.SortStableFunc(generated, func(a, b trade) int {
		return a.date.Compare(b.date)
	})

	raw := &trades.RawTable{
		Source: "generator",
		Header: append([]string(nil), trades.RequiredColumns...),
		Rows:   make([][]string, 0, len(generated)),
	}
	for _, tr := range generated {
		raw.Rows = append(raw.Rows, g.render(tr))
	}

	logging.Debug().
		Int("rows", len(raw.Rows)).
		Int("clients", len(clients)).
		Int("instruments", len(instruments)).
		Msg("Generated trade history")

	return raw
}

func (g *TradeGenerator) clients() []client {
	n := max(1, g.cfg.Clients)
	seen := make(map[string]struct{}, n)
	out := make([]client, 0, n)

	for _, code := range trades.MergeCodes(g.cfg.ClientCodes) {
		if len(out) == n {
			break
		}
		seen[code] = struct{}{}
		out = append(out, client{code: code, name: g.faker.ClientName()})
	}
	for attempts := 0; len(out) < n && attempts < n*100; attempts++ {
		code := g.faker.ClientCode()
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, client{code: code, name: g.faker.ClientName()})
	}
	return out
}

func (g *TradeGenerator) instruments() []instrument {
	n := max(1, g.cfg.Instruments)
	seen := make(map[string]struct{}, n)
	out := make([]instrument, 0, n)

	for attempts := 0; len(out) < n && attempts < n*100; attempts++ {
		symbol := g.faker.Symbol()
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, instrument{
			symbol:    symbol,
			name:      g.faker.InstrumentName(),
			basePrice: g.faker.BasePrice(),
		})
	}
	return out
}

// render formats one trade as a spreadsheet row in RequiredColumns
// order, dirtying cells at the configured rate.
func (g *TradeGenerator) render(tr trade) []string {
	qty := decimal.NewFromInt(tr.quantity)
	consideration := qty.Mul(tr.price).Round(2)

	code := tr.client.code
	if g.dirty() {
		// Spreadsheets drop the leading zeros of numeric-looking codes.
		if trimmed := strings.TrimLeft(code, "0"); trimmed != "" {
			code = trimmed
		}
	}

	side := string(tr.side)
	if g.dirty() {
		side = strings.ToLower(side)
	}

	quantity := strconv.FormatInt(tr.quantity, 10)
	if g.dirty() {
		quantity = withThousands(quantity)
	}

	price := tr.price.StringFixed(2)
	if g.dirty() {
		price = " " + withThousands(price) + " "
	}

	cons := consideration.StringFixed(2)
	if g.dirty() {
		cons = Choose(g.faker, []string{"nan", "", "None", withThousands(cons)})
	}

	return []string{
		code,
		tr.client.name,
		tr.instrument.symbol,
		tr.instrument.name,
		trades.FormatDate(tr.date),
		side,
		quantity,
		price,
		cons,
	}
}

func (g *TradeGenerator) dirty() bool {
	return g.faker.Chance(g.cfg.DirtyRate)
}

// withThousands inserts comma separators into the integer part of a
// plain decimal string.
func withThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
