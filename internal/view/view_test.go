package view

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-trades/internal/trades"
)

func trade(code, inst string, d int, side trades.Side, qty, price string) trades.Record {
	return trades.Record{
		ClientCode:     code,
		ClientName:     "Client " + code,
		Instrument:     inst,
		InstrumentName: inst + " Holdings",
		TradeDate:      time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC),
		Side:           side,
		Quantity:       decimal.NewNullDecimal(decimal.RequireFromString(qty)),
		ExecutedPrice:  decimal.NewNullDecimal(decimal.RequireFromString(price)),
		Consideration:  decimal.NewNullDecimal(decimal.RequireFromString(qty)),
	}
}

func sampleTable() *trades.Table {
	return trades.NewTable("test", trades.RequiredColumns, []trades.Record{
		trade("051851", "AAA", 5, trades.Buy, "100", "10"),
		trade("051851", "AAA", 5, trades.Sell, "40", "11"),
		trade("051851", "BBB", 6, trades.Buy, "5", "2"),
		trade("118095", "AAA", 5, trades.Buy, "300", "14"),
		trade("118095", "CCC", 6, trades.Sell, "20", "3"),
	})
}

func TestRegistry(t *testing.T) {
	modes := List()
	expected := []Mode{ModeByDate, ModeByDateAllClients, ModeByInstrument}
	if len(modes) != len(expected) {
		t.Fatalf("Expected %d modes, got %d", len(expected), len(modes))
	}
	for i, m := range expected {
		if modes[i] != m {
			t.Errorf("Expected mode %d to be %s, got %s", i, m, modes[i])
		}
	}

	for _, v := range All() {
		if v.Description() == "" {
			t.Errorf("Expected description for %s", v.Name())
		}
	}

	_, err := Get("by-week")
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Expected ErrUnknownMode, got %v", err)
	}
}

func TestByInstrument(t *testing.T) {
	s := NewSession(sampleTable(), DefaultCacheSize)

	res, err := s.Render(ModeByInstrument, Request{ClientCode: "51851"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if res.Selection != "client 051851" {
		t.Errorf("Expected selection 'client 051851', got %q", res.Selection)
	}
	if len(res.Sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(res.Sections))
	}
	if res.Sections[0].Title != "AAA - AAA Holdings" {
		t.Errorf("Unexpected title %q", res.Sections[0].Title)
	}

	aaa := res.Sections[0].Table
	if aaa.Len() != 2 {
		t.Fatalf("Expected a date row and a Total row, got %d rows", aaa.Len())
	}
	row := aaa.Rows[0]
	if row.Index[0] != "2025-01-05" {
		t.Errorf("Expected first row on 2025-01-05, got %v", row.Index)
	}
	if row.Buy.Quantity != 100 || row.Sell.Quantity != 40 {
		t.Errorf("Expected 100/40, got %d/%d", row.Buy.Quantity, row.Sell.Quantity)
	}
	if !row.Buy.Price.Equal(decimal.NewFromInt(10)) || !row.Sell.Price.Equal(decimal.NewFromInt(11)) {
		t.Errorf("Expected prices 10/11, got %s/%s", row.Buy.Price, row.Sell.Price)
	}
	if aaa.Rows[1].Index[0] != "Total" {
		t.Errorf("Expected Total row last, got %v", aaa.Rows[1].Index)
	}
}

func TestByDate(t *testing.T) {
	s := NewSession(sampleTable(), DefaultCacheSize)

	res, err := s.Render(ModeByDate, Request{ClientCode: "051851"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(res.Sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(res.Sections))
	}

	tbl := res.Sections[0].Table
	// Two dated rows then two Total rows.
	if tbl.Len() != 4 {
		t.Fatalf("Expected 4 rows, got %d", tbl.Len())
	}
	if tbl.Rows[0].Index[0] != "2025-01-05" || tbl.Rows[1].Index[0] != "2025-01-06" {
		t.Errorf("Expected dated rows first, got %v and %v", tbl.Rows[0].Index, tbl.Rows[1].Index)
	}
	for _, row := range tbl.Rows[2:] {
		if row.Index[0] != "Total" {
			t.Errorf("Expected Total row, got %v", row.Index)
		}
	}
}

func TestByDateAllClients(t *testing.T) {
	s := NewSession(sampleTable(), DefaultCacheSize)
	day := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	res, err := s.Render(ModeByDateAllClients, Request{Date: day})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	tbl := res.Sections[0].Table
	if tbl.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", tbl.Len())
	}
	if res.Sections[0].Title != "2025-01-05" {
		t.Errorf("Expected title 2025-01-05, got %q", res.Sections[0].Title)
	}

	limited, err := s.Render(ModeByDateAllClients, Request{Date: day, Clients: []string{"118095"}})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	rows := limited.Sections[0].Table.Rows
	if len(rows) != 1 || rows[0].Index[0] != "118095" {
		t.Fatalf("Expected only client 118095, got %v", rows)
	}
	if !rows[0].Buy.Price.Equal(decimal.NewFromInt(14)) {
		t.Errorf("Expected weighted average 14, got %s", rows[0].Buy.Price)
	}
}

func TestRenderErrors(t *testing.T) {
	s := NewSession(sampleTable(), DefaultCacheSize)

	tests := []struct {
		name   string
		mode   Mode
		req    Request
		target error
	}{
		{"client required", ModeByInstrument, Request{}, ErrClientRequired},
		{"client required by date", ModeByDate, Request{ClientCode: "  "}, ErrClientRequired},
		{"date required", ModeByDateAllClients, Request{}, ErrDateRequired},
		{"unknown client", ModeByDate, Request{ClientCode: "999999"}, trades.ErrNoData},
		{"empty date", ModeByDateAllClients, Request{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, trades.ErrNoData},
		{"unknown mode", Mode("by-week"), Request{ClientCode: "051851"}, ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Render(tt.mode, tt.req)
			if res != nil {
				t.Error("Expected no result")
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}
}
