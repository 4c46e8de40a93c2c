package datagen

import (
	"testing"
	"time"

	"github.com/pgEdge/pgedge-trades/internal/trades"
)

func testTradeConfig() TradeConfig {
	return TradeConfig{
		Rows:        300,
		Clients:     6,
		Instruments: 5,
		Start:       time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		ClientCodes: []string{"118095", "51851"},
		DirtyRate:   0.3,
		Seed:        42,
	}
}

func TestTradeGeneratorShape(t *testing.T) {
	raw := NewTradeGenerator(testTradeConfig()).Generate()

	if raw.Len() != 300 {
		t.Errorf("Expected 300 rows, got %d", raw.Len())
	}
	if len(raw.Header) != len(trades.RequiredColumns) {
		t.Fatalf("Expected %d columns, got %d", len(trades.RequiredColumns), len(raw.Header))
	}
	for i, col := range trades.RequiredColumns {
		if raw.Header[i] != col {
			t.Errorf("Expected header %d to be %s, got %s", i, col, raw.Header[i])
		}
	}
	for i, row := range raw.Rows {
		if len(row) != len(raw.Header) {
			t.Fatalf("Row %d has %d cells, expected %d", i, len(row), len(raw.Header))
		}
	}
}

func TestTradeGeneratorSeeded(t *testing.T) {
	a := NewTradeGenerator(testTradeConfig()).Generate()
	b := NewTradeGenerator(testTradeConfig()).Generate()

	for i := range a.Rows {
		for j := range a.Rows[i] {
			if a.Rows[i][j] != b.Rows[i][j] {
				t.Fatalf("Same seed produced different cell at row %d column %d: %q != %q",
					i, j, a.Rows[i][j], b.Rows[i][j])
			}
		}
	}
}

func TestTradeGeneratorNormalizes(t *testing.T) {
	cfg := testTradeConfig()
	raw := NewTradeGenerator(cfg).Generate()

	table, err := trades.Normalize(raw, trades.DefaultOptions())
	if err != nil {
		t.Fatalf("Generated data failed to normalize: %v", err)
	}
	if table.Len() != cfg.Rows {
		t.Errorf("Expected %d records, got %d", cfg.Rows, table.Len())
	}

	first := trades.Date(cfg.Start)
	last := trades.Date(cfg.End)
	codes := make(map[string]bool)
	for _, r := range table.Records() {
		if len(r.ClientCode) != trades.ClientCodeWidth {
			t.Errorf("Expected 6 digit client code, got %q", r.ClientCode)
		}
		if r.TradeDate.Before(first) || r.TradeDate.After(last) {
			t.Errorf("Trade date %s outside range", trades.FormatDate(r.TradeDate))
		}
		if !r.Quantity.Valid || !r.Quantity.Decimal.IsInteger() {
			t.Errorf("Expected whole quantity, got %v", r.Quantity)
		}
		if !r.ExecutedPrice.Valid {
			t.Error("Expected executed price to be present")
		}
		codes[r.ClientCode] = true
	}

	// Unpadded codes normalize back to the configured ones.
	if !codes["051851"] && !codes["118095"] {
		t.Errorf("Expected configured client codes in output, got %v", codes)
	}
	if len(codes) > cfg.Clients {
		t.Errorf("Expected at most %d clients, got %d", cfg.Clients, len(codes))
	}
}

func TestTradeGeneratorClean(t *testing.T) {
	cfg := testTradeConfig()
	cfg.DirtyRate = 0
	raw := NewTradeGenerator(cfg).Generate()

	for _, row := range raw.Rows {
		if len(row[0]) != trades.ClientCodeWidth {
			t.Errorf("Expected padded client code without noise, got %q", row[0])
		}
		if row[5] != "BUY" && row[5] != "SELL" {
			t.Errorf("Expected canonical side without noise, got %q", row[5])
		}
		if !trades.CleanNumeric(row[8]).Valid {
			t.Errorf("Expected consideration without noise, got %q", row[8])
		}
	}
}

func TestWithThousands(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "0"},
		{"999", "999"},
		{"1000", "1,000"},
		{"1234567.50", "1,234,567.50"},
		{"-12345", "-12,345"},
	}

	for _, tt := range tests {
		if got := withThousands(tt.input); got != tt.expected {
			t.Errorf("withThousands(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
