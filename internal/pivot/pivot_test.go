package pivot

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-trades/internal/aggregate"
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

func clientSummary(t *testing.T, records ...trades.Record) *aggregate.Result {
	t.Helper()
	tbl := trades.NewTable("test", trades.RequiredColumns, records)
	res, err := aggregate.ClientSummary(tbl, records[0].ClientCode)
	if err != nil {
		t.Fatalf("ClientSummary failed: %v", err)
	}
	return res
}

var dailyIndex = []aggregate.Key{aggregate.KeyInstrument, aggregate.KeyInstrumentName, aggregate.KeyTradeDate}

func TestPivotBuySell(t *testing.T) {
	res := clientSummary(t,
		trade("051851", "AAA", 5, trades.Buy, "100", "10"),
		trade("051851", "AAA", 5, trades.Sell, "40", "11"),
	)

	pt, err := Pivot(res, dailyIndex, ExecutedPrice)
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}

	// One daily row and one Total row.
	if pt.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", pt.Len())
	}

	row := pt.Rows[0]
	if row.Buy.Quantity != 100 || !row.Buy.Price.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected BUY 100 @ 10, got %d @ %s", row.Buy.Quantity, row.Buy.Price)
	}
	if row.Sell.Quantity != 40 || !row.Sell.Price.Equal(decimal.NewFromInt(11)) {
		t.Errorf("Expected SELL 40 @ 11, got %d @ %s", row.Sell.Quantity, row.Sell.Price)
	}

	last := pt.Rows[pt.Len()-1]
	if last.Index[2] != aggregate.TotalLabel {
		t.Errorf("Expected Total row last, got %v", last.Index)
	}
	if pt.Truncated {
		t.Error("Expected no truncation for whole quantities")
	}
}

func TestPivotZeroFill(t *testing.T) {
	res := clientSummary(t,
		trade("051851", "AAA", 5, trades.Buy, "100", "10"),
		trade("051851", "BBB", 6, trades.Sell, "7", "2.5"),
	)

	pt, err := Pivot(res, dailyIndex, ExecutedPrice)
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}

	for _, row := range pt.Rows {
		if len(row.Index) != 3 {
			t.Errorf("Expected 3 index values, got %v", row.Index)
		}
		switch row.Index[0] {
		case "AAA":
			if row.Sell.Quantity != 0 || !row.Sell.Price.IsZero() {
				t.Errorf("Expected zero SELL cell for AAA, got %+v", row.Sell)
			}
		case "BBB":
			if row.Buy.Quantity != 0 || !row.Buy.Price.IsZero() {
				t.Errorf("Expected zero BUY cell for BBB, got %+v", row.Buy)
			}
		}
	}

	if len(pt.Columns()) != 4 {
		t.Errorf("Expected 4 value columns, got %d", len(pt.Columns()))
	}
}

func TestPivotHeader(t *testing.T) {
	pt, err := Pivot(nil, dailyIndex, WeightedAvgPrice)
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}

	expected := []string{
		trades.ColInstrument, trades.ColInstrumentName, trades.ColTradeDate,
		"Quantity BUY", "Weighted_Avg_Price BUY",
		"Quantity SELL", "Weighted_Avg_Price SELL",
	}
	if got := pt.Header(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected header %v, got %v", expected, got)
	}
}

func TestPivotEmpty(t *testing.T) {
	pt, err := Pivot(&aggregate.Result{}, dailyIndex, ExecutedPrice)
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}
	if pt.Len() != 0 {
		t.Errorf("Expected empty table, got %d rows", pt.Len())
	}
}

func TestPivotIdempotent(t *testing.T) {
	res := clientSummary(t,
		trade("051851", "AAA", 5, trades.Buy, "100", "10"),
		trade("051851", "AAA", 6, trades.Buy, "20", "10.5"),
		trade("051851", "BBB", 5, trades.Sell, "3", "99"),
	)

	first, err := Pivot(res, dailyIndex, ExecutedPrice)
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}
	second, err := Pivot(res, dailyIndex, ExecutedPrice)
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical tables from identical input")
	}
}

func TestPivotTruncation(t *testing.T) {
	res := clientSummary(t,
		trade("051851", "AAA", 5, trades.Buy, "2.5", "1.1234567"),
	)

	pt, err := Pivot(res, dailyIndex, ExecutedPrice)
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}
	if !pt.Truncated {
		t.Error("Expected truncation flag")
	}
	if pt.Rows[0].Buy.Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", pt.Rows[0].Buy.Quantity)
	}
	if !pt.Rows[0].Buy.Price.Equal(decimal.RequireFromString("1.123457")) {
		t.Errorf("Expected price rounded to 1.123457, got %s", pt.Rows[0].Buy.Price)
	}
}

func TestPivotCollapsesIndex(t *testing.T) {
	res := clientSummary(t,
		trade("051851", "AAA", 5, trades.Buy, "100", "10"),
		trade("051851", "AAA", 6, trades.Buy, "50", "20"),
	)

	pt, err := Pivot(res, []aggregate.Key{aggregate.KeyInstrument}, ExecutedPrice)
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}
	if pt.Len() != 1 {
		t.Fatalf("Expected 1 row, got %d", pt.Len())
	}

	// Two daily rows and one total row land in the same cell.
	buy, sell := pt.Totals()
	if buy != 300 || sell != 0 {
		t.Errorf("Expected totals 300/0, got %d/%d", buy, sell)
	}
}

func TestPivotErrors(t *testing.T) {
	res := clientSummary(t, trade("051851", "AAA", 5, trades.Buy, "1", "1"))

	tests := []struct {
		name  string
		index []aggregate.Key
		price PriceMeasure
		want  string
	}{
		{"side in index", []aggregate.Key{aggregate.KeySide}, ExecutedPrice, "column dimension"},
		{"key not grouped", []aggregate.Key{aggregate.KeyClientCode}, ExecutedPrice, "not grouped"},
		{"measure not computed", dailyIndex, WeightedAvgPrice, "not computed"},
		{"unknown measure", dailyIndex, PriceMeasure(9), "unknown price measure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Pivot(res, tt.index, tt.price)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
