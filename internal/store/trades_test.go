package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-trades/internal/datagen"
	"github.com/pgEdge/pgedge-trades/internal/trades"
)

// recordingDB captures executed statements.
type recordingDB struct {
	statements []string
	args       [][]any
	failOn     int
}

func (d *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.statements = append(d.statements, sql)
	d.args = append(d.args, args)
	if d.failOn > 0 && len(d.statements) == d.failOn {
		return pgconn.CommandTag{}, errors.New("connection reset")
	}
	return pgconn.CommandTag{}, nil
}

func (d *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (d *recordingDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func testRecord(name string) trades.Record {
	return trades.Record{
		ClientCode:     "051851",
		ClientName:     name,
		Instrument:     "AAA",
		InstrumentName: "Alpha Holdings",
		TradeDate:      time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Side:           trades.Buy,
		Quantity:       decimal.NewNullDecimal(decimal.NewFromInt(100)),
		ExecutedPrice:  decimal.NewNullDecimal(decimal.RequireFromString("10.5")),
	}
}

func TestRecordValues(t *testing.T) {
	id := uuid.MustParse("6f1c2a4e-1b7a-4f59-9d0e-0c8d3b2f5a10")
	got := recordValues(id, testRecord("O'Brien"))

	expected := "('6f1c2a4e-1b7a-4f59-9d0e-0c8d3b2f5a10', '051851', 'O''Brien', 'AAA', " +
		"'Alpha Holdings', '2025-01-06', 'BUY', 100, 10.5, NULL)"
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestRecordValuesUndated(t *testing.T) {
	id := uuid.MustParse("6f1c2a4e-1b7a-4f59-9d0e-0c8d3b2f5a10")
	r := testRecord("Client")
	r.TradeDate = time.Time{}

	got := recordValues(id, r)
	if !strings.Contains(got, "'Alpha Holdings', NULL, 'BUY'") {
		t.Errorf("Expected a NULL trade date, got %s", got)
	}
}

func TestEscapeSingleQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"O'Brien", "O''Brien"},
		{"''", "''''"},
	}

	for _, tt := range tests {
		if got := escapeSingleQuote(tt.input); got != tt.expected {
			t.Errorf("escapeSingleQuote(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestSaveRecordsBatches(t *testing.T) {
	db := &recordingDB{}
	records := make([]trades.Record, 5)
	for i := range records {
		records[i] = testRecord("Client")
	}

	id, err := SaveRecords(context.Background(), db, records, datagen.BatchInsertConfig{
		BatchSize:        2,
		ProgressInterval: 2,
	})
	if err != nil {
		t.Fatalf("SaveRecords failed: %v", err)
	}
	if id == uuid.Nil {
		t.Error("Expected a non-nil import ID")
	}
	if len(db.statements) != 3 {
		t.Fatalf("Expected 3 batch inserts, got %d", len(db.statements))
	}
	for _, stmt := range db.statements {
		if !strings.HasPrefix(stmt, "INSERT INTO trade_history ") {
			t.Errorf("Unexpected statement: %s", stmt)
		}
		if !strings.Contains(stmt, id.String()) {
			t.Errorf("Statement missing import ID: %s", stmt)
		}
	}
	if n := strings.Count(db.statements[2], "'051851'"); n != 1 {
		t.Errorf("Expected 1 row in the final batch, got %d", n)
	}
}

func TestSaveRecordsEmpty(t *testing.T) {
	db := &recordingDB{}
	if _, err := SaveRecords(context.Background(), db, nil, datagen.DefaultBatchConfig()); err != nil {
		t.Fatalf("SaveRecords failed: %v", err)
	}
	if len(db.statements) != 0 {
		t.Errorf("Expected no statements, got %d", len(db.statements))
	}
}

func TestSaveRecordsError(t *testing.T) {
	db := &recordingDB{failOn: 1}
	records := []trades.Record{testRecord("Client")}

	id, err := SaveRecords(context.Background(), db, records, datagen.DefaultBatchConfig())
	if err == nil {
		t.Fatal("Expected error from failed insert")
	}
	if id != uuid.Nil {
		t.Errorf("Expected nil import ID on failure, got %s", id)
	}
}

func TestCreateSchema(t *testing.T) {
	db := &recordingDB{}
	if err := CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}
	if len(db.statements) != len(schemaStatements) {
		t.Errorf("Expected %d statements, got %d", len(schemaStatements), len(db.statements))
	}
	if !strings.Contains(db.statements[0], "CREATE TABLE IF NOT EXISTS trade_history") {
		t.Errorf("Expected trade_history to be created first, got %s", db.statements[0])
	}
}

func TestReplaceTrades(t *testing.T) {
	db := &recordingDB{}
	records := []trades.Record{testRecord("Client"), testRecord("Client")}

	id, err := replaceTrades(context.Background(), db, records, "trades.xlsx", datagen.DefaultBatchConfig())
	if err != nil {
		t.Fatalf("replaceTrades failed: %v", err)
	}

	if !strings.HasPrefix(db.statements[0], "INSERT INTO trade_history ") {
		t.Fatalf("Expected the insert first, got %s", db.statements[0])
	}
	if !strings.HasPrefix(db.statements[1], "DELETE FROM trade_history WHERE import_id <> $1") {
		t.Fatalf("Expected earlier imports deleted second, got %s", db.statements[1])
	}
	if len(db.args[1]) != 1 || db.args[1][0] != id.String() {
		t.Errorf("Expected the delete to keep import %s, got %v", id, db.args[1])
	}

	saved := map[string]any{}
	for i, stmt := range db.statements[2:] {
		if strings.Contains(stmt, "INSERT INTO trades_metadata") {
			args := db.args[i+2]
			saved[args[0].(string)] = args[1]
		}
	}
	if saved[MetaImportID] != id.String() {
		t.Errorf("Expected metadata import ID %s, got %v", id, saved[MetaImportID])
	}
	if saved[MetaRows] != "2" {
		t.Errorf("Expected metadata rows 2, got %v", saved[MetaRows])
	}
}

func TestReplaceTradesInsertFails(t *testing.T) {
	db := &recordingDB{failOn: 1}

	_, err := replaceTrades(context.Background(), db, []trades.Record{testRecord("Client")},
		"trades.xlsx", datagen.DefaultBatchConfig())
	if err == nil {
		t.Fatal("Expected error from failed insert")
	}
	for _, stmt := range db.statements {
		if strings.HasPrefix(stmt, "DELETE") {
			t.Errorf("Expected earlier imports kept after a failed insert, got %s", stmt)
		}
	}
}
