//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-trades/internal/datagen"
	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/trades"
)

const tradeColumns = "(import_id, clnt_code, clnt_name, instrument, instrument_name, " +
	"trade_date, buy_sell, quantity, executed_price, consideration)"

// SaveRecords inserts records into trade_history in batches and
// returns the import ID tagged on every inserted row.
func SaveRecords(ctx context.Context, db DB, records []trades.Record, cfg datagen.BatchInsertConfig) (uuid.UUID, error) {
	importID := uuid.New()
	if cfg.BatchSize < 1 {
		cfg.BatchSize = datagen.DefaultBatchConfig().BatchSize
	}

	progress := datagen.NewProgressReporter(TradeTable, int64(len(records)), cfg.ProgressInterval)
	batch := make([]string, 0, cfg.BatchSize)

	for _, r := range records {
		batch = append(batch, recordValues(importID, r))

		if len(batch) >= cfg.BatchSize {
			if err := executeBatchInsert(ctx, db, TradeTable, tradeColumns, batch); err != nil {
				return uuid.Nil, fmt.Errorf("failed to insert trades: %w", err)
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}

	if err := executeBatchInsert(ctx, db, TradeTable, tradeColumns, batch); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert trades: %w", err)
	}
	progress.Update(int64(len(batch)))
	progress.Done()

	return importID, nil
}

// ImportTrades replaces the stored trade history with records in one
// transaction: the new rows are inserted, rows of earlier imports are
// deleted and the import is recorded in the metadata table. Nothing is
// left behind when any step fails.
func ImportTrades(ctx context.Context, pool *pgxpool.Pool, records []trades.Record, source string, cfg datagen.BatchInsertConfig) (uuid.UUID, error) {
	var importID uuid.UUID
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var err error
		importID, err = replaceTrades(ctx, tx, records, source, cfg)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	return importID, nil
}

func replaceTrades(ctx context.Context, db DB, records []trades.Record, source string, cfg datagen.BatchInsertConfig) (uuid.UUID, error) {
	importID, err := SaveRecords(ctx, db, records, cfg)
	if err != nil {
		return uuid.Nil, err
	}

	tag, err := db.Exec(ctx, `DELETE FROM trade_history WHERE import_id <> $1`, importID.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to remove earlier imports: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		logging.Info().Int64("rows", n).Msg("Replaced previously imported trades")
	}

	if err := SaveImport(ctx, db, importID, source, len(records)); err != nil {
		return uuid.Nil, fmt.Errorf("failed to save metadata: %w", err)
	}
	return importID, nil
}

// LoadRaw reads every stored trade as text, in the column layout of
// trades.RequiredColumns, so stored history goes through the same
// normalization as spreadsheet history.
func LoadRaw(ctx context.Context, db DB) (*trades.RawTable, error) {
	rows, err := db.Query(ctx, `
        SELECT clnt_code, clnt_name, instrument, instrument_name,
               COALESCE(to_char(trade_date, 'YYYY-MM-DD'), ''), buy_sell,
               COALESCE(quantity::text, ''),
               COALESCE(executed_price::text, ''),
               COALESCE(consideration::text, '')
        FROM trade_history
        ORDER BY trade_date NULLS FIRST, id
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	raw := &trades.RawTable{
		Source: "postgres:" + TradeTable,
		Header: append([]string(nil), trades.RequiredColumns...),
	}
	for rows.Next() {
		row := make([]string, len(trades.RequiredColumns))
		dest := make([]any, len(row))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		raw.Rows = append(raw.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}

	logging.Debug().
		Str("table", TradeTable).
		Int("rows", raw.Len()).
		Msg("Loaded stored trades")

	return raw, nil
}

// CountTrades returns the number of stored trades.
func CountTrades(ctx context.Context, db DB) (int64, error) {
	var n int64
	err := db.QueryRow(ctx, `SELECT count(*) FROM trade_history`).Scan(&n)
	return n, err
}

func recordValues(importID uuid.UUID, r trades.Record) string {
	date := "NULL"
	if !r.TradeDate.IsZero() {
		date = "'" + trades.FormatDate(r.TradeDate) + "'"
	}
	return fmt.Sprintf("('%s', '%s', '%s', '%s', '%s', %s, '%s', %s, %s, %s)",
		importID,
		escapeSingleQuote(r.ClientCode),
		escapeSingleQuote(r.ClientName),
		escapeSingleQuote(r.Instrument),
		escapeSingleQuote(r.InstrumentName),
		date,
		r.Side,
		numericLiteral(r.Quantity),
		numericLiteral(r.ExecutedPrice),
		numericLiteral(r.Consideration),
	)
}

func numericLiteral(d decimal.NullDecimal) string {
	if !d.Valid {
		return "NULL"
	}
	return d.Decimal.String()
}

func executeBatchInsert(ctx context.Context, db DB, table, columns string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	sql := fmt.Sprintf("INSERT INTO %s %s VALUES %s", table, columns, strings.Join(values, ", "))
	_, err := db.Exec(ctx, sql)
	return err
}

func escapeSingleQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
