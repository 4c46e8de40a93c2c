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

	"github.com/pgEdge/pgedge-trades/internal/logging"
)

// TradeTable is the table trade history is imported into.
const TradeTable = "trade_history"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS trade_history (
    id              BIGSERIAL PRIMARY KEY,
    import_id       UUID NOT NULL,
    clnt_code       TEXT NOT NULL,
    clnt_name       TEXT NOT NULL,
    instrument      TEXT NOT NULL,
    instrument_name TEXT NOT NULL,
    trade_date      DATE,
    buy_sell        TEXT NOT NULL CHECK (buy_sell IN ('BUY', 'SELL')),
    quantity        NUMERIC,
    executed_price  NUMERIC,
    consideration   NUMERIC
)`,
	`CREATE INDEX IF NOT EXISTS idx_trade_history_client ON trade_history (clnt_code, trade_date)`,
	`CREATE INDEX IF NOT EXISTS idx_trade_history_date ON trade_history (trade_date)`,
	createMetadataTableSQL,
}

// CreateSchema creates the trade history and metadata tables.
func CreateSchema(ctx context.Context, db DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	logging.Debug().Str("table", TradeTable).Msg("Schema ready")
	return nil
}

// DropSchema drops the trade history and metadata tables.
func DropSchema(ctx context.Context, db DB) error {
	for _, table := range []string{TradeTable, metadataTable} {
		if _, err := db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	logging.Info().Msg("Dropped trade history schema")
	return nil
}
