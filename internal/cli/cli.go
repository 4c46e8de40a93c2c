//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-trades.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-trades/internal/config"
	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/source"
	"github.com/pgEdge/pgedge-trades/internal/store"
	"github.com/pgEdge/pgedge-trades/internal/trades"
	"github.com/pgEdge/pgedge-trades/internal/view"
	"github.com/pgEdge/pgedge-trades/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	sourcePath string
	sheet      string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-trades",
		Short: "Client trade history analyzer",
		Long: `pgedge-trades loads a client trade history spreadsheet (or the copy
imported into PostgreSQL), aggregates buy and sell activity per client,
instrument and date, and presents it as pivot tables.

Views:
  by-instrument        one client, a table per instrument
  by-date              one client, a single table by date and instrument
  by-date-all-clients  every selected client on one date`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-trades.yaml)")
	rootCmd.PersistentFlags().StringVar(&sourcePath, "source", "",
		"trade history spreadsheet (.xlsx, .xlsm or .csv)")
	rootCmd.PersistentFlags().StringVar(&sheet, "sheet", "",
		"worksheet to read (default: first sheet)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string of the trade store")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(datesCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if sourcePath != "" {
		cfg.Source = sourcePath
	}
	if sheet != "" {
		cfg.Sheet = sheet
	}
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

// loadTable reads the configured source. A spreadsheet wins over the
// trade store when both are configured.
func loadTable(ctx context.Context) (*trades.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Source != "" {
		r, err := source.Open(cfg.Source, cfg.Sheet)
		if err != nil {
			return nil, err
		}
		return source.Load(ctx, r, cfg.NormalizeOptions())
	}

	pool, err := store.Connect(ctx, cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	return source.Load(ctx, &source.PostgresReader{DB: pool}, cfg.NormalizeOptions())
}

func newSession(ctx context.Context) (*view.Session, error) {
	t, err := loadTable(ctx)
	if err != nil {
		return nil, err
	}
	return view.NewSession(t, cfg.Cache.MaxEntries), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List available view modes",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available view modes:")
		fmt.Fprintln(out)
		for _, v := range view.All() {
			fmt.Fprintf(out, "  %-20s - %s\n", v.Name(), v.Description())
		}
	},
}
