package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-trades/internal/datagen"
	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/source"
	"github.com/pgEdge/pgedge-trades/internal/store"
)

var (
	importDropExisting bool
	importBatchSize    int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the source spreadsheet into PostgreSQL",
	Long: `Normalize the source spreadsheet and insert it into the trade_history
table, replacing any earlier import. Later commands run with only
--connection read the stored history.

Example:
  pgedge-trades import --source trades.xlsx --connection "postgres://..."`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDropExisting, "drop-existing", false,
		"drop previously imported trades before loading")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0,
		"rows per INSERT statement (default: 1000)")
}

func runImport(cmd *cobra.Command, args []string) error {
	// Validate configuration
	if err := cfg.ValidateImport(); err != nil {
		return err
	}

	ctx := context.Background()

	r, err := source.Open(cfg.Source, cfg.Sheet)
	if err != nil {
		return err
	}
	t, err := source.Load(ctx, r, cfg.NormalizeOptions())
	if err != nil {
		return err
	}

	// Connect to database
	pool, err := store.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Drop existing schema if requested
	if importDropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := store.DropSchema(ctx, pool); err != nil {
			return err
		}
	}

	if err := store.CreateSchema(ctx, pool); err != nil {
		return err
	}

	batch := datagen.DefaultBatchConfig()
	if importBatchSize > 0 {
		batch.BatchSize = importBatchSize
	}

	importID, err := store.ImportTrades(ctx, pool, t.Records(), cfg.Source, batch)
	if err != nil {
		return err
	}

	logging.Info().
		Str("import_id", importID.String()).
		Str("source", cfg.Source).
		Int("rows", t.Len()).
		Msg("Import complete")
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d trades (import %s)\n", t.Len(), importID)

	return nil
}
