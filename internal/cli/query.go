package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/report"
	"github.com/pgEdge/pgedge-trades/internal/trades"
	"github.com/pgEdge/pgedge-trades/internal/view"
)

var (
	addCodes   []string
	allClients bool
	viewMode   string
	viewFormat string
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List selectable clients",
	Long: `List the configured default clients, plus any added with --add,
that have trades in the loaded history. Codes are zero-padded to six
digits, so 51851 and 051851 name the same client.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(context.Background())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range t.Clients(selectedCodes()) {
			fmt.Fprintln(out, c.Label())
		}
		return nil
	},
}

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List trade dates, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(context.Background())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, d := range t.Dates() {
			fmt.Fprintln(out, trades.FormatDate(d))
		}
		return nil
	},
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show a pivot view",
	Long: `Show trade history as pivot tables with Quantity and price columns
for BUY and SELL.

Example:
  pgedge-trades view client 051851 --mode by-date --source trades.xlsx
  pgedge-trades view date 2025-01-06 --add 999999 --format json`,
}

var viewClientCmd = &cobra.Command{
	Use:   "client CODE",
	Short: "Show one client's trades by instrument or by date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := view.Mode(viewMode)
		if mode != view.ModeByInstrument && mode != view.ModeByDate {
			return fmt.Errorf("mode must be %s or %s", view.ModeByInstrument, view.ModeByDate)
		}
		return renderView(cmd, mode, view.Request{ClientCode: args[0]})
	},
}

var viewDateCmd = &cobra.Command{
	Use:   "date YYYY-MM-DD",
	Short: "Show every selected client's trades on one date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := time.Parse(trades.DateLayout, args[0])
		if err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", args[0])
		}
		req := view.Request{Date: date}
		if !allClients {
			req.Clients = selectedCodes()
		}
		return renderView(cmd, view.ModeByDateAllClients, req)
	},
}

func init() {
	for _, c := range []*cobra.Command{clientsCmd, viewDateCmd} {
		c.Flags().StringSliceVar(&addCodes, "add", nil,
			"additional client codes to include")
	}
	viewDateCmd.Flags().BoolVar(&allClients, "all", false,
		"include every client instead of the selected ones")

	viewCmd.PersistentFlags().StringVar(&viewFormat, "format", string(report.FormatTable),
		"output format: table or json")
	viewClientCmd.Flags().StringVar(&viewMode, "mode", string(view.ModeByInstrument),
		"view mode: by-instrument or by-date")

	viewCmd.AddCommand(viewClientCmd)
	viewCmd.AddCommand(viewDateCmd)
}

func selectedCodes() []string {
	return trades.MergeCodes(cfg.Clients.DefaultCodes, addCodes...)
}

// renderView prints a view. A selection without trades is reported as
// a warning, not a failure.
func renderView(cmd *cobra.Command, mode view.Mode, req view.Request) error {
	format, err := report.ParseFormat(viewFormat)
	if err != nil {
		return err
	}

	s, err := newSession(context.Background())
	if err != nil {
		return err
	}

	res, err := s.Render(mode, req)
	if trades.IsNoData(err) {
		logging.Warn().Err(err).Msg("Nothing to show")
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	return report.Write(cmd.OutOrStdout(), res, format)
}
