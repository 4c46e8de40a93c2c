// Package view selects the grouping and pivot combination for each of
// the fixed view modes and runs it against a loaded trade table.
package view

import (
	"time"

	"github.com/pgEdge/pgedge-trades/internal/pivot"
)

// Mode names a view.
type Mode string

const (
	// ModeByInstrument shows one client's trades, one table per
	// instrument, indexed by date.
	ModeByInstrument Mode = "by-instrument"

	// ModeByDate shows one client's trades indexed by date and
	// instrument.
	ModeByDate Mode = "by-date"

	// ModeByDateAllClients shows every selected client's trades on one
	// date with weighted average prices.
	ModeByDateAllClients Mode = "by-date-all-clients"
)

// Request carries the user's selection.
type Request struct {
	// ClientCode is required by the client views.
	ClientCode string

	// Date is required by ModeByDateAllClients.
	Date time.Time

	// Clients limits ModeByDateAllClients to these codes. Empty means
	// every client.
	Clients []string
}

// Section is one titled pivot table of a result.
type Section struct {
	Title string
	Table *pivot.Table
}

// Result is the output of a view.
type Result struct {
	Mode      Mode
	Selection string
	Sections  []Section
}

// View defines the interface every view mode implements.
type View interface {
	// Name returns the mode the view is registered under.
	Name() Mode

	// Description returns a human-readable description.
	Description() string

	// Render runs the view. A selection without trades returns a
	// *trades.NoDataError.
	Render(s *Session, req Request) (*Result, error)
}
