//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package trades

import (
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Table is an immutable set of normalized trade records sorted
// ascending by trade date. Every filter returns a new Table.
type Table struct {
	id      uuid.UUID
	source  string
	columns []string
	present map[string]struct{}
	records []Record
}

// Client is a selectable client account.
type Client struct {
	Code string
	Name string
}

// Label renders the client the way selection lists show it.
func (c Client) Label() string {
	return c.Code + " - " + c.Name
}

// NewTable builds a Table from records. The records are copied and
// stably sorted by trade date. columns names the source columns the
// records were read from.
func NewTable(source string, columns []string, records []Record) *Table {
	t := &Table{
		id:      uuid.New(),
		source:  source,
		columns: slices.Clone(columns),
		present: make(map[string]struct{}, len(columns)),
		records: slices.Clone(records),
	}
	for _, c := range columns {
		t.present[c] = struct{}{}
	}
	sort.SliceStable(t.records, func(i, j int) bool {
		return t.records[i].TradeDate.Before(t.records[j].TradeDate)
	})
	return t
}

// ID uniquely identifies this table instance. Derived tables get
// their own ID.
func (t *Table) ID() uuid.UUID {
	return t.id
}

// Source returns where the table was loaded from.
func (t *Table) Source() string {
	return t.source
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of the records in date order.
func (t *Table) Records() []Record {
	return slices.Clone(t.records)
}

// Columns returns the source column names.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the source provided the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.present[name]
	return ok
}

// Filter returns a table holding the records for which keep is true.
func (t *Table) Filter(keep func(Record) bool) *Table {
	kept := make([]Record, 0)
	for _, r := range t.records {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	derived := &Table{
		id:      uuid.New(),
		source:  t.source,
		columns: t.columns,
		present: t.present,
		records: kept,
	}
	return derived
}

// FilterClient returns the trades of one client. The code is
// normalized before comparison.
func (t *Table) FilterClient(code string) *Table {
	code = NormalizeClientCode(code)
	return t.Filter(func(r Record) bool {
		return r.ClientCode == code
	})
}

// FilterDate returns the trades on date made by any of the given
// clients. An empty client list matches every client.
func (t *Table) FilterDate(date time.Time, codes []string) *Table {
	date = Date(date)
	set := codeSet(codes)
	return t.Filter(func(r Record) bool {
		if !r.TradeDate.Equal(date) {
			return false
		}
		if len(set) == 0 {
			return true
		}
		_, ok := set[r.ClientCode]
		return ok
	})
}

// Clients returns the distinct (code, name) pairs among the given
// clients in order of first appearance. An empty list returns every
// client in the table.
func (t *Table) Clients(codes []string) []Client {
	set := codeSet(codes)
	seen := make(map[Client]struct{})
	clients := make([]Client, 0)
	for _, r := range t.records {
		if len(set) > 0 {
			if _, ok := set[r.ClientCode]; !ok {
				continue
			}
		}
		c := Client{Code: r.ClientCode, Name: r.ClientName}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		clients = append(clients, c)
	}
	return clients
}

// Dates returns the distinct trade dates, newest first. Rows without
// a trade date are not listed.
func (t *Table) Dates() []time.Time {
	dates := make([]time.Time, 0)
	for i := len(t.records) - 1; i >= 0; i-- {
		d := t.records[i].TradeDate
		if d.IsZero() {
			continue
		}
		if len(dates) == 0 || !dates[len(dates)-1].Equal(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

func codeSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c = NormalizeClientCode(c); c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}
