//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report renders view results as text tables and JSON documents.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pgEdge/pgedge-trades/internal/pivot"
	"github.com/pgEdge/pgedge-trades/internal/view"
)

// Format selects an output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (expected table or json)", s)
	}
}

// Document is the JSON shape of a view result.
type Document struct {
	Mode      string    `json:"mode"`
	Selection string    `json:"selection"`
	Sections  []Section `json:"sections"`
}

// Section is one pivot table.
type Section struct {
	Title     string   `json:"title"`
	Index     []string `json:"index"`
	Columns   []string `json:"columns"`
	Rows      []Row    `json:"rows"`
	Truncated bool     `json:"truncated,omitempty"`
}

// Row holds the index values and the value cells in column order.
type Row struct {
	Index  []string  `json:"index"`
	Values []float64 `json:"values"`
}

// NewDocument converts a view result.
func NewDocument(res *view.Result) Document {
	doc := Document{
		Mode:      string(res.Mode),
		Selection: res.Selection,
		Sections:  make([]Section, 0, len(res.Sections)),
	}
	for _, s := range res.Sections {
		sec := Section{
			Title:     s.Title,
			Index:     s.Table.Index,
			Columns:   columnNames(s.Table),
			Rows:      make([]Row, 0, s.Table.Len()),
			Truncated: s.Table.Truncated,
		}
		for _, r := range s.Table.Rows {
			sec.Rows = append(sec.Rows, Row{
				Index: r.Index,
				Values: []float64{
					float64(r.Buy.Quantity), r.Buy.Price.InexactFloat64(),
					float64(r.Sell.Quantity), r.Sell.Price.InexactFloat64(),
				},
			})
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return doc
}

// Write renders res in the given format.
func Write(w io.Writer, res *view.Result, format Format) error {
	if format == FormatJSON {
		return WriteJSON(w, res)
	}
	return WriteText(w, res)
}

// WriteJSON writes res as an indented JSON document.
func WriteJSON(w io.Writer, res *view.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(res))
}

// WriteText writes each section as an aligned text table.
func WriteText(w io.Writer, res *view.Result) error {
	for i, s := range res.Sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeSection(w, s); err != nil {
			return err
		}
	}
	return nil
}

func writeSection(w io.Writer, s view.Section) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", s.Title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(s.Table.Header(), "\t")+"\t")
	for _, r := range s.Table.Rows {
		cells := append([]string(nil), r.Index...)
		cells = append(cells,
			strconv.FormatInt(r.Buy.Quantity, 10), r.Buy.Price.String(),
			strconv.FormatInt(r.Sell.Quantity, 10), r.Sell.Price.String(),
		)
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.Table.Truncated {
		_, err := fmt.Fprintln(w, "note: fractional quantities were truncated to whole numbers")
		return err
	}
	return nil
}

func columnNames(t *pivot.Table) []string {
	cols := t.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.String()
	}
	return names
}
