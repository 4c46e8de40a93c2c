//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package view

import (
	"errors"
	"fmt"

	"github.com/pgEdge/pgedge-trades/internal/aggregate"
	"github.com/pgEdge/pgedge-trades/internal/pivot"
	"github.com/pgEdge/pgedge-trades/internal/trades"
)

var (
	// ErrClientRequired is returned by client views without a client code.
	ErrClientRequired = errors.New("client code is required")

	// ErrDateRequired is returned by the date view without a date.
	ErrDateRequired = errors.New("trade date is required")
)

type byInstrument struct{}

func (byInstrument) Name() Mode { return ModeByInstrument }

func (byInstrument) Description() string {
	return "One client, one table per instrument indexed by trade date, with a Total row"
}

func (byInstrument) Render(s *Session, req Request) (*Result, error) {
	summary, code, err := clientSummary(s, req)
	if err != nil {
		return nil, err
	}

	res := &Result{Mode: ModeByInstrument, Selection: "client " + code}
	for _, inst := range summary.Instruments() {
		rows := summary.Filter(func(r aggregate.Row) bool {
			return r.Instrument == inst.Code
		})
		tbl, err := pivot.Pivot(rows, []aggregate.Key{aggregate.KeyTradeDate}, pivot.ExecutedPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to pivot instrument %s: %w", inst.Code, err)
		}
		res.Sections = append(res.Sections, Section{
			Title: inst.Code + " - " + inst.Name,
			Table: tbl,
		})
	}
	return res, nil
}

type byDate struct{}

func (byDate) Name() Mode { return ModeByDate }

func (byDate) Description() string {
	return "One client, indexed by trade date and instrument, with Total rows last"
}

func (byDate) Render(s *Session, req Request) (*Result, error) {
	summary, code, err := clientSummary(s, req)
	if err != nil {
		return nil, err
	}

	index := []aggregate.Key{aggregate.KeyTradeDate, aggregate.KeyInstrument, aggregate.KeyInstrumentName}
	tbl, err := pivot.Pivot(summary, index, pivot.ExecutedPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to pivot client %s by date: %w", code, err)
	}
	return &Result{
		Mode:      ModeByDate,
		Selection: "client " + code,
		Sections:  []Section{{Title: "client " + code, Table: tbl}},
	}, nil
}

type byDateAllClients struct{}

func (byDateAllClients) Name() Mode { return ModeByDateAllClients }

func (byDateAllClients) Description() string {
	return "Every selected client on one trade date, with quantity weighted average prices"
}

func (byDateAllClients) Render(s *Session, req Request) (*Result, error) {
	if req.Date.IsZero() {
		return nil, ErrDateRequired
	}
	day := trades.FormatDate(req.Date)

	summary, err := aggregate.DateSummary(s.Table(), req.Date, req.Clients)
	if err != nil {
		return nil, err
	}

	index := []aggregate.Key{
		aggregate.KeyClientCode,
		aggregate.KeyClientName,
		aggregate.KeyInstrument,
		aggregate.KeyInstrumentName,
	}
	tbl, err := pivot.Pivot(summary, index, pivot.WeightedAvgPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to pivot date %s: %w", day, err)
	}
	return &Result{
		Mode:      ModeByDateAllClients,
		Selection: "date " + day,
		Sections:  []Section{{Title: day, Table: tbl}},
	}, nil
}

func clientSummary(s *Session, req Request) (*aggregate.Result, string, error) {
	code := trades.NormalizeClientCode(req.ClientCode)
	if code == "" {
		return nil, "", ErrClientRequired
	}
	summary, err := s.ClientSummary(code)
	if err != nil {
		return nil, code, err
	}
	return summary, code, nil
}

func init() {
	Register(byInstrument{})
	Register(byDate{})
	Register(byDateAllClients{})
}
