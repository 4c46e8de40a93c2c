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
	"container/list"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-trades/internal/aggregate"
	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/trades"
)

// DefaultCacheSize is the number of client summaries kept per session.
const DefaultCacheSize = 64

// Session holds one loaded trade table and the client summaries
// computed from it. Reloading the table drops every cached summary.
type Session struct {
	mu    sync.Mutex
	table *trades.Table
	cache *summaryCache

	hits   int64
	misses int64
}

// NewSession creates a session over t. A cacheSize below 1 disables
// summary caching.
func NewSession(t *trades.Table, cacheSize int) *Session {
	return &Session{
		table: t,
		cache: newSummaryCache(cacheSize),
	}
}

// Table returns the loaded table.
func (s *Session) Table() *trades.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Reload replaces the loaded table and clears the summary cache.
func (s *Session) Reload(t *trades.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
	s.cache.clear()
	if t != nil {
		logging.Debug().
			Str("table_id", t.ID().String()).
			Int("rows", t.Len()).
			Msg("Session table reloaded")
	}
}

// ClientSummary returns the client's per date and total summary,
// computing it on first use for the current table.
func (s *Session) ClientSummary(code string) (*aggregate.Result, error) {
	code = trades.NormalizeClientCode(code)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, fmt.Errorf("no trade table loaded")
	}
	key := cacheKey{table: s.table.ID(), code: code}
	if res, ok := s.cache.get(key); ok {
		s.hits++
		return res, nil
	}
	s.misses++

	res, err := aggregate.ClientSummary(s.table, code)
	if err != nil {
		return nil, err
	}
	s.cache.put(key, res)
	return res, nil
}

// CacheStats returns summary cache hits and misses.
func (s *Session) CacheStats() (hits, misses int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}

// Render runs the view registered for mode.
func (s *Session) Render(mode Mode, req Request) (*Result, error) {
	v, err := Get(mode)
	if err != nil {
		return nil, err
	}
	return v.Render(s, req)
}

type cacheKey struct {
	table uuid.UUID
	code  string
}

type cacheEntry struct {
	key    cacheKey
	result *aggregate.Result
}

// summaryCache is a least recently used map of client summaries.
type summaryCache struct {
	max     int
	order   *list.List
	entries map[cacheKey]*list.Element
}

func newSummaryCache(max int) *summaryCache {
	return &summaryCache{
		max:     max,
		order:   list.New(),
		entries: make(map[cacheKey]*list.Element),
	}
}

func (c *summaryCache) get(k cacheKey) (*aggregate.Result, bool) {
	el, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).result, true
}

func (c *summaryCache) put(k cacheKey, res *aggregate.Result) {
	if c.max < 1 {
		return
	}
	if el, ok := c.entries[k]; ok {
		el.Value.(*cacheEntry).result = res
		c.order.MoveToFront(el)
		return
	}
	c.entries[k] = c.order.PushFront(&cacheEntry{key: k, result: res})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *summaryCache) size() int {
	return c.order.Len()
}

func (c *summaryCache) clear() {
	c.order.Init()
	c.entries = make(map[cacheKey]*list.Element)
}
