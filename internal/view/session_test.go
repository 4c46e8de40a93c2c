package view

import (
	"testing"

	"github.com/pgEdge/pgedge-trades/internal/trades"
)

func TestSessionCache(t *testing.T) {
	s := NewSession(sampleTable(), DefaultCacheSize)

	first, err := s.ClientSummary("051851")
	if err != nil {
		t.Fatalf("ClientSummary failed: %v", err)
	}
	second, err := s.ClientSummary("51851")
	if err != nil {
		t.Fatalf("ClientSummary failed: %v", err)
	}
	if first != second {
		t.Error("Expected cached summary to be reused")
	}

	hits, misses := s.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}
}

func TestSessionReload(t *testing.T) {
	s := NewSession(sampleTable(), DefaultCacheSize)

	before, err := s.ClientSummary("051851")
	if err != nil {
		t.Fatalf("ClientSummary failed: %v", err)
	}

	s.Reload(trades.NewTable("reloaded", trades.RequiredColumns, []trades.Record{
		trade("051851", "ZZZ", 9, trades.Sell, "1", "1"),
	}))
	if s.cache.size() != 0 {
		t.Errorf("Expected empty cache after reload, got %d entries", s.cache.size())
	}

	after, err := s.ClientSummary("051851")
	if err != nil {
		t.Fatalf("ClientSummary failed: %v", err)
	}
	if before == after {
		t.Error("Expected a fresh summary after reload")
	}
	if after.Rows[0].Instrument != "ZZZ" {
		t.Errorf("Expected summary of the reloaded table, got %s", after.Rows[0].Instrument)
	}

	s.Reload(nil)
	if _, err := s.ClientSummary("051851"); err == nil {
		t.Error("Expected error without a table")
	}
}

func TestSessionCacheDisabled(t *testing.T) {
	s := NewSession(sampleTable(), 0)

	for i := 0; i < 3; i++ {
		if _, err := s.ClientSummary("051851"); err != nil {
			t.Fatalf("ClientSummary failed: %v", err)
		}
	}
	hits, misses := s.CacheStats()
	if hits != 0 || misses != 3 {
		t.Errorf("Expected 0 hits and 3 misses, got %d and %d", hits, misses)
	}
}

func TestSessionNoDataNotCached(t *testing.T) {
	s := NewSession(sampleTable(), DefaultCacheSize)

	_, err := s.ClientSummary("000001")
	if !trades.IsNoData(err) {
		t.Fatalf("Expected no data error, got %v", err)
	}
	if s.cache.size() != 0 {
		t.Errorf("Expected nothing cached, got %d entries", s.cache.size())
	}
}

func TestSummaryCacheEviction(t *testing.T) {
	s := NewSession(sampleTable(), 1)

	if _, err := s.ClientSummary("051851"); err != nil {
		t.Fatalf("ClientSummary failed: %v", err)
	}
	if _, err := s.ClientSummary("118095"); err != nil {
		t.Fatalf("ClientSummary failed: %v", err)
	}
	if s.cache.size() != 1 {
		t.Fatalf("Expected 1 cached entry, got %d", s.cache.size())
	}

	// The first client was evicted.
	if _, err := s.ClientSummary("051851"); err != nil {
		t.Fatalf("ClientSummary failed: %v", err)
	}
	hits, misses := s.CacheStats()
	if hits != 0 || misses != 3 {
		t.Errorf("Expected 0 hits and 3 misses, got %d and %d", hits, misses)
	}
}
