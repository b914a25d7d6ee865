package treasury

import (
	"sync"
	"time"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// ReportCache holds the last computed report for a configurable window, so
// dashboard reads do not hammer the chain. Owned by whoever composes the
// Aggregator; force-refresh bypasses the window.
type ReportCache struct {
	mu     sync.Mutex
	ttl    time.Duration
	report *domain.TreasuryReport
}

// NewReportCache creates a cache with the given time-to-live. A zero ttl
// disables caching.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{ttl: ttl}
}

// Get returns the cached report when it is still within the window.
func (c *ReportCache) Get(now time.Time) (*domain.TreasuryReport, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.report == nil || c.ttl <= 0 {
		return nil, false
	}
	if now.Sub(c.report.ComputedAt) > c.ttl {
		return nil, false
	}
	return c.report, true
}

// Put stores a fresh report. Last write wins.
func (c *ReportCache) Put(report *domain.TreasuryReport) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = report
}
