// Package reports persists treasury report snapshots in a WAL so the
// dashboard can stream and chart history across restarts.
package reports

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vusdhub/vusd-station/internal/domain"
)

const (
	defaultReportDir   = "./wal/treasury"
	reportSegmentLimit = 1000
	reportMaxSegments  = 100
	reportKeyPrefix    = "treasury_report_"
)

// WALStore persists treasury reports in an append-only log.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed report store under dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultReportDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "report_",
		SegmentThreshold: reportSegmentLimit,
		MaxSegments:      reportMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init treasury report WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the report to the WAL.
func (s *WALStore) Save(report domain.TreasuryReport) error {
	if s == nil || s.wal == nil {
		return errors.New("treasury report store is not initialized")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshal treasury report")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, reportKeyPrefix+"latest", payload)
}

// SnapshotsAfter returns all reports written after the provided WAL index.
func (s *WALStore) SnapshotsAfter(index uint64) ([]domain.TreasuryReportRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("treasury report store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.TreasuryReportRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(key, reportKeyPrefix) {
			continue
		}
		var report domain.TreasuryReport
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, errors.Wrap(err, "decode treasury report")
		}
		records = append(records, domain.TreasuryReportRecord{
			Index:  idx,
			Report: report,
		})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("treasury report store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
