package upload

import (
	"sync"

	"github.com/google/uuid"
)

// reportLocks serializes coordinator runs per (agency, report type). The
// snapshot-replace step reads then rewrites the active row set, so two
// concurrent runs over the same slice of data would race. Runs for different
// agencies or different report types proceed concurrently.
type reportLocks struct {
	mu    sync.Mutex
	locks map[lockKey]*sync.Mutex
}

type lockKey struct {
	agencyID   uuid.UUID
	reportType ReportType
}

func newReportLocks() *reportLocks {
	return &reportLocks{locks: make(map[lockKey]*sync.Mutex)}
}

// acquire blocks until the (agency, report type) slot is free and returns the
// release function.
func (l *reportLocks) acquire(agencyID uuid.UUID, reportType ReportType) func() {
	key := lockKey{agencyID: agencyID, reportType: reportType}

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
