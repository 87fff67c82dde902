// Package session holds the process-wide active dataset. The session is
// replaced wholesale on every successful load; readers obtain an immutable
// snapshot and are never exposed to a half-replaced table.
package session

import (
	"sync/atomic"
	"time"

	"github.com/datalens/backend/internal/domain/dataset"
)

// Metadata describes the provenance of the active dataset.
type Metadata struct {
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at"`
	RowCount    int       `json:"row_count"`
	ColumnCount int       `json:"column_count"`
}

// Snapshot pairs an immutable table with its provenance. A snapshot never
// mutates after publication; Replace swaps the whole pointer.
type Snapshot struct {
	Table *dataset.Table
	Meta  Metadata
}

// Session is the holder of the currently active dataset. The zero value via
// New is the empty, no-data state.
type Session struct {
	current atomic.Pointer[Snapshot]
}

// New creates an empty session.
func New() *Session {
	return &Session{}
}

// Replace atomically swaps the active table. Safe to call concurrently with
// Current; in-flight readers keep the snapshot they already hold.
func (s *Session) Replace(table *dataset.Table, source string) Metadata {
	meta := Metadata{
		Source:      source,
		LoadedAt:    time.Now().UTC(),
		RowCount:    table.RowCount(),
		ColumnCount: table.ColumnCount(),
	}
	s.current.Store(&Snapshot{Table: table, Meta: meta})
	return meta
}

// Current returns the active snapshot, or ErrNoDataLoaded when nothing has
// been loaded since process start (or since the last Clear).
func (s *Session) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, dataset.ErrNoDataLoaded
	}
	return snap, nil
}

// Clear resets the session to the no-data state.
func (s *Session) Clear() {
	s.current.Store(nil)
}
