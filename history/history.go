// Package history records the linear mutation history of a graph store.
//
// The manager implements graph.Recorder: every structural mutation appends
// one immutable record carrying a monotonic semantic version, the change
// sets, and the full post-change snapshot. Storing the snapshot is what
// makes Revert actually restore content rather than only rewriting a
// version label.
package history

import (
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
)

// DefaultCap bounds history memory: only the most recent records are kept,
// oldest silently evicted.
const DefaultCap = 50

// baseVersion is the version preceding the first recorded mutation.
const baseVersion = "0.1.0"

// Record is one immutable history entry.
type Record struct {
	ID        string          `json:"id"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Message   string          `json:"message"`
	Changes   graph.ChangeSet `json:"changes"`
	Snapshot  graph.Document  `json:"snapshot"`
}

// Manager observes store mutations and keeps the capped linear history.
// It is constructed explicitly and passed to the store via WithRecorder;
// there is no shared global instance, so tests get isolated histories.
type Manager struct {
	records []Record
	current *semver.Version
	cap     int
	logger  *zap.SugaredLogger
}

// Option configures a Manager.
type Option func(*Manager)

// WithCap overrides the history record cap.
func WithCap(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.cap = n
		}
	}
}

// NewManager creates an empty history manager.
func NewManager(logger *zap.SugaredLogger, opts ...Option) *Manager {
	m := &Manager{
		current: semver.MustParse(baseVersion),
		cap:     DefaultCap,
		logger:  logger.Named("history"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record appends one history entry for a store mutation. The snapshot is
// already a deep copy owned by the manager. Synchronous: by the time the
// mutating call returns, the record exists.
func (m *Manager) Record(change graph.ChangeSet, snapshot graph.Document) {
	next := m.current.IncPatch()
	m.current = &next

	rec := Record{
		ID:        uuid.NewString(),
		Version:   next.String(),
		Timestamp: time.Now(),
		Message:   change.Message,
		Changes:   change,
		Snapshot:  snapshot,
	}
	m.records = append(m.records, rec)
	if len(m.records) > m.cap {
		m.records = m.records[len(m.records)-m.cap:]
	}

	m.logger.Debugw("History record appended",
		"version", rec.Version,
		"message", rec.Message,
		"records", len(m.records),
	)
}

// History returns the retained records in chronological order. The slice is
// a copy; records themselves are immutable by convention.
func (m *Manager) History() []Record {
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Len returns the number of retained records.
func (m *Manager) Len() int { return len(m.records) }

// Latest returns the most recent record, if any.
func (m *Manager) Latest() (Record, bool) {
	if len(m.records) == 0 {
		return Record{}, false
	}
	return m.records[len(m.records)-1], true
}

// Find returns the record with the given id or version string.
func (m *Manager) Find(idOrVersion string) (Record, error) {
	for _, rec := range m.records {
		if rec.ID == idOrVersion || rec.Version == idOrVersion {
			return rec, nil
		}
	}
	return Record{}, errors.NotFoundf("history record %q", idOrVersion)
}

// Revert restores the store to the snapshot recorded under the given id or
// version. Records after the target stay in history: the revert itself is
// part of the timeline, not a rewrite of it. The store's counter rewinds
// to the recorded value (see Store.Restore), so mutations after a revert
// reissue counter values from that point.
func (m *Manager) Revert(store *graph.Store, idOrVersion string) error {
	rec, err := m.Find(idOrVersion)
	if err != nil {
		return err
	}
	store.Restore(rec.Snapshot)
	m.logger.Infow("Reverted to recorded snapshot",
		"version", rec.Version,
		"nodes", len(rec.Snapshot.Nodes),
		"edges", len(rec.Snapshot.Edges),
	)
	return nil
}
