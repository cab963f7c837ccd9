// Package tracedb persists recorded motion traces — per-entity position
// samples plus the trigger events they produced — to a local sqlite file.
// Recorded traces are the ground truth for replaying and tuning detection
// thresholds offline.
package tracedb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/wiggle/internal/gesture"
	"github.com/banshee-data/wiggle/internal/monitoring"
)

// DB wraps the sqlite handle for trace storage.
type DB struct {
	*sql.DB
}

// Open opens (or creates) a trace database at path and ensures the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS traces (
			trace_id          TEXT PRIMARY KEY,
			label             TEXT,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS trace_samples (
			trace_id          TEXT,
			entity_id         TEXT,
			x                 DOUBLE,
			y                 DOUBLE,
			t                 DOUBLE,
			FOREIGN KEY(trace_id) REFERENCES traces(trace_id)
		);
		CREATE INDEX IF NOT EXISTS idx_trace_samples_trace_t
			ON trace_samples(trace_id, t);
		CREATE TABLE IF NOT EXISTS trace_events (
			event_id          TEXT PRIMARY KEY,
			trace_id          TEXT,
			entity_id         TEXT,
			t                 DOUBLE,
			path_length       DOUBLE,
			net_displacement  DOUBLE,
			wiggle_ratio      DOUBLE,
			reversals         BIGINT,
			forced            BOOLEAN,
			FOREIGN KEY(trace_id) REFERENCES traces(trace_id)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("create trace schema: %w", err)
	}

	return &DB{db}, nil
}

// TraceInfo summarises one stored trace.
type TraceInfo struct {
	TraceID   string    `json:"trace_id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
	Samples   int       `json:"samples"`
	Events    int       `json:"events"`
}

// TimedSample is one recorded sample tagged with its entity.
type TimedSample struct {
	EntityID string `json:"entity_id"`
	gesture.Sample
}

// CreateTrace registers a new trace and returns its id.
func (db *DB) CreateTrace(label string) (string, error) {
	traceID := uuid.NewString()
	_, err := db.Exec(`INSERT INTO traces (trace_id, label) VALUES (?, ?)`, traceID, label)
	if err != nil {
		return "", fmt.Errorf("insert trace: %w", err)
	}
	return traceID, nil
}

// RecordSample appends one position sample to a trace.
func (db *DB) RecordSample(traceID, entityID string, s gesture.Sample) error {
	_, err := db.Exec(
		`INSERT INTO trace_samples (trace_id, entity_id, x, y, t) VALUES (?, ?, ?, ?, ?)`,
		traceID, entityID, s.X, s.Y, s.T,
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// RecordEvent persists a fired trigger event against a trace.
func (db *DB) RecordEvent(traceID string, ev gesture.Event) error {
	_, err := db.Exec(
		`INSERT INTO trace_events (
			event_id, trace_id, entity_id, t,
			path_length, net_displacement, wiggle_ratio, reversals, forced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, traceID, ev.EntityID, ev.Timestamp,
		ev.Metrics.PathLength, ev.Metrics.NetDisplacement,
		ev.Metrics.WiggleRatio, ev.Metrics.Reversals, ev.Forced,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListTraces returns all stored traces, newest first.
func (db *DB) ListTraces() ([]TraceInfo, error) {
	rows, err := db.Query(`
		SELECT t.trace_id, COALESCE(t.label, ''), t.created_at,
		       (SELECT COUNT(*) FROM trace_samples s WHERE s.trace_id = t.trace_id),
		       (SELECT COUNT(*) FROM trace_events e WHERE e.trace_id = t.trace_id)
		FROM traces t
		ORDER BY t.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	defer rows.Close()

	var infos []TraceInfo
	for rows.Next() {
		var info TraceInfo
		if err := rows.Scan(&info.TraceID, &info.Label, &info.CreatedAt, &info.Samples, &info.Events); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// LatestTraceID returns the id of the most recently created trace.
func (db *DB) LatestTraceID() (string, error) {
	var traceID string
	err := db.QueryRow(`SELECT trace_id FROM traces ORDER BY created_at DESC LIMIT 1`).Scan(&traceID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("trace database is empty")
	}
	if err != nil {
		return "", fmt.Errorf("query latest trace: %w", err)
	}
	return traceID, nil
}

// LoadSamples returns every sample of a trace ordered by timestamp.
func (db *DB) LoadSamples(traceID string) ([]TimedSample, error) {
	rows, err := db.Query(
		`SELECT entity_id, x, y, t FROM trace_samples WHERE trace_id = ? ORDER BY t ASC`,
		traceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []TimedSample
	for rows.Next() {
		var s TimedSample
		if err := rows.Scan(&s.EntityID, &s.X, &s.Y, &s.T); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// LoadEvents returns every recorded event of a trace ordered by timestamp.
func (db *DB) LoadEvents(traceID string) ([]gesture.Event, error) {
	rows, err := db.Query(`
		SELECT event_id, entity_id, t, path_length, net_displacement, wiggle_ratio, reversals, forced
		FROM trace_events WHERE trace_id = ? ORDER BY t ASC`,
		traceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []gesture.Event
	for rows.Next() {
		var ev gesture.Event
		if err := rows.Scan(
			&ev.EventID, &ev.EntityID, &ev.Timestamp,
			&ev.Metrics.PathLength, &ev.Metrics.NetDisplacement,
			&ev.Metrics.WiggleRatio, &ev.Metrics.Reversals, &ev.Forced,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Recorder tees a live detector's ticks and fired events into one trace.
type Recorder struct {
	db      *DB
	traceID string
}

// NewRecorder starts a new trace with the given label and returns a recorder
// bound to it.
func NewRecorder(db *DB, label string) (*Recorder, error) {
	traceID, err := db.CreateTrace(label)
	if err != nil {
		return nil, err
	}
	return &Recorder{db: db, traceID: traceID}, nil
}

// TraceID returns the trace this recorder writes to.
func (r *Recorder) TraceID() string {
	return r.traceID
}

// Attach registers the recorder as a trigger listener on the detector.
// Persistence failures are logged, never propagated into the tick path.
func (r *Recorder) Attach(d *gesture.Detector) {
	d.AddListener(func(ev gesture.Event) {
		if err := r.db.RecordEvent(r.traceID, ev); err != nil {
			monitoring.Logf("tracedb: failed to record event %s: %v", ev.EventID, err)
		}
	})
}

// OnTick records a sample and forwards it to the detector in one call, so a
// recording host drives exactly the same surface as a non-recording one.
func (r *Recorder) OnTick(d *gesture.Detector, entityID string, x, y, t float64) (gesture.Metrics, bool) {
	if err := r.db.RecordSample(r.traceID, entityID, gesture.Sample{X: x, Y: y, T: t}); err != nil {
		monitoring.Logf("tracedb: failed to record sample for %s: %v", entityID, err)
	}
	return d.OnTick(entityID, x, y, t)
}
