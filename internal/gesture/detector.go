package gesture

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Event is the one-shot trigger emitted when a tracked entity is wiggled
// hard enough, or when the host forces a trigger manually. The host's side
// of the contract is to translate an Event into the actual disconnect
// against its graph.
type Event struct {
	EventID   string  `json:"event_id"`
	EntityID  string  `json:"entity_id"`
	Timestamp float64 `json:"timestamp"`
	Metrics   Metrics `json:"metrics"`
	Forced    bool    `json:"forced"`
}

// Config holds detector-level behaviour alongside the classifier thresholds.
type Config struct {
	Thresholds Thresholds

	// MultiEntity selects fan-out mode: every entity that ticks gets an
	// independent session. When false the detector follows a single
	// tracked target and switching targets discards the old history.
	MultiEntity bool
}

// Stats holds aggregate detector counters for the status endpoint.
type Stats struct {
	Enabled        bool  `json:"enabled"`
	ActiveSessions int   `json:"active_sessions"`
	Ticks          int64 `json:"ticks"`
	SamplesDropped int64 `json:"samples_dropped"`
	TriggersFired  int64 `json:"triggers_fired"`
	ForcedTriggers int64 `json:"forced_triggers"`
}

// SessionState is a point-in-time copy of one session, safe to hold across
// ticks. Samples is a deep copy of the live buffer.
type SessionState struct {
	EntityID    string   `json:"entity_id"`
	SampleCount int      `json:"sample_count"`
	LastMetrics Metrics  `json:"last_metrics"`
	Samples     []Sample `json:"samples,omitempty"`
}

// Detector owns every live session and fans ticks out to them. All methods
// are safe for concurrent use; a host with a single tick driver pays one
// uncontended lock per call.
type Detector struct {
	mu        sync.RWMutex
	config    Config
	sessions  map[string]*Session
	enabled   bool
	listeners []func(Event)

	ticks          int64
	samplesDropped int64
	triggersFired  int64
	forcedTriggers int64
}

// NewDetector creates an enabled detector with no tracked entities.
func NewDetector(cfg Config) *Detector {
	return &Detector{
		config:   cfg,
		sessions: make(map[string]*Session),
		enabled:  true,
	}
}

// AddListener registers a trigger callback. Listeners are invoked
// synchronously, outside the detector lock, in registration order.
func (d *Detector) AddListener(fn func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Enable arms detection globally.
func (d *Detector) Enable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = true
}

// Disable disarms detection globally. Equivalent to stopping every session:
// all buffers are discarded and subsequent ticks are ignored until Enable.
func (d *Detector) Disable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = false
	d.sessions = make(map[string]*Session)
}

// Enabled reports whether detection is armed.
func (d *Detector) Enabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled
}

// StartTracking binds a session to the given entity. In single-entity mode
// any session for a different entity is discarded first — switching targets
// never carries over stale motion history. Starting an already-tracked
// entity is a no-op.
func (d *Detector) StartTracking(entityID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		return
	}
	if !d.config.MultiEntity {
		for id := range d.sessions {
			if id != entityID {
				delete(d.sessions, id)
			}
		}
	}
	if _, ok := d.sessions[entityID]; !ok {
		d.sessions[entityID] = newSession(entityID, d.config.Thresholds.TimeWindow)
	}
}

// StopTracking discards the session for the given entity. No trigger fires.
func (d *Detector) StopTracking(entityID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, entityID)
}

// Reset discards every session and all counters, returning the detector to
// its initial armed state. Used between sweep permutations so each
// threshold combination starts clean.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions = make(map[string]*Session)
	d.ticks = 0
	d.samplesDropped = 0
	d.triggersFired = 0
	d.forcedTriggers = 0
}

// OnTick ingests one position sample for an entity and returns the
// classifier metrics plus whether a trigger fired on this tick. The host
// calls it once per frame per tracked entity with a monotonically
// non-decreasing timestamp in seconds.
//
// A tick while disabled, or for an untracked entity in single-entity mode,
// is a benign no-op (a race between selection changes and frame ticks, not
// an error). In multi-entity mode a session is created lazily on the first
// tick for a new entity.
func (d *Detector) OnTick(entityID string, x, y, t float64) (Metrics, bool) {
	d.mu.Lock()
	if !d.enabled {
		d.mu.Unlock()
		return Metrics{}, false
	}
	sess, ok := d.sessions[entityID]
	if !ok {
		if !d.config.MultiEntity {
			d.mu.Unlock()
			return Metrics{}, false
		}
		sess = newSession(entityID, d.config.Thresholds.TimeWindow)
		d.sessions[entityID] = sess
	}

	d.ticks++
	m, fired, accepted := sess.observe(x, y, t, d.config.Thresholds)
	if !accepted {
		d.samplesDropped++
	}

	var ev Event
	var listeners []func(Event)
	if fired {
		d.triggersFired++
		ev = d.newEventLocked(entityID, t, m, false)
		listeners = append(listeners, d.listeners...)
	}
	d.mu.Unlock()

	if fired {
		d.emit(ev, listeners)
	}
	return m, fired
}

// ForceTrigger fires the trigger for an entity immediately, bypassing
// classification. It works whether or not the entity is tracked and even
// while detection is disabled — it is the host's "disconnect now" action.
// Any existing session is reset so stale history cannot double-fire.
func (d *Detector) ForceTrigger(entityID string, t float64) Event {
	d.mu.Lock()
	var m Metrics
	if sess, ok := d.sessions[entityID]; ok {
		m = sess.LastMetrics
		sess.reset()
	}
	d.forcedTriggers++
	ev := d.newEventLocked(entityID, t, m, true)
	listeners := append([]func(Event){}, d.listeners...)
	d.mu.Unlock()

	d.emit(ev, listeners)
	return ev
}

// SetThresholds applies fn to the detector's thresholds under the lock.
// This is the safe way to mutate thresholds at runtime (e.g. from HTTP
// tuning handlers). Existing buffers keep their current window; new
// sessions pick up the new one.
func (d *Detector) SetThresholds(fn func(*Thresholds)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.config.Thresholds)
}

// Thresholds returns a copy of the current thresholds.
func (d *Detector) Thresholds() Thresholds {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config.Thresholds
}

// Stats returns aggregate counters.
func (d *Detector) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Stats{
		Enabled:        d.enabled,
		ActiveSessions: len(d.sessions),
		Ticks:          d.ticks,
		SamplesDropped: d.samplesDropped,
		TriggersFired:  d.triggersFired,
		ForcedTriggers: d.forcedTriggers,
	}
}

// SessionStates returns a point-in-time copy of every live session,
// including a deep copy of each buffer when withSamples is set.
func (d *Detector) SessionStates(withSamples bool) []SessionState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]SessionState, 0, len(d.sessions))
	for _, sess := range d.sessions {
		st := SessionState{
			EntityID:    sess.EntityID,
			SampleCount: sess.Buffer.Len(),
			LastMetrics: sess.LastMetrics,
		}
		if withSamples {
			st.Samples = sess.Buffer.Snapshot()
		}
		out = append(out, st)
	}
	return out
}

func (d *Detector) newEventLocked(entityID string, t float64, m Metrics, forced bool) Event {
	return Event{
		EventID:   fmt.Sprintf("wgl_%s", uuid.NewString()),
		EntityID:  entityID,
		Timestamp: t,
		Metrics:   m,
		Forced:    forced,
	}
}

func (d *Detector) emit(ev Event, listeners []func(Event)) {
	for _, fn := range listeners {
		fn(ev)
	}
}
