package lifecycle

import (
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formlife/pkg/model"
)

// Entry is one tracked field value.
type Entry struct {
	Name  string
	Value string
}

// Snapshot is an ordered capture of tracked field values. Fields flagged
// NoValue are never part of a snapshot.
type Snapshot []Entry

// TakeSnapshot captures the tracked values of fields in declaration order.
func TakeSnapshot(fields []model.Field) Snapshot {
	out := make(Snapshot, 0, len(fields))
	for _, field := range fields {
		if field.NoValue {
			continue
		}
		out = append(out, Entry{Name: field.Name, Value: field.Value})
	}
	return out
}

// Value returns the captured value for name.
func (s Snapshot) Value(name string) (string, bool) {
	for _, entry := range s {
		if entry.Name == name {
			return entry.Value, true
		}
	}
	return "", false
}

// Map returns the snapshot as a name → value map.
func (s Snapshot) Map() map[string]string {
	out := make(map[string]string, len(s))
	for _, entry := range s {
		out[entry.Name] = entry.Value
	}
	return out
}

// Equal compares two snapshots structurally. The operands are converted to
// plain slices so cmp does not dispatch back into this method.
func (s Snapshot) Equal(other Snapshot) bool {
	return cmp.Equal([]Entry(s), []Entry(other), cmpopts.EquateEmpty())
}

// Tracker gates re-validation on real value changes. DetectChange reports the
// current snapshot only when it differs from the accepted baseline;
// AcceptChange commits it. Before the first AcceptChange every detection
// reports a change.
type Tracker struct {
	mu          sync.Mutex
	source      func() Snapshot
	baseline    Snapshot
	hasBaseline bool
	latest      Snapshot
	pending     bool
}

// NewTracker builds a tracker reading snapshots from source.
func NewTracker(source func() Snapshot) *Tracker {
	return &Tracker{source: source}
}

// DetectChange returns the current snapshot and true iff it differs from the
// baseline.
func (t *Tracker) DetectChange() (Snapshot, bool) {
	current := t.source()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hasBaseline && current.Equal(t.baseline) {
		t.pending = false
		return nil, false
	}
	t.latest = current
	t.pending = true
	return current, true
}

// AcceptChange commits the most recently detected snapshot as the baseline.
// Without a pending detection the current values are captured instead.
func (t *Tracker) AcceptChange() {
	t.mu.Lock()
	if t.pending {
		t.commit(t.latest)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	current := t.source()
	t.mu.Lock()
	t.commit(current)
	t.mu.Unlock()
}

func (t *Tracker) commit(snapshot Snapshot) {
	t.baseline = snapshot
	t.hasBaseline = true
	t.latest = nil
	t.pending = false
}

// Baseline returns the accepted snapshot.
func (t *Tracker) Baseline() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append(Snapshot(nil), t.baseline...)
}
