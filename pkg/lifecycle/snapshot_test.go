package lifecycle

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formlife/pkg/model"
)

func TestTakeSnapshotSkipsNoValueFields(t *testing.T) {
	fields := []model.Field{
		{Name: "email", Value: "a@b.com"},
		{Name: "password", Value: "secret"},
		{Name: "password_mirror", Value: "secret", NoValue: true},
	}

	got := TakeSnapshot(fields)
	want := Snapshot{
		{Name: "email", Value: "a@b.com"},
		{Name: "password", Value: "secret"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if v, ok := got.Value("password_mirror"); ok {
		t.Fatalf("mirror field should not be tracked, got %q", v)
	}
}

func TestTrackerAcceptThenDetectReturnsNoChange(t *testing.T) {
	fields := []model.Field{{Name: "email", Value: "a@b.com"}}
	tracker := NewTracker(func() Snapshot { return TakeSnapshot(fields) })

	first, changed := tracker.DetectChange()
	if !changed {
		t.Fatalf("first detection should report a change")
	}
	if v, _ := first.Value("email"); v != "a@b.com" {
		t.Fatalf("unexpected snapshot value %q", v)
	}

	tracker.AcceptChange()
	if snap, changed := tracker.DetectChange(); changed || snap != nil {
		t.Fatalf("expected no change after accept, got %v (%v)", snap, changed)
	}

	fields[0].Value = "c@d.com"
	snap, changed := tracker.DetectChange()
	if !changed {
		t.Fatalf("expected change after value update")
	}
	if diff := cmp.Diff(map[string]string{"email": "c@d.com"}, snap.Map()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	tracker.AcceptChange()
	if diff := cmp.Diff(snap, tracker.Baseline()); diff != "" {
		t.Fatalf("baseline mismatch (-want +got):\n%s", diff)
	}
	if _, changed := tracker.DetectChange(); changed {
		t.Fatalf("expected no change after second accept")
	}
}

func TestSnapshotEqual(t *testing.T) {
	a := Snapshot{{Name: "email", Value: "a@b.com"}}
	b := Snapshot{{Name: "email", Value: "a@b.com"}}

	done := make(chan bool, 1)
	go func() { done <- a.Equal(b) }()
	select {
	case equal := <-done:
		if !equal {
			t.Fatalf("identical snapshots should be equal")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Snapshot.Equal did not return")
	}

	if a.Equal(Snapshot{{Name: "email", Value: "c@d.com"}}) {
		t.Fatalf("different values should not be equal")
	}
	if !Snapshot(nil).Equal(Snapshot{}) {
		t.Fatalf("nil and empty snapshots should be equal")
	}
}

func TestTrackerRoundTripCompletes(t *testing.T) {
	fields := []model.Field{{Name: "email", Value: "a@b.com"}, {Name: "password", Value: "secret"}}
	tracker := NewTracker(func() Snapshot { return TakeSnapshot(fields) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			if _, changed := tracker.DetectChange(); changed {
				tracker.AcceptChange()
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("tracker round trip did not complete")
	}
	if _, changed := tracker.DetectChange(); changed {
		t.Fatalf("expected no change after accept")
	}
}

func TestTrackerAcceptWithoutDetectCapturesCurrent(t *testing.T) {
	fields := []model.Field{{Name: "name", Value: "Ada"}}
	tracker := NewTracker(func() Snapshot { return TakeSnapshot(fields) })

	tracker.AcceptChange()
	if _, changed := tracker.DetectChange(); changed {
		t.Fatalf("expected accepted baseline to match current values")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	var got []SignalName
	unsubscribe := bus.Subscribe(func(s Signal) { got = append(got, s.Name) })

	bus.Emit(Signal{Name: SignalSubmitStart})
	unsubscribe()
	unsubscribe()
	bus.Emit(Signal{Name: SignalSubmitEnd})

	if diff := cmp.Diff([]SignalName{SignalSubmitStart}, got); diff != "" {
		t.Fatalf("signals mismatch (-want +got):\n%s", diff)
	}
}
