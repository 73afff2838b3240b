package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDelayedRequestNotifierFiresForSlowSubmit(t *testing.T) {
	notified := make(chan string, 1)
	c := newController(t, signupForm(), Hooks{
		Submit: func(ctx context.Context, _ *Controller) (Result, error) {
			select {
			case <-notified:
			case <-time.After(time.Second):
			}
			return Result{}, nil
		},
	}, WithCapabilities(DelayedRequestNotifier{
		Delay:   5 * time.Millisecond,
		OnDelay: func(formID string) { notified <- formID },
	}))
	fill(t, c, map[string]string{"email": "a@b.com", "password": "abcdefgh"})

	start := time.Now()
	if _, err := c.ValidateAndSubmit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if time.Since(start) >= time.Second {
		t.Fatalf("notifier never fired")
	}
}

func TestDelayedRequestNotifierStoppedOnFastSubmit(t *testing.T) {
	var mu sync.Mutex
	fired := 0
	var calls int
	c := newController(t, signupForm(), Hooks{Submit: okSubmit(&calls)},
		WithCapabilities(DelayedRequestNotifier{
			Delay: 20 * time.Millisecond,
			OnDelay: func(string) {
				mu.Lock()
				fired++
				mu.Unlock()
			},
		}))
	fill(t, c, map[string]string{"email": "a@b.com", "password": "abcdefgh"})

	if _, err := c.ValidateAndSubmit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired != 0 {
		t.Fatalf("notifier should be stopped by submitEnd, fired %d", fired)
	}
}

func TestProgressIndicatorTogglesBusy(t *testing.T) {
	var mu sync.Mutex
	var states []bool
	busy := make(chan struct{}, 1)
	c := newController(t, signupForm(), Hooks{
		Submit: func(context.Context, *Controller) (Result, error) {
			select {
			case <-busy:
			case <-time.After(time.Second):
			}
			return Result{}, nil
		},
	}, WithCapabilities(ProgressIndicator{
		Delay: time.Millisecond,
		SetBusy: func(b bool) {
			mu.Lock()
			states = append(states, b)
			mu.Unlock()
			if b {
				busy <- struct{}{}
			}
		},
	}))
	fill(t, c, map[string]string{"email": "a@b.com", "password": "abcdefgh"})

	if _, err := c.ValidateAndSubmit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]bool{true, false}, states); diff != "" {
		t.Fatalf("busy states mismatch (-want +got):\n%s", diff)
	}
}
