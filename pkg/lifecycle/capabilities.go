package lifecycle

import (
	"sync"
	"time"
)

// Capability is an orthogonal behaviour attached to a controller at
// construction. Attach returns a function that undoes it.
type Capability interface {
	Attach(c *Controller) (detach func())
}

// CapabilityFunc adapts a function to Capability.
type CapabilityFunc func(c *Controller) func()

func (fn CapabilityFunc) Attach(c *Controller) func() {
	return fn(c)
}

// DelayedRequestNotifier calls OnDelay once per submission that is still
// running after Delay. It never affects the submission itself.
type DelayedRequestNotifier struct {
	// Delay defaults to Settings.Timing.DelayedRequest.
	Delay   time.Duration
	OnDelay func(formID string)
}

func (n DelayedRequestNotifier) Attach(c *Controller) func() {
	delay := n.Delay
	if delay <= 0 {
		delay = c.Settings().Timing.DelayedRequest
	}
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
			timer = nil
		}
	}

	unsubscribe := c.Subscribe(func(s Signal) {
		switch s.Name {
		case SignalSubmitStart:
			stop()
			mu.Lock()
			timer = time.AfterFunc(delay, func() {
				if n.OnDelay != nil {
					n.OnDelay(s.FormID)
				}
			})
			mu.Unlock()
		case SignalSubmitEnd:
			stop()
		}
	})
	return func() {
		unsubscribe()
		stop()
	}
}

// ProgressIndicator toggles a busy marker on the submit control. Busy is set
// once a submission has run for Delay and cleared when it ends.
type ProgressIndicator struct {
	// Delay defaults to Settings.Timing.ProgressIndicatorDelay.
	Delay   time.Duration
	SetBusy func(busy bool)
}

func (p ProgressIndicator) Attach(c *Controller) func() {
	if p.SetBusy == nil {
		return nil
	}
	delay := p.Delay
	if delay <= 0 {
		delay = c.Settings().Timing.ProgressIndicatorDelay
	}

	var (
		mu    sync.Mutex
		gen   int
		busy  bool
		timer *time.Timer
	)
	reset := func() {
		mu.Lock()
		defer mu.Unlock()
		gen++
		if timer != nil {
			timer.Stop()
			timer = nil
		}
		if busy {
			busy = false
			p.SetBusy(false)
		}
	}

	unsubscribe := c.Subscribe(func(s Signal) {
		switch s.Name {
		case SignalSubmitStart:
			reset()
			mu.Lock()
			current := gen
			timer = time.AfterFunc(delay, func() {
				mu.Lock()
				defer mu.Unlock()
				if gen != current || busy {
					return
				}
				busy = true
				p.SetBusy(true)
			})
			mu.Unlock()
		case SignalSubmitEnd:
			reset()
		}
	})
	return func() {
		unsubscribe()
		reset()
	}
}
