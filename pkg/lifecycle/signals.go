package lifecycle

import (
	"sync"

	"github.com/goliatone/go-formlife/pkg/messages"
)

// SignalName identifies an observable controller event.
type SignalName string

const (
	SignalSubmitStart            SignalName = "submitStart"
	SignalSubmitEnd              SignalName = "submitEnd"
	SignalValidationError        SignalName = "validation_error"
	SignalValidationErrorRemoved SignalName = "validation_error_removed"
	SignalErrorShown             SignalName = "error_shown"
	SignalErrorHidden            SignalName = "error_hidden"
	SignalHalted                 SignalName = "halted"
)

// Signal is delivered to subscribers. Field and Message are set for the
// error signals only.
type Signal struct {
	Name    SignalName
	FormID  string
	Field   string
	Message string
	Kind    messages.Kind
}

// Bus delivers signals synchronously, in subscription order. Subscribers run
// outside the bus lock and may subscribe or unsubscribe from inside a handler.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn func(Signal)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function removing it.
func (b *Bus) Subscribe(fn func(Signal)) func() {
	if b == nil || fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, sub := range b.subs {
				if sub.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit delivers s to every current subscriber.
func (b *Bus) Emit(s Signal) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.RUnlock()
	for _, sub := range subs {
		sub.fn(s)
	}
}
