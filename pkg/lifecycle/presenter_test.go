package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formlife/pkg/messages"
)

type gatedRenderer struct {
	field   string
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRenderer) RenderTooltip(_ context.Context, view TooltipView) (string, error) {
	if view.Field == g.field {
		close(g.entered)
		<-g.release
	}
	return view.Message, nil
}

func TestShowTooltipReplacedWhileRendering(t *testing.T) {
	bus := NewBus()
	renderer := &gatedRenderer{field: "a", entered: make(chan struct{}), release: make(chan struct{})}
	p := NewPresenter("f1", bus, renderer, nil)

	var (
		mu  sync.Mutex
		got []string
	)
	bus.Subscribe(func(s Signal) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, fmt.Sprintf("%s:%s", s.Name, s.Field))
	})

	first := make(chan Tooltip, 1)
	go func() {
		first <- p.ShowTooltip(context.Background(), TooltipView{Field: "a", Message: "a failed", Kind: messages.KindInvalidValue})
	}()
	<-renderer.entered

	p.ShowTooltip(context.Background(), TooltipView{Field: "b", Message: "b failed", Kind: messages.KindInvalidValue})
	close(renderer.release)

	select {
	case tip := <-first:
		if tip.State != TooltipDestroyed {
			t.Fatalf("replaced tooltip should come back destroyed, got %s", tip.State)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("first ShowTooltip did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"validation_error_removed:a", "validation_error:b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("signal mismatch (-want +got):\n%s", diff)
	}
	tip, ok := p.Tooltip()
	if !ok || tip.View.Field != "b" || tip.State != TooltipRendered {
		t.Fatalf("expected tooltip on b, got %+v", tip)
	}
	if p.IsInvalid("a") || !p.IsInvalid("b") {
		t.Fatalf("only b should be marked invalid")
	}
}

func TestDestroyTooltipForOtherFieldKeepsTooltip(t *testing.T) {
	p := NewPresenter("f1", NewBus(), nil, nil)
	p.ShowTooltip(context.Background(), TooltipView{Field: "a", Message: "a failed"})

	if p.DestroyTooltipFor("b") {
		t.Fatalf("tooltip on a should survive a blur of b")
	}
	if !p.DestroyTooltipFor("a") {
		t.Fatalf("expected tooltip on a to be destroyed")
	}
	if p.IsErrorVisible() {
		t.Fatalf("no error should remain visible")
	}
}
