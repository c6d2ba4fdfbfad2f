package watcher

import (
	"testing"
	"time"
)

func TestDebouncerIgnoresStaleFire(t *testing.T) {
	d := newDebouncer(time.Hour)
	defer d.stop()

	var fired []pending
	record := func(p pending) { fired = append(fired, p) }

	d.schedule("a.png", record)
	first := pending{name: "a.png", gen: d.gens["a.png"]}

	// A second event arrives after the first timer already fired.
	d.schedule("a.png", record)
	second := pending{name: "a.png", gen: d.gens["a.png"]}

	if d.take(first) {
		t.Fatal("stale fire was accepted")
	}
	if _, exists := d.timers["a.png"]; !exists {
		t.Fatal("stale fire dropped the newer timer")
	}

	if !d.take(second) {
		t.Fatal("latest fire was rejected")
	}
	if d.take(second) {
		t.Error("the same fire was accepted twice")
	}
	if len(fired) != 0 {
		t.Errorf("timers fired early: %v", fired)
	}
}

func TestDebouncerKeepsNamesApart(t *testing.T) {
	d := newDebouncer(time.Hour)
	defer d.stop()

	noop := func(pending) {}
	d.schedule("a.png", noop)
	d.schedule("b.png", noop)

	a := pending{name: "a.png", gen: d.gens["a.png"]}
	b := pending{name: "b.png", gen: d.gens["b.png"]}

	if !d.take(b) || !d.take(a) {
		t.Fatal("expected both names to be taken")
	}
	if len(d.timers) != 0 || len(d.gens) != 0 {
		t.Errorf("entries left behind: timers=%d gens=%d", len(d.timers), len(d.gens))
	}
}

func TestDebouncerFires(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	defer d.stop()

	fired := make(chan pending, 1)
	d.schedule("a.png", func(p pending) { fired <- p })

	select {
	case p := <-fired:
		if !d.take(p) {
			t.Error("fired schedule was not accepted")
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for timer")
	}
}
