package watcher

import "time"

// pending identifies one scheduled conversion. gen tells a timer that
// fired late apart from the one that replaced it.
type pending struct {
	name string
	gen  uint64
}

// debouncer is owned by the Run goroutine; only the fire callbacks run elsewhere.
type debouncer struct {
	delay  time.Duration
	timers map[string]*time.Timer
	gens   map[string]uint64
	next   uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		gens:   make(map[string]uint64),
	}
}

// schedule (re)starts the timer for name. fire runs on the timer goroutine.
func (d *debouncer) schedule(name string, fire func(pending)) {
	if timer, exists := d.timers[name]; exists {
		timer.Stop()
	}

	d.next++
	p := pending{name: name, gen: d.next}
	d.gens[name] = p.gen
	d.timers[name] = time.AfterFunc(d.delay, func() { fire(p) })
}

// take reports whether p is still the latest schedule for its name and, if
// so, forgets it. Stale fires are ignored.
func (d *debouncer) take(p pending) bool {
	if gen, exists := d.gens[p.name]; !exists || gen != p.gen {
		return false
	}
	delete(d.gens, p.name)
	delete(d.timers, p.name)
	return true
}

func (d *debouncer) stop() {
	for _, timer := range d.timers {
		timer.Stop()
	}
}
