package controller

import (
	"sync"
	"time"
)

// Debouncer runs the last triggered function once the delay has passed
// without a new trigger. Every trigger gets a generation so a callback that
// already fired can be recognised as superseded.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	timer      *time.Timer
	generation uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Trigger(fn func(generation uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.generation++
	generation := d.generation
	d.timer = time.AfterFunc(d.delay, func() {
		fn(generation)
	})
	return generation
}

func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
}

func (d *Debouncer) IsCurrent(generation uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation == generation
}
