package controller

import (
	"sync"
	"time"
)

// CountdownTicks and TickInterval are the start-gate timing contract: the
// overlay counts 3, 2, 1 at one tick per second and then live control
// begins. Both peers hard-code the same values.
const (
	CountdownTicks = 3
	TickInterval   = time.Second
)

// Sequencer runs the local start countdown. It is purely client-local: no
// server message can cancel a running countdown, and a further Start
// restarts it from the top.
type Sequencer struct {
	mu       sync.Mutex
	interval time.Duration
	ticks    int
	stop     chan struct{} // nil when idle; closing aborts the run
}

// NewSequencer uses the standard 3s contract.
func NewSequencer() *Sequencer {
	return &Sequencer{interval: TickInterval, ticks: CountdownTicks}
}

// newSequencerAt allows tests to compress time.
func newSequencerAt(interval time.Duration, ticks int) *Sequencer {
	return &Sequencer{interval: interval, ticks: ticks}
}

// Start arms the countdown. onTick is called with the remaining count
// after each tick (ticks-1 .. 0) and onDone after the final tick; both
// may be nil. A countdown already in flight is abandoned and the count
// restarts from the top, so at most one run is ever live.
func (q *Sequencer) Start(onTick func(remaining int), onDone func()) {
	q.mu.Lock()
	if q.stop != nil {
		close(q.stop)
	}
	stop := make(chan struct{})
	q.stop = stop
	q.mu.Unlock()

	go func() {
		t := time.NewTicker(q.interval)
		defer t.Stop()
		remaining := q.ticks
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				remaining--
				if onTick != nil {
					onTick(remaining)
				}
				if remaining <= 0 {
					q.finish(stop)
					if onDone != nil {
						onDone()
					}
					return
				}
			}
		}
	}()
}

// Running reports whether a countdown is in flight.
func (q *Sequencer) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stop != nil
}

func (q *Sequencer) finish(stop chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stop == stop {
		q.stop = nil
	}
}
