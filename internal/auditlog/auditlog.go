// Package auditlog keeps a capped in-memory record of relay events for the
// /logs pages. It is a side channel: Record never blocks, never fails, and
// a nil *Log is a valid no-op recorder, so the relay path cannot be slowed
// or broken by it.
package auditlog

import (
	"sync"
	"time"
)

// Entry is one recorded relay event.
type Entry struct {
	TS   time.Time      `json:"ts"`
	Room string         `json:"room"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Log is a fixed-capacity ring of entries with FIFO eviction.
type Log struct {
	mu      sync.Mutex
	max     int
	entries []Entry
	head    int // next write position once the ring is full
}

// New returns a log holding at most max entries. max < 1 falls back to 1.
func New(max int) *Log {
	if max < 1 {
		max = 1
	}
	return &Log{max: max, entries: make([]Entry, 0, max)}
}

// Record appends an event, evicting the oldest entry when full.
func (l *Log) Record(typ, room string, data map[string]any) {
	if l == nil {
		return
	}
	e := Entry{TS: time.Now().UTC(), Room: room, Type: typ, Data: data}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) < l.max {
		l.entries = append(l.entries, e)
		return
	}
	l.entries[l.head] = e
	l.head = (l.head + 1) % l.max
}

// Len reports the number of retained entries.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Snapshot returns the retained entries, newest first.
func (l *Log) Snapshot() []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries))
	// Walk backwards from the most recently written slot.
	for i := len(l.entries) - 1; i >= 0; i-- {
		out = append(out, l.entries[(l.head+i)%len(l.entries)])
	}
	return out
}
