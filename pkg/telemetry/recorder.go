package telemetry

import (
	"context"
	"log/slog"
	"sync"
)

// Captured is one event seen by a Memory recorder.
type Captured struct {
	Event Event
	Attrs []slog.Attr
}

// Memory keeps every recorded event in memory.
type Memory struct {
	mu     sync.Mutex
	events []Captured
}

func (m *Memory) Record(_ context.Context, ev Event, attrs ...slog.Attr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Captured{Event: ev, Attrs: attrs})
}

// Events returns a copy of the recorded events in order.
func (m *Memory) Events() []Captured {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Captured, len(m.events))
	copy(out, m.events)
	return out
}

// Count returns how many times ev was recorded.
func (m *Memory) Count(ev Event) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.events {
		if c.Event.Name == ev.Name {
			n++
		}
	}
	return n
}

// Multi fans events out to several recorders.
func Multi(recorders ...Recorder) Recorder {
	return multi(recorders)
}

type multi []Recorder

func (m multi) Record(ctx context.Context, ev Event, attrs ...slog.Attr) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, ev, attrs...)
		}
	}
}
