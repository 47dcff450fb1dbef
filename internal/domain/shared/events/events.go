package events

import "time"

// DomainEvent is raised by an aggregate and relayed through the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Recorder collects events raised during an aggregate mutation. Embed it in
// aggregates and Drain after a successful persist.
type Recorder struct {
	pending []DomainEvent
}

func (r *Recorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

// Drain returns the recorded events and clears the recorder.
func (r *Recorder) Drain() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}

// Base carries the common event fields.
type Base struct {
	Name      string
	Aggregate string
	At        time.Time
}

func (b Base) EventName() string {
	return b.Name
}

func (b Base) AggregateID() string {
	return b.Aggregate
}

func (b Base) OccurredAt() time.Time {
	return b.At
}
