package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homestay/internal/domain/shared/events"
)

// EventRecord is a serialized domain event awaiting publication.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
}

// Encode serializes a domain event into an outbox record.
func Encode(ev events.DomainEvent, idGen func() string) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	if idGen == nil {
		idGen = defaultIDGenerator
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

// RecordDomainEvents encodes and stores each event. A nil outbox is a no-op
// so handlers stay usable without messaging configured.
func RecordDomainEvents(ctx context.Context, box Outbox, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	for _, ev := range evs {
		rec, err := Encode(ev, nil)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func defaultIDGenerator() string {
	return fmt.Sprintf("evt-%d", time.Now().UnixNano())
}
