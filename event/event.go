package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is one unit of data traversing a pipeline. The zero value is not
// usable; construct events with New.
type Event struct {
	// ID uniquely identifies this event instance.
	ID uuid.UUID
	// CorrelationID ties together every event derived from the same inbound
	// unit of work. Results and failures inherit it from their source.
	CorrelationID string
	// Payload is the opaque event body.
	Payload any
	// Meta carries optional string annotations.
	Meta map[string]string
	// CreatedAt is when this event instance was created.
	CreatedAt time.Time
	// Err is set when the event represents a processing failure.
	Err error
}

// New creates an event with a fresh identity and the given payload.
func New(payload any) *Event {
	id := uuid.New()
	return &Event{
		ID:            id,
		CorrelationID: id.String(),
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

// WithCorrelation creates an event correlated to an external identifier.
func WithCorrelation(correlationID string, payload any) *Event {
	e := New(payload)
	e.CorrelationID = correlationID
	return e
}

// WithMeta returns a copy of the event with the given annotation added.
func (e *Event) WithMeta(key, value string) *Event {
	c := e.clone()
	if c.Meta == nil {
		c.Meta = make(map[string]string, 1)
	}
	c.Meta[key] = value
	return c
}

// Derive creates a new event carrying the given payload while keeping the
// source event's correlation identity. Used for stage results.
func (e *Event) Derive(payload any) *Event {
	return &Event{
		ID:            uuid.New(),
		CorrelationID: e.CorrelationID,
		Payload:       payload,
		Meta:          copyMeta(e.Meta),
		CreatedAt:     time.Now().UTC(),
	}
}

// Failed creates an error event from src, carrying the wrapped cause. The
// failed event keeps the source's correlation identity and payload so error
// handlers can inspect what was being processed.
func Failed(src *Event, err error) *Event {
	return &Event{
		ID:            uuid.New(),
		CorrelationID: src.CorrelationID,
		Payload:       src.Payload,
		Meta:          copyMeta(src.Meta),
		CreatedAt:     time.Now().UTC(),
		Err:           err,
	}
}

// Failed reports whether the event represents a processing failure.
func (e *Event) Failed() bool { return e.Err != nil }

func (e *Event) clone() *Event {
	c := *e
	c.Meta = copyMeta(e.Meta)
	return &c
}

func copyMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
