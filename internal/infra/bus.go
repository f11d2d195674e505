package infra

import "github.com/google/uuid"

// EventType represents the type of event in the system
type EventType int

const (
	NumberDerived EventType = iota
	MoneyDerived
	TallyCompleted
)

// String returns the string representation of the EventType
func (et EventType) String() string {
	switch et {
	case NumberDerived:
		return "NumberDerived"
	case MoneyDerived:
		return "MoneyDerived"
	case TallyCompleted:
		return "TallyCompleted"
	default:
		return "Unknown"
	}
}

type Event interface {
	EventType() EventType
	EventID() uuid.UUID
}

// Derivation is published for every value produced by an arithmetic step.
type Derivation struct {
	ID       uuid.UUID
	TallyID  uuid.UUID
	Step     int
	Op       string
	Parent   string
	Operand  string
	Result   string
	Currency string
}

func (d Derivation) EventType() EventType {
	if d.Currency != "" {
		return MoneyDerived
	}
	return NumberDerived
}

func (d Derivation) EventID() uuid.UUID { return d.ID }

// Completion is published once a tally has applied all of its operations.
type Completion struct {
	ID      uuid.UUID
	TallyID uuid.UUID
	Result  string
	Steps   int
}

func (c Completion) EventType() EventType { return TallyCompleted }
func (c Completion) EventID() uuid.UUID   { return c.ID }

type Handler func(Event)

// Bus delivers events synchronously, in subscription order. It is not safe for
// concurrent Subscribe and Publish.
type Bus struct{ subs map[EventType][]Handler }

func NewBus() *Bus { return &Bus{subs: map[EventType][]Handler{}} }
func (b *Bus) Publish(e Event) {
	for _, h := range b.subs[e.EventType()] {
		h(e)
	}
}
func (b *Bus) Subscribe(evt EventType, h Handler) { b.subs[evt] = append(b.subs[evt], h) }
