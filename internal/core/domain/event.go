package domain

import (
	"fmt"
	"time"
)

// EventSubject names the kind of record a status event belongs to.
type EventSubject string

const (
	SubjectBatch    EventSubject = "batch"
	SubjectItem     EventSubject = "item"
	SubjectShipment EventSubject = "shipment"
)

// StatusChange is one entry of a record's status history.
type StatusChange struct {
	Status    string
	Notes     string
	Actor     string
	Timestamp time.Time
}

// StatusEvent is emitted by every status change and persisted in the same
// write as the change itself. BatchCode is empty for single shipments.
type StatusEvent struct {
	Subject      EventSubject
	TrackingCode string
	BatchCode    string
	From         string
	To           string
	Notes        string
	Actor        string
	OccurredAt   time.Time
}

// PartitionKey groups events that must be delivered in order.
func (e StatusEvent) PartitionKey() string {
	if e.BatchCode != "" {
		return e.BatchCode
	}
	return e.TrackingCode
}

func transitionNotes(from, to string) string {
	if from == "" {
		return "Initial status: " + to
	}
	return fmt.Sprintf("Status changed from %s to %s", from, to)
}

// eventLog collects events raised while a record is mutated in memory.
type eventLog struct {
	events []StatusEvent
}

func (l *eventLog) record(e StatusEvent) {
	l.events = append(l.events, e)
}

// PendingEvents returns the events raised since the last drain without clearing them.
func (l *eventLog) PendingEvents() []StatusEvent {
	return l.events
}

// DrainEvents returns and clears the pending events.
func (l *eventLog) DrainEvents() []StatusEvent {
	out := l.events
	l.events = nil
	return out
}
