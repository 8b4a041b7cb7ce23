package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Shipment is a single parcel booked outside of a batch. It enters
// fulfillment directly at NOT_PICKED_UP.
type Shipment struct {
	TrackingCode    string
	OwnerID         string
	Pickup          PickupDetails
	ReceiverName    string
	ReceiverPhone   string
	DeliveryAddress string
	PostalCode      string
	WeightClass     WeightClass
	DeliverySpeed   string
	Addons          []string
	DistanceKm      decimal.Decimal
	Fees            FeeBreakdown
	Status          ItemStatus
	History         []StatusChange
	CreatedAt       time.Time
	UpdatedAt       time.Time

	eventLog
}

// NewShipment opens a shipment at NOT_PICKED_UP with its initial history entry.
func NewShipment(ownerID string, now time.Time) *Shipment {
	s := &Shipment{
		TrackingCode: NewParcelCode(),
		OwnerID:      ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.move(ItemNotPickedUp, systemActor, now)
	return s
}

// UpdateStatus moves the shipment forward to target. It reports false when
// the shipment is already there.
func (s *Shipment) UpdateStatus(target ItemStatus, actor string, now time.Time) (bool, error) {
	if !target.IsFulfillment() {
		return false, fmt.Errorf("%w: %s", ErrInvalidStatusValue, target)
	}
	if s.Status == target {
		return false, nil
	}
	if s.Status.Stage() > target.Stage() {
		return false, fmt.Errorf("%w: %s cannot move from %s to %s", ErrInvalidTransition, s.TrackingCode, s.Status, target)
	}
	s.move(target, actor, now)
	return true, nil
}

func (s *Shipment) move(to ItemStatus, actor string, now time.Time) {
	from := s.Status
	s.Status = to
	s.UpdatedAt = now

	notes := transitionNotes(string(from), string(to))
	s.History = append(s.History, StatusChange{Status: string(to), Notes: notes, Actor: actor, Timestamp: now})
	s.record(StatusEvent{
		Subject:      SubjectShipment,
		TrackingCode: s.TrackingCode,
		From:         string(from),
		To:           string(to),
		Notes:        notes,
		Actor:        actor,
		OccurredAt:   now,
	})
}
