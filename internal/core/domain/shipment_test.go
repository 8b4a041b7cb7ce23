package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewShipment_InitialHistory(t *testing.T) {
	s := NewShipment("client_1", testNow)

	if s.Status != ItemNotPickedUp {
		t.Errorf("expected NOT_PICKED_UP, got %s", s.Status)
	}
	if !strings.HasPrefix(s.TrackingCode, ParcelCodePrefix) || len(s.TrackingCode) != len(ParcelCodePrefix)+10 {
		t.Errorf("unexpected tracking code %q", s.TrackingCode)
	}
	if len(s.History) != 1 || s.History[0].Notes != "Initial status: NOT_PICKED_UP" {
		t.Errorf("unexpected history: %+v", s.History)
	}
	events := s.DrainEvents()
	if len(events) != 1 || events[0].Subject != SubjectShipment {
		t.Errorf("expected one shipment event, got %+v", events)
	}
	if len(s.PendingEvents()) != 0 {
		t.Errorf("drain must clear pending events")
	}
}

func TestShipment_UpdateStatus(t *testing.T) {
	s := NewShipment("client_1", testNow)

	changed, err := s.UpdateStatus(ItemInTransit, "courier", testNow)
	if err != nil || !changed {
		t.Fatalf("expected change, got %v %v", changed, err)
	}
	changed, err = s.UpdateStatus(ItemInTransit, "courier", testNow)
	if err != nil || changed {
		t.Fatalf("repeat update must be a no-op, got %v %v", changed, err)
	}
	if _, err := s.UpdateStatus(ItemPickedUp, "courier", testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(s.History) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(s.History))
	}
}

func TestParseFulfillmentStatus(t *testing.T) {
	got, err := ParseFulfillmentStatus(" in_transit ")
	if err != nil || got != ItemInTransit {
		t.Fatalf("expected IN_TRANSIT, got %s %v", got, err)
	}
	for _, raw := range []string{"VALID", "PAID", "lost", ""} {
		if _, err := ParseFulfillmentStatus(raw); !errors.Is(err, ErrInvalidStatusValue) {
			t.Errorf("%q: expected ErrInvalidStatusValue, got %v", raw, err)
		}
	}
}

func TestParseWeightClass(t *testing.T) {
	got, err := ParseWeightClass(" 30KG+ ")
	if err != nil || got != WeightOversized {
		t.Fatalf("expected 30kg+, got %s %v", got, err)
	}
	_, err = ParseWeightClass("2kg")
	if !errors.Is(err, ErrInvalidWeightClass) {
		t.Fatalf("expected ErrInvalidWeightClass, got %v", err)
	}
	if RejectionCode(err) != "invalid_weight_class" {
		t.Errorf("unexpected code %q", RejectionCode(err))
	}
}
