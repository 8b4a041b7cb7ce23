package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDeriveBatchStatus_Precedence(t *testing.T) {
	cases := []struct {
		name   string
		states []ItemStatus
		want   BatchStatus
	}{
		{"all delivered", []ItemStatus{ItemDelivered, ItemDelivered}, BatchDelivered},
		{"delivered with lagging transit", []ItemStatus{ItemInTransit, ItemDelivered}, BatchInTransit},
		{"picked up and transit", []ItemStatus{ItemPickedUp, ItemInTransit}, BatchInTransit},
		{"out for delivery wins", []ItemStatus{ItemPickedUp, ItemOutForDelivery, ItemDelivered}, BatchOutForDelivery},
		{"picked up", []ItemStatus{ItemNotPickedUp, ItemPickedUp}, BatchPickedUp},
		{"nothing moved", []ItemStatus{ItemNotPickedUp, ItemNotPickedUp}, BatchNotPickedUp},
		{"delivered and not picked up", []ItemStatus{ItemDelivered, ItemNotPickedUp}, BatchNotPickedUp},
		{"classification states ignored", []ItemStatus{ItemInvalid, ItemDelivered, ItemValid}, BatchDelivered},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DeriveBatchStatus(tc.states)
			if !ok {
				t.Fatalf("expected a derived status")
			}
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDeriveBatchStatus_NoFulfillmentStates(t *testing.T) {
	if _, ok := DeriveBatchStatus([]ItemStatus{ItemValid, ItemInvalid, ItemPending}); ok {
		t.Fatalf("expected no derived status")
	}
	if _, ok := DeriveBatchStatus(nil); ok {
		t.Fatalf("expected no derived status for empty input")
	}
}

// ---------------------------------------------------------------------------
// Recompute
// ---------------------------------------------------------------------------

func pricedItem(code string, status ItemStatus, total string) *ShipmentItem {
	fees := NewFeeBreakdown(decimal.RequireFromString(total), decimal.Zero, decimal.Zero, decimal.Zero)
	return &ShipmentItem{TrackingCode: code, Valid: true, Status: status, Fees: fees}
}

func rejectedItem(code string) *ShipmentItem {
	return &ShipmentItem{TrackingCode: code, Status: ItemInvalid}
}

func TestRecompute_TotalsOnlyValidItems(t *testing.T) {
	b := &ShipmentBatch{Status: BatchPending, Items: []*ShipmentItem{
		pricedItem("A", ItemValid, "5.99"),
		pricedItem("B", ItemValid, "9.99"),
		rejectedItem("C"),
	}}

	b.Recompute("test", time.Now())

	if !b.Totals.TotalFee.Equal(decimal.RequireFromString("15.98")) {
		t.Errorf("expected total 15.98, got %s", b.Totals.TotalFee)
	}
	if b.TotalShipments != 3 || b.ValidShipments != 2 || b.InvalidShipments != 1 {
		t.Errorf("unexpected counts: %d/%d/%d", b.TotalShipments, b.ValidShipments, b.InvalidShipments)
	}
	if b.Status != BatchPending {
		t.Errorf("status must be unchanged before fulfillment, got %s", b.Status)
	}
	if !b.Totals.Balanced() {
		t.Errorf("batch totals are not balanced: %+v", b.Totals)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	b := &ShipmentBatch{Status: BatchPickedUp, Items: []*ShipmentItem{
		pricedItem("A", ItemInTransit, "5.99"),
		pricedItem("B", ItemPickedUp, "5.99"),
	}}
	now := time.Now()

	b.Recompute("test", now)
	first := b.Totals
	events := len(b.PendingEvents())
	b.Recompute("test", now)

	if !b.Totals.TotalFee.Equal(first.TotalFee) {
		t.Errorf("totals changed on second recompute")
	}
	if b.Status != BatchInTransit {
		t.Errorf("expected IN_TRANSIT, got %s", b.Status)
	}
	if len(b.PendingEvents()) != events {
		t.Errorf("second recompute must not emit events")
	}
}

func TestRecompute_CancelledIsFinal(t *testing.T) {
	b := &ShipmentBatch{Status: BatchCancelled, Items: []*ShipmentItem{
		pricedItem("A", ItemNotPickedUp, "5.99"),
	}}
	b.Recompute("test", time.Now())
	if b.Status != BatchCancelled {
		t.Errorf("expected CANCELLED, got %s", b.Status)
	}
}

func TestRecompute_PaidKeptUntilParcelsMove(t *testing.T) {
	b := &ShipmentBatch{Status: BatchPaid, Items: []*ShipmentItem{
		pricedItem("A", ItemNotPickedUp, "5.99"),
		pricedItem("B", ItemNotPickedUp, "5.99"),
	}}
	b.Recompute("test", time.Now())
	if b.Status != BatchPaid {
		t.Fatalf("expected PAID to be kept, got %s", b.Status)
	}

	b.Items[0].Status = ItemPickedUp
	b.Recompute("test", time.Now())
	if b.Status != BatchPickedUp {
		t.Errorf("expected PICKED_UP once a parcel moved, got %s", b.Status)
	}
}
