package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

// newIngestedBatch builds a batch with valid items followed by rejected ones.
func newIngestedBatch(valid, invalid int) *ShipmentBatch {
	b := NewBatch("client_1", "standard", PickupDetails{Address: "Calgary, Alberta, Canada"}, valid+invalid, testNow)
	items := make([]*ShipmentItem, 0, valid+invalid)
	row := 1
	for i := 0; i < valid; i++ {
		it := NewItem(row, RawRow{ColumnReceiverName: "Jane"}, testNow)
		it.Accept("1 Main St, Calgary, Alberta, Canada", WeightSmall, decimal.NewFromInt(3),
			NewFeeBreakdown(decimal.RequireFromString("5.99"), decimal.Zero, decimal.Zero, decimal.Zero))
		items = append(items, it)
		row++
	}
	for i := 0; i < invalid; i++ {
		it := NewItem(row, RawRow{ColumnReceiverName: "Joe"}, testNow)
		it.Reject(Reject(ErrMissingField, "Missing required fields: address"))
		items = append(items, it)
		row++
	}
	b.FinishIngestion(items, testNow)
	b.DrainEvents()
	return b
}

func TestNewBatch_StartsProcessing(t *testing.T) {
	b := NewBatch("client_1", "express", PickupDetails{}, 12, testNow)

	if b.Status != BatchProcessing {
		t.Errorf("expected PROCESSING, got %s", b.Status)
	}
	if b.TotalShipments != 12 {
		t.Errorf("expected 12 rows recorded, got %d", b.TotalShipments)
	}
	if !strings.HasPrefix(b.TrackingCode, BatchCodePrefix) || len(b.TrackingCode) != len(BatchCodePrefix)+12 {
		t.Errorf("unexpected tracking code %q", b.TrackingCode)
	}
	if b.PaymentStatus != PaymentPending {
		t.Errorf("expected payment Pending, got %s", b.PaymentStatus)
	}
}

func TestFinishIngestion_PartialFailure(t *testing.T) {
	b := newIngestedBatch(10, 2)

	if b.Status != BatchPending {
		t.Errorf("expected PENDING, got %s", b.Status)
	}
	if b.TotalShipments != 12 || b.ValidShipments != 10 || b.InvalidShipments != 2 {
		t.Errorf("unexpected counts: %d/%d/%d", b.TotalShipments, b.ValidShipments, b.InvalidShipments)
	}
	if len(b.Rejections) != 2 {
		t.Fatalf("expected 2 rejections, got %d", len(b.Rejections))
	}
	if b.Rejections[0].Row != 11 || b.Rejections[0].Code != "missing_field" {
		t.Errorf("unexpected rejection: %+v", b.Rejections[0])
	}
	if !b.Totals.TotalFee.Equal(decimal.RequireFromString("59.90")) {
		t.Errorf("expected total 59.90, got %s", b.Totals.TotalFee)
	}
}

func TestFinishIngestion_AllRejected(t *testing.T) {
	b := newIngestedBatch(0, 10)
	if b.Status != BatchFailed {
		t.Errorf("expected FAILED, got %s", b.Status)
	}
	if !b.Totals.IsZero() {
		t.Errorf("expected zero totals, got %+v", b.Totals)
	}
}

// ---------------------------------------------------------------------------
// Payment
// ---------------------------------------------------------------------------

func TestConfirmPayment_ReleasesValidItems(t *testing.T) {
	b := newIngestedBatch(10, 2)

	n, err := b.ConfirmPayment("stripe", "pi_123", "alice", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 10 {
		t.Errorf("expected 10 items released, got %d", n)
	}
	if b.Status != BatchPaid || b.PaymentStatus != PaymentPaid {
		t.Errorf("expected PAID/Paid, got %s/%s", b.Status, b.PaymentStatus)
	}
	if b.PaymentReference != "pi_123" || b.PaymentMethod != "stripe" {
		t.Errorf("payment fields not recorded: %+v", b)
	}
	for _, it := range b.Items {
		if it.Valid && it.Status != ItemNotPickedUp {
			t.Errorf("valid item %s should be NOT_PICKED_UP, got %s", it.TrackingCode, it.Status)
		}
		if !it.Valid && it.Status != ItemInvalid {
			t.Errorf("invalid item %s must stay INVALID, got %s", it.TrackingCode, it.Status)
		}
	}
	// ten item events and one batch event
	if got := len(b.PendingEvents()); got != 11 {
		t.Errorf("expected 11 events, got %d", got)
	}
}

func TestConfirmPayment_Twice(t *testing.T) {
	b := newIngestedBatch(10, 0)
	if _, err := b.ConfirmPayment("stripe", "pi_1", "alice", testNow); err != nil {
		t.Fatalf("first confirmation failed: %v", err)
	}
	b.Items[0].Status = ItemPickedUp
	b.DrainEvents()

	_, err := b.ConfirmPayment("stripe", "pi_2", "alice", testNow)
	if !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
	if b.PaymentReference != "pi_1" {
		t.Errorf("reference overwritten by duplicate confirmation")
	}
	if b.Items[0].Status != ItemPickedUp || b.Items[1].Status != ItemNotPickedUp {
		t.Errorf("item states changed by duplicate confirmation")
	}
	if len(b.PendingEvents()) != 0 {
		t.Errorf("duplicate confirmation must not emit events")
	}
}

func TestConfirmPayment_NoPriceableItems(t *testing.T) {
	b := newIngestedBatch(0, 10)
	_, err := b.ConfirmPayment("stripe", "", "alice", testNow)
	if !errors.Is(err, ErrNoPriceableItems) {
		t.Fatalf("expected ErrNoPriceableItems, got %v", err)
	}
	if b.PaymentStatus != PaymentPending {
		t.Errorf("payment status changed on failure")
	}
}

func TestConfirmPayment_KeepsReferenceWhenOmitted(t *testing.T) {
	b := newIngestedBatch(10, 0)
	b.PaymentReference = "cs_checkout"
	if _, err := b.ConfirmPayment("stripe", "", "alice", testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.PaymentReference != "cs_checkout" {
		t.Errorf("expected existing reference to be kept, got %q", b.PaymentReference)
	}
}

// ---------------------------------------------------------------------------
// Status updates
// ---------------------------------------------------------------------------

func paidBatch(t *testing.T, valid int) *ShipmentBatch {
	t.Helper()
	b := newIngestedBatch(valid, 1)
	if _, err := b.ConfirmPayment("stripe", "pi", "alice", testNow); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	b.DrainEvents()
	return b
}

func TestUpdateItemStatuses_WholeBatch(t *testing.T) {
	b := paidBatch(t, 10)

	res, err := b.UpdateItemStatuses(ItemPickedUp, nil, "courier", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Updated != 10 || res.Skipped != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if b.Status != BatchPickedUp {
		t.Errorf("expected PICKED_UP, got %s", b.Status)
	}
	if b.Items[10].Status != ItemInvalid {
		t.Errorf("invalid item must not be touched")
	}
}

func TestUpdateItemStatuses_Selective(t *testing.T) {
	b := paidBatch(t, 10)
	codes := []string{b.Items[0].TrackingCode, b.Items[1].TrackingCode, b.Items[0].TrackingCode}

	res, err := b.UpdateItemStatuses(ItemDelivered, codes, "courier", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Updated != 2 {
		t.Errorf("expected 2 updated, got %+v", res)
	}
	if b.Status != BatchPaid {
		t.Errorf("lagging NOT_PICKED_UP items keep PAID, got %s", b.Status)
	}
	if len(b.Items[0].History) == 0 {
		t.Errorf("expected a history entry on the updated item")
	}
}

func TestUpdateItemStatuses_AllDelivered(t *testing.T) {
	b := paidBatch(t, 10)
	if _, err := b.UpdateItemStatuses(ItemInTransit, nil, "courier", testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != BatchInTransit {
		t.Fatalf("expected IN_TRANSIT, got %s", b.Status)
	}
	if _, err := b.UpdateItemStatuses(ItemDelivered, nil, "courier", testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != BatchDelivered {
		t.Errorf("expected DELIVERED, got %s", b.Status)
	}
}

func TestUpdateItemStatuses_AtomicOnUnknownCode(t *testing.T) {
	b := paidBatch(t, 10)
	codes := []string{b.Items[0].TrackingCode, "99M-DOESNOTEXI"}

	_, err := b.UpdateItemStatuses(ItemPickedUp, codes, "courier", testNow)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if b.Items[0].Status != ItemNotPickedUp {
		t.Errorf("no item may change when the update fails")
	}
}

func TestUpdateItemStatuses_RejectsRegression(t *testing.T) {
	b := paidBatch(t, 10)
	code := b.Items[0].TrackingCode
	if _, err := b.UpdateItemStatuses(ItemInTransit, []string{code}, "courier", testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := b.UpdateItemStatuses(ItemPickedUp, []string{code}, "courier", testNow)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateItemStatuses_BeforePayment(t *testing.T) {
	b := newIngestedBatch(10, 0)
	_, err := b.UpdateItemStatuses(ItemPickedUp, nil, "courier", testNow)
	if !errors.Is(err, ErrItemNotDispatched) {
		t.Fatalf("expected ErrItemNotDispatched, got %v", err)
	}
}

func TestUpdateItemStatuses_RejectsClassificationTarget(t *testing.T) {
	b := paidBatch(t, 10)
	_, err := b.UpdateItemStatuses(ItemValid, nil, "courier", testNow)
	if !errors.Is(err, ErrInvalidStatusValue) {
		t.Fatalf("expected ErrInvalidStatusValue, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Cancel
// ---------------------------------------------------------------------------

func TestCancel(t *testing.T) {
	b := paidBatch(t, 10)
	if err := b.Cancel("alice", testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != BatchCancelled {
		t.Errorf("expected CANCELLED, got %s", b.Status)
	}
	if err := b.Cancel("alice", testNow); !errors.Is(err, ErrBatchNotCancellable) {
		t.Errorf("expected ErrBatchNotCancellable on second cancel, got %v", err)
	}
	if _, err := b.UpdateItemStatuses(ItemPickedUp, nil, "courier", testNow); !errors.Is(err, ErrBatchCancelled) {
		t.Errorf("expected ErrBatchCancelled, got %v", err)
	}
}

func TestCancel_AfterPickup(t *testing.T) {
	b := paidBatch(t, 10)
	if _, err := b.UpdateItemStatuses(ItemPickedUp, []string{b.Items[3].TrackingCode}, "courier", testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Cancel("alice", testNow); !errors.Is(err, ErrBatchNotCancellable) {
		t.Fatalf("expected ErrBatchNotCancellable, got %v", err)
	}
}
