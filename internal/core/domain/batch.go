package domain

import (
	"fmt"
	"strings"
	"time"
)

// MinBatchRows is the smallest upload accepted for bulk pricing.
const MinBatchRows = 10

const systemActor = "system"

// PickupDetails is where a batch is collected from.
type PickupDetails struct {
	Address      string
	ContactName  string
	ContactPhone string
}

// ShipmentBatch is the aggregate root of one ingestion run. It owns its items.
type ShipmentBatch struct {
	TrackingCode     string
	OwnerID          string
	Status           BatchStatus
	DeliverySpeed    string
	Pickup           PickupDetails
	TotalShipments   int
	ValidShipments   int
	InvalidShipments int
	Totals           FeeBreakdown
	PaymentMethod    string
	PaymentStatus    string
	PaymentReference string
	Rejections       []RowRejection
	Items            []*ShipmentItem
	History          []StatusChange
	CreatedAt        time.Time
	UpdatedAt        time.Time

	eventLog
}

// NewBatch opens a batch in PROCESSING with its row count recorded.
func NewBatch(ownerID, deliverySpeed string, pickup PickupDetails, totalRows int, now time.Time) *ShipmentBatch {
	b := &ShipmentBatch{
		TrackingCode:   NewBatchCode(),
		OwnerID:        ownerID,
		DeliverySpeed:  deliverySpeed,
		Pickup:         pickup,
		TotalShipments: totalRows,
		PaymentStatus:  PaymentPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	b.setStatus(BatchProcessing, systemActor, now)
	return b
}

// FinishIngestion attaches the item ledger, builds the rejection list and
// settles the ingestion outcome: PENDING when anything is payable, FAILED otherwise.
func (b *ShipmentBatch) FinishIngestion(items []*ShipmentItem, now time.Time) {
	b.Items = items
	b.Rejections = nil
	for _, it := range items {
		if it.Valid {
			continue
		}
		b.Rejections = append(b.Rejections, RowRejection{
			Row:    it.RowNumber,
			Code:   it.RejectionCode,
			Reason: it.RejectionReason,
			Data:   it.Raw,
		})
	}

	b.Recompute(systemActor, now)

	if b.ValidShipments > 0 {
		b.setStatus(BatchPending, systemActor, now)
	} else {
		b.setStatus(BatchFailed, systemActor, now)
	}
}

// Item returns the item with the given tracking code, or nil.
func (b *ShipmentBatch) Item(code string) *ShipmentItem {
	for _, it := range b.Items {
		if it.TrackingCode == code {
			return it
		}
	}
	return nil
}

// IsPaid reports whether a payment has been recorded.
func (b *ShipmentBatch) IsPaid() bool {
	return strings.EqualFold(b.PaymentStatus, PaymentPaid)
}

// ConfirmPayment records an external payment and moves every VALID item to
// NOT_PICKED_UP. It returns the number of items released to fulfillment.
func (b *ShipmentBatch) ConfirmPayment(method, reference, actor string, now time.Time) (int, error) {
	if b.IsPaid() {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyPaid, b.TrackingCode)
	}
	if b.Status == BatchCancelled {
		return 0, fmt.Errorf("%w: %s", ErrBatchCancelled, b.TrackingCode)
	}

	payable := 0
	for _, it := range b.Items {
		if it.Valid && it.Status == ItemValid {
			payable++
		}
	}
	if payable == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoPriceableItems, b.TrackingCode)
	}

	b.PaymentMethod = method
	if reference != "" {
		b.PaymentReference = reference
	}
	b.PaymentStatus = PaymentPaid

	for _, it := range b.Items {
		if it.Valid && it.Status == ItemValid {
			b.moveItem(it, ItemNotPickedUp, actor, now)
		}
	}
	b.setStatus(BatchPaid, actor, now)
	b.Recompute(actor, now)
	return payable, nil
}

// StatusUpdate summarizes one item status fan-out.
type StatusUpdate struct {
	Updated int
	Skipped int
}

// UpdateItemStatuses moves items forward to target. With no codes every item
// already in fulfillment is considered and items at or past target are
// skipped. With codes, every listed item is checked before anything changes.
func (b *ShipmentBatch) UpdateItemStatuses(target ItemStatus, codes []string, actor string, now time.Time) (StatusUpdate, error) {
	if !target.IsFulfillment() {
		return StatusUpdate{}, fmt.Errorf("%w: %s", ErrInvalidStatusValue, target)
	}
	if b.Status == BatchCancelled {
		return StatusUpdate{}, fmt.Errorf("%w: %s", ErrBatchCancelled, b.TrackingCode)
	}

	var res StatusUpdate
	if len(codes) == 0 {
		dispatched := 0
		for _, it := range b.Items {
			if !it.Status.IsFulfillment() {
				continue
			}
			dispatched++
			if it.Status.Stage() >= target.Stage() {
				res.Skipped++
				continue
			}
			b.moveItem(it, target, actor, now)
			res.Updated++
		}
		if dispatched == 0 {
			return StatusUpdate{}, fmt.Errorf("%w: batch %s has no items in fulfillment", ErrItemNotDispatched, b.TrackingCode)
		}
	} else {
		selected, err := b.selectForUpdate(target, codes)
		if err != nil {
			return StatusUpdate{}, err
		}
		for _, it := range selected {
			if it.Status == target {
				res.Skipped++
				continue
			}
			b.moveItem(it, target, actor, now)
			res.Updated++
		}
	}

	b.Recompute(actor, now)
	return res, nil
}

func (b *ShipmentBatch) selectForUpdate(target ItemStatus, codes []string) ([]*ShipmentItem, error) {
	seen := make(map[string]struct{}, len(codes))
	selected := make([]*ShipmentItem, 0, len(codes))
	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		it := b.Item(code)
		if it == nil {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, code)
		}
		if !it.Status.IsFulfillment() {
			return nil, fmt.Errorf("%w: %s is %s", ErrItemNotDispatched, code, it.Status)
		}
		if it.Status.Stage() > target.Stage() {
			return nil, fmt.Errorf("%w: %s cannot move from %s to %s", ErrInvalidTransition, code, it.Status, target)
		}
		selected = append(selected, it)
	}
	return selected, nil
}

// Cancel stops a batch that has not physically moved yet.
func (b *ShipmentBatch) Cancel(actor string, now time.Time) error {
	if b.Status == BatchCancelled {
		return fmt.Errorf("%w: %s is already cancelled", ErrBatchNotCancellable, b.TrackingCode)
	}
	for _, it := range b.Items {
		if it.Status.Stage() > ItemNotPickedUp.Stage() {
			return fmt.Errorf("%w: item %s is %s", ErrBatchNotCancellable, it.TrackingCode, it.Status)
		}
	}
	b.setStatus(BatchCancelled, actor, now)
	return nil
}

// AmountDue is what a payment confirmation settles.
func (b *ShipmentBatch) AmountDue() FeeBreakdown {
	if b.IsPaid() {
		return FeeBreakdown{}
	}
	return b.Totals
}

func (b *ShipmentBatch) setStatus(to BatchStatus, actor string, now time.Time) {
	from := b.Status
	if from == to {
		return
	}
	b.Status = to
	b.UpdatedAt = now

	notes := transitionNotes(string(from), string(to))
	b.History = append(b.History, StatusChange{Status: string(to), Notes: notes, Actor: actor, Timestamp: now})
	b.record(StatusEvent{
		Subject:      SubjectBatch,
		TrackingCode: b.TrackingCode,
		BatchCode:    b.TrackingCode,
		From:         string(from),
		To:           string(to),
		Notes:        notes,
		Actor:        actor,
		OccurredAt:   now,
	})
}

func (b *ShipmentBatch) moveItem(it *ShipmentItem, to ItemStatus, actor string, now time.Time) {
	from := it.Status
	it.Status = to
	it.UpdatedAt = now
	b.UpdatedAt = now

	notes := transitionNotes(string(from), string(to))
	it.History = append(it.History, StatusChange{Status: string(to), Notes: notes, Actor: actor, Timestamp: now})
	b.record(StatusEvent{
		Subject:      SubjectItem,
		TrackingCode: it.TrackingCode,
		BatchCode:    b.TrackingCode,
		From:         string(from),
		To:           string(to),
		Notes:        notes,
		Actor:        actor,
		OccurredAt:   now,
	})
}
