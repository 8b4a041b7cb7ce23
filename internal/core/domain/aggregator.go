package domain

import "time"

// DeriveBatchStatus folds item fulfillment states into one batch status.
// Non-fulfillment states are ignored; ok is false when none remain.
//
// Precedence, first match wins: all DELIVERED, any OUT_FOR_DELIVERY, any
// IN_TRANSIT, any PICKED_UP, otherwise NOT_PICKED_UP.
func DeriveBatchStatus(states []ItemStatus) (status BatchStatus, ok bool) {
	counts := make(map[ItemStatus]int, len(fulfillmentStages))
	n := 0
	for _, s := range states {
		if !s.IsFulfillment() {
			continue
		}
		counts[s]++
		n++
	}
	if n == 0 {
		return "", false
	}

	switch {
	case counts[ItemDelivered] == n:
		return BatchDelivered, true
	case counts[ItemOutForDelivery] > 0:
		return BatchOutForDelivery, true
	case counts[ItemInTransit] > 0:
		return BatchInTransit, true
	case counts[ItemPickedUp] > 0:
		return BatchPickedUp, true
	}
	return BatchNotPickedUp, true
}

// Recompute refreshes counts and fee totals from the item ledger and
// re-derives the fulfillment status. Calling it twice is a no-op.
func (b *ShipmentBatch) Recompute(actor string, now time.Time) {
	var totals FeeBreakdown
	valid, invalid := 0, 0
	states := make([]ItemStatus, 0, len(b.Items))
	for _, it := range b.Items {
		if it.Valid {
			totals = totals.Add(it.Fees)
			valid++
		} else {
			invalid++
		}
		states = append(states, it.Status)
	}

	b.Totals = totals
	b.TotalShipments = len(b.Items)
	b.ValidShipments = valid
	b.InvalidShipments = invalid

	derived, ok := DeriveBatchStatus(states)
	if !ok || !b.acceptsDerived(derived) {
		return
	}
	b.setStatus(derived, actor, now)
}

// acceptsDerived guards the explicit markers. CANCELLED is final. PAID gives
// way only once a parcel has actually moved.
func (b *ShipmentBatch) acceptsDerived(derived BatchStatus) bool {
	switch b.Status {
	case BatchCancelled:
		return false
	case BatchPaid:
		return derived != BatchNotPickedUp
	}
	return true
}
