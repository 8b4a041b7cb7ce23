package domain

import (
	"fmt"
	"strings"
)

// ItemStatus is the row-state of a batch item or of a single shipment.
// PENDING, VALID and INVALID classify an ingested row; the remaining five are
// fulfillment states and form a strictly ordered progression.
type ItemStatus string

const (
	ItemPending        ItemStatus = "PENDING"
	ItemValid          ItemStatus = "VALID"
	ItemInvalid        ItemStatus = "INVALID"
	ItemNotPickedUp    ItemStatus = "NOT_PICKED_UP"
	ItemPickedUp       ItemStatus = "PICKED_UP"
	ItemInTransit      ItemStatus = "IN_TRANSIT"
	ItemOutForDelivery ItemStatus = "OUT_FOR_DELIVERY"
	ItemDelivered      ItemStatus = "DELIVERED"
)

var fulfillmentStages = map[ItemStatus]int{
	ItemNotPickedUp:    0,
	ItemPickedUp:       1,
	ItemInTransit:      2,
	ItemOutForDelivery: 3,
	ItemDelivered:      4,
}

// FulfillmentStatuses returns the fulfillment states in progression order.
func FulfillmentStatuses() []ItemStatus {
	return []ItemStatus{ItemNotPickedUp, ItemPickedUp, ItemInTransit, ItemOutForDelivery, ItemDelivered}
}

// IsFulfillment reports whether s is one of the five physical delivery states.
func (s ItemStatus) IsFulfillment() bool {
	_, ok := fulfillmentStages[s]
	return ok
}

// Stage returns the position of s in the fulfillment progression, or -1.
func (s ItemStatus) Stage() int {
	if n, ok := fulfillmentStages[s]; ok {
		return n
	}
	return -1
}

// ParseFulfillmentStatus accepts only the five fulfillment states.
func ParseFulfillmentStatus(raw string) (ItemStatus, error) {
	s := ItemStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsFulfillment() {
		names := make([]string, 0, len(fulfillmentStages))
		for _, f := range FulfillmentStatuses() {
			names = append(names, string(f))
		}
		return "", fmt.Errorf("%w: %q must be one of %s", ErrInvalidStatusValue, raw, strings.Join(names, ", "))
	}
	return s, nil
}

// BatchStatus is the ingestion outcome or derived fulfillment status of a batch.
type BatchStatus string

const (
	BatchProcessing     BatchStatus = "PROCESSING"
	BatchPending        BatchStatus = "PENDING"
	BatchFailed         BatchStatus = "FAILED"
	BatchNotPickedUp    BatchStatus = "NOT_PICKED_UP"
	BatchPickedUp       BatchStatus = "PICKED_UP"
	BatchInTransit      BatchStatus = "IN_TRANSIT"
	BatchOutForDelivery BatchStatus = "OUT_FOR_DELIVERY"
	BatchDelivered      BatchStatus = "DELIVERED"
	BatchPaid           BatchStatus = "PAID"
	BatchCancelled      BatchStatus = "CANCELLED"
)

// Payment status values. The field is free text for gateways but only these two are written.
const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
)
