package domain

import "errors"

// Wholesale ingestion errors. No batch is persisted when one of these is returned.
var (
	ErrMalformedInput = errors.New("malformed input")
	ErrBatchTooSmall  = errors.New("batch too small")
)

// Per-row rejection kinds. They are recorded on the item and never abort the batch.
var (
	ErrMissingField         = errors.New("missing required field")
	ErrInvalidWeightClass   = errors.New("invalid weight class")
	ErrOutOfServiceArea     = errors.New("address outside service area")
	ErrDistanceLookupFailed = errors.New("distance lookup failed")
)

var ErrAlreadyPaid = errors.New("batch already paid")
var ErrNoPriceableItems = errors.New("batch has no priceable items")
var ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
var ErrInvalidStatusValue = errors.New("invalid status value")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrItemNotDispatched = errors.New("item has not entered fulfillment")
var ErrBatchNotCancellable = errors.New("batch cannot be cancelled")
var ErrBatchCancelled = errors.New("batch is cancelled")
var ErrConcurrentUpdate = errors.New("concurrent update, retry later")

var ErrBatchNotFound = errors.New("batch not found")
var ErrItemNotFound = errors.New("item not found")
var ErrShipmentNotFound = errors.New("shipment not found")
var ErrTrackingCodeNotFound = errors.New("tracking code not found")
var ErrForbidden = errors.New("access forbidden")

// RowError pairs a sentinel Kind with the human-readable Reason shown to the
// caller. Per-row rejections store Reason in the rejection list.
type RowError struct {
	Kind   error
	Reason string
}

// Reject builds a RowError of the given kind.
func Reject(kind error, reason string) *RowError {
	return &RowError{Kind: kind, Reason: reason}
}

func (e *RowError) Error() string { return e.Reason }

func (e *RowError) Unwrap() error { return e.Kind }

// RejectionCode maps a row error to the stable code exposed alongside its reason.
func RejectionCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidWeightClass):
		return "invalid_weight_class"
	case errors.Is(err, ErrOutOfServiceArea):
		return "out_of_service_area"
	case errors.Is(err, ErrDistanceLookupFailed):
		return "distance_lookup_failed"
	default:
		return "rejected"
	}
}
