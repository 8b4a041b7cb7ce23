package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Input columns every bulk upload must carry.
const (
	ColumnReceiverName = "receiver_name"
	ColumnPhoneNumber  = "phone_number"
	ColumnAddress      = "address"
	ColumnPostalCode   = "postal_code"
	ColumnPackageSize  = "package_size"
)

// RequiredColumns returns the required input columns in template order.
func RequiredColumns() []string {
	return []string{ColumnReceiverName, ColumnPhoneNumber, ColumnAddress, ColumnPostalCode, ColumnPackageSize}
}

// RawRow is one input row keyed by lower-cased column name.
type RawRow map[string]string

// Field returns the trimmed value of a column.
func (r RawRow) Field(column string) string {
	return strings.TrimSpace(r[column])
}

// MissingFields lists the required columns that are blank in r.
func (r RawRow) MissingFields() []string {
	var missing []string
	for _, col := range RequiredColumns() {
		if r.Field(col) == "" {
			missing = append(missing, col)
		}
	}
	return missing
}

// ShipmentItem is one priced or rejected row of a batch.
type ShipmentItem struct {
	TrackingCode    string
	RowNumber       int
	ReceiverName    string
	PhoneNumber     string
	DeliveryAddress string
	PostalCode      string
	WeightClass     WeightClass
	Valid           bool
	RejectionCode   string
	RejectionReason string
	DistanceKm      decimal.Decimal
	Fees            FeeBreakdown
	Status          ItemStatus
	History         []StatusChange
	Raw             RawRow
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewItem captures a raw row as a PENDING item with a fresh tracking code.
func NewItem(rowNumber int, raw RawRow, now time.Time) *ShipmentItem {
	return &ShipmentItem{
		TrackingCode:    NewParcelCode(),
		RowNumber:       rowNumber,
		ReceiverName:    raw.Field(ColumnReceiverName),
		PhoneNumber:     raw.Field(ColumnPhoneNumber),
		DeliveryAddress: raw.Field(ColumnAddress),
		PostalCode:      raw.Field(ColumnPostalCode),
		WeightClass:     WeightClass(raw.Field(ColumnPackageSize)),
		Status:          ItemPending,
		Raw:             raw,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Accept marks the item VALID with its normalized address and price.
func (it *ShipmentItem) Accept(normalizedAddress string, weight WeightClass, distanceKm decimal.Decimal, fees FeeBreakdown) {
	it.DeliveryAddress = normalizedAddress
	it.WeightClass = weight
	it.DistanceKm = RoundMoney(distanceKm)
	it.Fees = fees
	it.Valid = true
	it.RejectionCode = ""
	it.RejectionReason = ""
	it.Status = ItemValid
}

// Reject marks the item INVALID. Any fee data is cleared.
func (it *ShipmentItem) Reject(err error) {
	it.Valid = false
	it.Fees = FeeBreakdown{}
	it.DistanceKm = decimal.Zero
	it.RejectionCode = RejectionCode(err)
	it.RejectionReason = err.Error()
	it.Status = ItemInvalid
}

// RowRejection is one entry of a batch's rejection list.
type RowRejection struct {
	Row    int
	Code   string
	Reason string
	Data   RawRow
}
