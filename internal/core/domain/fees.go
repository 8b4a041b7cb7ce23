package domain

import "github.com/shopspring/decimal"

const moneyPlaces = 2

// RoundMoney rounds an amount to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// FeeBreakdown is the priced outcome of one parcel, or the sum over a batch.
type FeeBreakdown struct {
	BaseFee     decimal.Decimal
	DistanceFee decimal.Decimal
	SpeedFee    decimal.Decimal
	AddonsFee   decimal.Decimal
	TotalFee    decimal.Decimal
}

// NewFeeBreakdown rounds each component independently and totals the rounded values.
func NewFeeBreakdown(base, distance, speed, addons decimal.Decimal) FeeBreakdown {
	f := FeeBreakdown{
		BaseFee:     RoundMoney(base),
		DistanceFee: RoundMoney(distance),
		SpeedFee:    RoundMoney(speed),
		AddonsFee:   RoundMoney(addons),
	}
	f.TotalFee = f.BaseFee.Add(f.DistanceFee).Add(f.SpeedFee).Add(f.AddonsFee)
	return f
}

// Add sums two breakdowns component by component.
func (f FeeBreakdown) Add(o FeeBreakdown) FeeBreakdown {
	return FeeBreakdown{
		BaseFee:     f.BaseFee.Add(o.BaseFee),
		DistanceFee: f.DistanceFee.Add(o.DistanceFee),
		SpeedFee:    f.SpeedFee.Add(o.SpeedFee),
		AddonsFee:   f.AddonsFee.Add(o.AddonsFee),
		TotalFee:    f.TotalFee.Add(o.TotalFee),
	}
}

// Balanced reports whether the total equals the sum of the components.
func (f FeeBreakdown) Balanced() bool {
	return f.TotalFee.Equal(f.BaseFee.Add(f.DistanceFee).Add(f.SpeedFee).Add(f.AddonsFee))
}

func (f FeeBreakdown) IsZero() bool {
	return f.BaseFee.IsZero() && f.DistanceFee.IsZero() && f.SpeedFee.IsZero() &&
		f.AddonsFee.IsZero() && f.TotalFee.IsZero()
}
