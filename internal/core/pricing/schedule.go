package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Mode selects the base-fee table. Everything else is shared.
type Mode string

const (
	ModeSingle Mode = "SINGLE"
	ModeBulk   Mode = "BULK"
)

// SpeedTier is the requested delivery speed.
type SpeedTier string

const (
	SpeedStandard SpeedTier = "standard"
	SpeedExpress  SpeedTier = "express"
	SpeedInstant  SpeedTier = "instant"
)

// ParseSpeedTier normalizes a raw tier. Unknown values fall back to standard.
func ParseSpeedTier(raw string) SpeedTier {
	switch t := SpeedTier(strings.ToLower(strings.TrimSpace(raw))); t {
	case SpeedStandard, SpeedExpress, SpeedInstant:
		return t
	}
	return SpeedStandard
}

// Addon is a flatly priced service modifier.
type Addon string

const (
	AddonSignature Addon = "signature_confirmation"
	AddonFragile   Addon = "fragile_handling"
	AddonOversized Addon = "oversized_package"
)

// BaseFees is one mode's base-fee table. Oversized parcels pay Large.
type BaseFees struct {
	Small  decimal.Decimal
	Medium decimal.Decimal
	Large  decimal.Decimal
}

// Schedule is the tariff the engine prices against.
type Schedule struct {
	Currency        string
	SmallMaxKg      float64
	MediumMaxKg     float64
	LargeMaxKg      float64
	BaseFees        map[Mode]BaseFees
	FreeDistanceKm  decimal.Decimal
	PerKmRate       decimal.Decimal
	SpeedFees       map[SpeedTier]decimal.Decimal
	AddonFees       map[Addon]decimal.Decimal
	DeliveryWindows map[SpeedTier]string
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultSchedule returns the published CAD tariff.
func DefaultSchedule() Schedule {
	return Schedule{
		Currency:    "CAD",
		SmallMaxKg:  5,
		MediumMaxKg: 15,
		LargeMaxKg:  30,
		BaseFees: map[Mode]BaseFees{
			ModeSingle: {Small: mustDecimal("7.99"), Medium: mustDecimal("11.99"), Large: mustDecimal("17.99")},
			ModeBulk:   {Small: mustDecimal("5.99"), Medium: mustDecimal("9.99"), Large: mustDecimal("15.99")},
		},
		FreeDistanceKm: decimal.NewFromInt(5),
		PerKmRate:      mustDecimal("0.90"),
		SpeedFees: map[SpeedTier]decimal.Decimal{
			SpeedStandard: decimal.Zero,
			SpeedExpress:  mustDecimal("4.99"),
			SpeedInstant:  mustDecimal("6.99"),
		},
		AddonFees: map[Addon]decimal.Decimal{
			AddonSignature: mustDecimal("1.50"),
			AddonFragile:   mustDecimal("2.50"),
			AddonOversized: mustDecimal("8.00"),
		},
		DeliveryWindows: map[SpeedTier]string{
			SpeedStandard: "3-6 hours",
			SpeedExpress:  "1-2 hours",
			SpeedInstant:  "Less than 1 hour",
		},
	}
}
