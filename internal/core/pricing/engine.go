// Package pricing computes fee breakdowns for single and bulk parcels from
// one parameterized schedule. The engine is pure and safe for concurrent use.
package pricing

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

// Quote is the priced result for one parcel.
type Quote struct {
	Mode        Mode
	WeightClass domain.WeightClass
	Speed       SpeedTier
	DistanceKm  decimal.Decimal
	Addons      []Addon
	Fees        domain.FeeBreakdown
}

// Engine prices parcels against a Schedule.
type Engine struct {
	schedule Schedule
}

func NewEngine(schedule Schedule) *Engine {
	return &Engine{schedule: schedule}
}

// Price returns the fee breakdown for one parcel. Unknown speed tiers are
// priced and reported as standard, and unknown add-ons are ignored. Parcels heavier than the
// largest bucket always carry the oversized add-on exactly once.
func (e *Engine) Price(distanceKm float64, weight domain.WeightClass, speed SpeedTier, addons []string, mode Mode) Quote {
	kg := weight.ResolvedKg()
	km := sanitizeKm(distanceKm)
	speed = ParseSpeedTier(string(speed))

	applied := e.resolveAddons(addons, kg > e.schedule.LargeMaxKg)
	addonsFee := decimal.Zero
	for _, a := range applied {
		addonsFee = addonsFee.Add(e.schedule.AddonFees[a])
	}

	return Quote{
		Mode:        mode,
		WeightClass: weight,
		Speed:       speed,
		DistanceKm:  domain.RoundMoney(km),
		Addons:      applied,
		Fees: domain.NewFeeBreakdown(
			e.baseFee(mode, kg),
			e.distanceFee(km),
			e.schedule.SpeedFees[speed],
			addonsFee,
		),
	}
}

// DeliveryWindow returns the estimated delivery time for a tier.
func (e *Engine) DeliveryWindow(speed SpeedTier) string {
	if w, ok := e.schedule.DeliveryWindows[speed]; ok {
		return w
	}
	return e.schedule.DeliveryWindows[SpeedStandard]
}

func (e *Engine) Currency() string {
	return e.schedule.Currency
}

func (e *Engine) baseFee(mode Mode, kg float64) decimal.Decimal {
	fees, ok := e.schedule.BaseFees[mode]
	if !ok {
		fees = e.schedule.BaseFees[ModeSingle]
	}
	switch {
	case kg <= e.schedule.SmallMaxKg:
		return fees.Small
	case kg <= e.schedule.MediumMaxKg:
		return fees.Medium
	default:
		return fees.Large
	}
}

// distanceFee charges every kilometre past the free allowance, fractions included.
func (e *Engine) distanceFee(km decimal.Decimal) decimal.Decimal {
	if km.LessThanOrEqual(e.schedule.FreeDistanceKm) {
		return decimal.Zero
	}
	return km.Sub(e.schedule.FreeDistanceKm).Mul(e.schedule.PerKmRate)
}

func (e *Engine) resolveAddons(requested []string, oversized bool) []Addon {
	seen := make(map[Addon]struct{}, len(requested)+1)
	applied := make([]Addon, 0, len(requested)+1)
	for _, raw := range requested {
		a := normalizeAddon(raw)
		if _, known := e.schedule.AddonFees[a]; !known {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		applied = append(applied, a)
	}
	if _, ok := seen[AddonOversized]; oversized && !ok {
		applied = append(applied, AddonOversized)
	}
	return applied
}

func normalizeAddon(raw string) Addon {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return Addon(s)
}

func sanitizeKm(km float64) decimal.Decimal {
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(km)
}

// Info is the published tariff.
type Info struct {
	Currency        string
	WeightClasses   []domain.WeightClass
	BaseFees        map[Mode]BaseFees
	FreeDistanceKm  decimal.Decimal
	PerKmRate       decimal.Decimal
	SpeedFees       map[SpeedTier]decimal.Decimal
	AddonFees       map[Addon]decimal.Decimal
	DeliveryWindows map[SpeedTier]string
	SpeedTiers      []SpeedTier
	Addons          []Addon
}

// Info describes the schedule for display.
func (e *Engine) Info() Info {
	addons := make([]Addon, 0, len(e.schedule.AddonFees))
	for a := range e.schedule.AddonFees {
		addons = append(addons, a)
	}
	sort.Slice(addons, func(i, j int) bool { return addons[i] < addons[j] })

	return Info{
		Currency:        e.schedule.Currency,
		WeightClasses:   domain.WeightClasses(),
		BaseFees:        e.schedule.BaseFees,
		FreeDistanceKm:  e.schedule.FreeDistanceKm,
		PerKmRate:       e.schedule.PerKmRate,
		SpeedFees:       e.schedule.SpeedFees,
		AddonFees:       e.schedule.AddonFees,
		DeliveryWindows: e.schedule.DeliveryWindows,
		SpeedTiers:      []SpeedTier{SpeedStandard, SpeedExpress, SpeedInstant},
		Addons:          addons,
	}
}
