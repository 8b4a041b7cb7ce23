package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestEngine() *Engine { return NewEngine(DefaultSchedule()) }

func TestPrice_BulkSmallWithinFreeDistance(t *testing.T) {
	q := newTestEngine().Price(4.2, domain.WeightSmall, SpeedStandard, nil, ModeBulk)

	if !q.Fees.BaseFee.Equal(dec("5.99")) {
		t.Errorf("expected base 5.99, got %s", q.Fees.BaseFee)
	}
	if !q.Fees.DistanceFee.IsZero() {
		t.Errorf("expected no distance fee within 5 km, got %s", q.Fees.DistanceFee)
	}
	if !q.Fees.TotalFee.Equal(dec("5.99")) {
		t.Errorf("expected total 5.99, got %s", q.Fees.TotalFee)
	}
}

func TestPrice_SingleFullBreakdown(t *testing.T) {
	q := newTestEngine().Price(12.35, domain.WeightMedium, SpeedExpress, []string{"Signature Confirmation"}, ModeSingle)

	// 7.35 km past the allowance at 0.90 = 6.615 -> 6.62
	want := map[string]decimal.Decimal{
		"base":     dec("11.99"),
		"distance": dec("6.62"),
		"speed":    dec("4.99"),
		"addons":   dec("1.50"),
		"total":    dec("25.10"),
	}
	got := map[string]decimal.Decimal{
		"base":     q.Fees.BaseFee,
		"distance": q.Fees.DistanceFee,
		"speed":    q.Fees.SpeedFee,
		"addons":   q.Fees.AddonsFee,
		"total":    q.Fees.TotalFee,
	}
	for k, w := range want {
		if !got[k].Equal(w) {
			t.Errorf("%s: expected %s, got %s", k, w, got[k])
		}
	}
	if len(q.Addons) != 1 || q.Addons[0] != AddonSignature {
		t.Errorf("unexpected add-ons: %v", q.Addons)
	}
}

func TestPrice_BulkCheaperThanSingle(t *testing.T) {
	e := newTestEngine()
	for _, w := range domain.WeightClasses() {
		single := e.Price(3, w, SpeedStandard, nil, ModeSingle)
		bulk := e.Price(3, w, SpeedStandard, nil, ModeBulk)
		if !bulk.Fees.BaseFee.LessThan(single.Fees.BaseFee) {
			t.Errorf("%s: bulk base %s not cheaper than single %s", w, bulk.Fees.BaseFee, single.Fees.BaseFee)
		}
	}
}

func TestPrice_TotalIsSumOfRoundedComponents(t *testing.T) {
	e := newTestEngine()
	distances := []float64{0, 5, 5.001, 5.005, 7.777, 13.3333, 48.0049}
	for _, km := range distances {
		for _, w := range domain.WeightClasses() {
			q := e.Price(km, w, SpeedInstant, []string{"fragile_handling"}, ModeBulk)
			if !q.Fees.Balanced() {
				t.Errorf("km=%v weight=%s: total %s is not the sum of components", km, w, q.Fees.TotalFee)
			}
			if q.Fees.TotalFee.Exponent() < -2 {
				t.Errorf("km=%v: total %s has more than 2 decimals", km, q.Fees.TotalFee)
			}
		}
	}
}

func TestPrice_DistanceFeeMonotonic(t *testing.T) {
	e := newTestEngine()
	for _, km := range []float64{0, 1, 4.99, 5} {
		if fee := e.Price(km, domain.WeightSmall, SpeedStandard, nil, ModeBulk).Fees.DistanceFee; !fee.IsZero() {
			t.Errorf("km=%v: expected zero distance fee, got %s", km, fee)
		}
	}

	prev := decimal.Zero
	for _, km := range []float64{5.5, 6, 10, 25.25, 100} {
		fee := e.Price(km, domain.WeightSmall, SpeedStandard, nil, ModeBulk).Fees.DistanceFee
		if !fee.GreaterThan(prev) {
			t.Errorf("km=%v: fee %s not greater than %s", km, fee, prev)
		}
		prev = fee
	}
}

func TestPrice_OversizedAddonAutomatic(t *testing.T) {
	e := newTestEngine()

	q := e.Price(3, domain.WeightOversized, SpeedStandard, nil, ModeBulk)
	if len(q.Addons) != 1 || q.Addons[0] != AddonOversized {
		t.Fatalf("expected automatic oversized add-on, got %v", q.Addons)
	}
	if !q.Fees.BaseFee.Equal(dec("15.99")) {
		t.Errorf("oversized parcels use the large base fee, got %s", q.Fees.BaseFee)
	}
	if !q.Fees.AddonsFee.Equal(dec("8.00")) {
		t.Errorf("expected oversized fee 8.00, got %s", q.Fees.AddonsFee)
	}

	redundant := e.Price(3, domain.WeightOversized, SpeedStandard, []string{"oversized_package", "Oversized Package"}, ModeBulk)
	if len(redundant.Addons) != 1 {
		t.Errorf("oversized must appear once, got %v", redundant.Addons)
	}
	if !redundant.Fees.AddonsFee.Equal(dec("8.00")) {
		t.Errorf("oversized must be charged once, got %s", redundant.Fees.AddonsFee)
	}
}

func TestPrice_UnknownInputsDefault(t *testing.T) {
	q := newTestEngine().Price(2, domain.WeightLarge, SpeedTier("teleport"), []string{"gift_wrap"}, ModeBulk)

	if !q.Fees.SpeedFee.IsZero() {
		t.Errorf("unknown speed must cost nothing, got %s", q.Fees.SpeedFee)
	}
	if len(q.Addons) != 0 || !q.Fees.AddonsFee.IsZero() {
		t.Errorf("unknown add-ons must be ignored, got %v %s", q.Addons, q.Fees.AddonsFee)
	}
}

func TestParseSpeedTier(t *testing.T) {
	cases := map[string]SpeedTier{
		"Express":  SpeedExpress,
		" instant": SpeedInstant,
		"":         SpeedStandard,
		"overnight": SpeedStandard,
	}
	for raw, want := range cases {
		if got := ParseSpeedTier(raw); got != want {
			t.Errorf("%q: expected %s, got %s", raw, want, got)
		}
	}
}

func TestDeliveryWindow(t *testing.T) {
	e := newTestEngine()
	if got := e.DeliveryWindow(SpeedInstant); got != "Less than 1 hour" {
		t.Errorf("unexpected window %q", got)
	}
	if got := e.DeliveryWindow(SpeedTier("x")); got != "3-6 hours" {
		t.Errorf("unknown tier should use the standard window, got %q", got)
	}
}

func TestPrice_UnknownSpeedReportedAsStandard(t *testing.T) {
	e := newTestEngine()
	for _, raw := range []SpeedTier{"overnight", "", " EXPRESS "} {
		q := e.Price(3, domain.WeightSmall, raw, nil, ModeSingle)
		want := ParseSpeedTier(string(raw))
		if q.Speed != want {
			t.Errorf("speed %q: reported %q, want %q", raw, q.Speed, want)
		}
		if !q.Fees.SpeedFee.Equal(e.schedule.SpeedFees[want]) {
			t.Errorf("speed %q: fee %s does not match reported tier %q", raw, q.Fees.SpeedFee, q.Speed)
		}
	}
	if q := e.Price(3, domain.WeightSmall, "overnight", nil, ModeSingle); q.Speed != SpeedStandard {
		t.Errorf("unknown tier should price and report as standard, got %q", q.Speed)
	}
}
