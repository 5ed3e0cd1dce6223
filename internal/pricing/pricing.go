package pricing

import "math"

const (
	// DefaultDivisor is the number of words that make up one billable unit.
	DefaultDivisor = 225.0
	// DefaultRoundingThreshold is the fractional part up to which units round to the nearest quarter.
	DefaultRoundingThreshold = 0.20
	// MinimumItemUnits is the floor applied to every line item.
	MinimumItemUnits = 1.0
)

// Page represents the text volume and difficulty of one physical page.
type Page struct {
	Words                int     `json:"words" yaml:"words" validate:"min=0"`
	ComplexityMultiplier float64 `json:"complexityMultiplier" yaml:"complexityMultiplier" validate:"gte=0"`
}

// ItemInput represents one billable line item, usually a single document.
type ItemInput struct {
	Pages                   []Page   `json:"pages" yaml:"pages" validate:"required,min=1,dive"`
	BaseRate                float64  `json:"baseRate" yaml:"baseRate" validate:"gt=0"`
	TierMultiplier          float64  `json:"tierMultiplier" yaml:"tierMultiplier" validate:"gte=0"`
	CertificationPriceCents *int64   `json:"certificationPriceCents,omitempty" yaml:"certificationPriceCents" validate:"omitempty,min=0"`
	CertificationMultiplier *float64 `json:"certificationMultiplier,omitempty" yaml:"certificationMultiplier" validate:"omitempty,gt=0"`

	// Divisor and RoundingThreshold come from settings. Zero selects
	// DefaultDivisor and DefaultRoundingThreshold, so a threshold of exactly 0
	// cannot be expressed here; settings reject it (gt=0) for the same reason.
	Divisor           float64 `json:"divisor,omitempty" yaml:"divisor" validate:"gte=0"`
	RoundingThreshold float64 `json:"roundingThreshold,omitempty" yaml:"roundingThreshold" validate:"gte=0,lt=1"`
}

// Result contains the priced values of a line item.
type Result struct {
	Units             float64 `json:"units"`
	Rate              float64 `json:"rate"`
	Subtotal          float64 `json:"subtotal"`
	CertificationCost float64 `json:"certificationCost"`
	Total             float64 `json:"total"`
}

// PageUnits returns the raw, unrounded units of a page.
func PageUnits(words int, divisor, complexityMultiplier float64) float64 {
	return (float64(words) / divisor) * complexityMultiplier
}

// RoundToQuarterWithThreshold rounds x to a multiple of 0.25.
//
// When the fractional part of x is at most threshold, x rounds to the nearest
// quarter (half-up). Above the threshold it always rounds up to the next quarter.
func RoundToQuarterWithThreshold(x, threshold float64) float64 {
	decimal := x - math.Floor(x)
	if decimal <= threshold {
		return math.Floor(x*4+0.5) / 4
	}
	return math.Ceil(x*4) / 4
}

// ItemUnits rounds every page on its own, sums the rounded values and applies
// the per-item minimum. Rounding the sum instead gives different results.
func ItemUnits(pages []Page, divisor, threshold float64) float64 {
	total := 0.0
	for _, page := range pages {
		raw := PageUnits(page.Words, divisor, page.ComplexityMultiplier)
		total += RoundToQuarterWithThreshold(raw, threshold)
	}
	return math.Max(total, MinimumItemUnits)
}

// RoundRateToNext5 rounds a rate up to the next multiple of 5.
func RoundRateToNext5(rate float64) float64 {
	return math.Ceil(rate/5) * 5
}

// PriceItem computes units, rate, subtotal and certification cost of a line item.
func PriceItem(in ItemInput) Result {
	divisor := in.Divisor
	if divisor == 0 {
		divisor = DefaultDivisor
	}
	threshold := in.RoundingThreshold
	if threshold == 0 {
		threshold = DefaultRoundingThreshold
	}

	units := ItemUnits(in.Pages, divisor, threshold)
	rate := RoundRateToNext5(in.BaseRate * in.TierMultiplier)
	subtotal := units * rate

	certificationCost := 0.0
	if in.CertificationPriceCents != nil {
		multiplier := 1.0
		if in.CertificationMultiplier != nil {
			multiplier = *in.CertificationMultiplier
		}
		certificationCost = (float64(*in.CertificationPriceCents) / 100.0) * multiplier
	}

	return Result{
		Units:             units,
		Rate:              rate,
		Subtotal:          subtotal,
		CertificationCost: certificationCost,
		Total:             subtotal + certificationCost,
	}
}
