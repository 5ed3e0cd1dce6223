package pricing

// Totals is one side of the dual ledger.
type Totals struct {
	Units float64 `json:"units"`
	Rate  float64 `json:"rate"`
	Total float64 `json:"total"`
}

// Ledger keeps the engine-computed totals (Calc) apart from the customer-facing
// totals (Billed). Billed only changes through ToBilledTotals or Rebill.
type Ledger struct {
	Calc   Totals `json:"calc"`
	Billed Totals `json:"billed"`
}

// ComputedTotals prices the item and returns the calc side of the ledger.
func ComputedTotals(in ItemInput) Totals {
	result := PriceItem(in)
	return Totals{
		Units: result.Units,
		Rate:  result.Rate,
		Total: result.Total,
	}
}

// ToBilledTotals seeds the billed side from calc. Used when a quote is created.
func ToBilledTotals(calc Totals) Ledger {
	return Ledger{Calc: calc, Billed: calc}
}

// KeepBilledFrozen replaces calc and carries the previously issued billed totals forward.
func KeepBilledFrozen(calc, billed Totals) Ledger {
	return Ledger{Calc: calc, Billed: billed}
}

// Rebill issues the current calc totals to the customer.
func (l Ledger) Rebill() Ledger {
	return Ledger{Calc: l.Calc, Billed: l.Calc}
}

// Drift is how far the recomputed total has moved away from what was billed.
func (l Ledger) Drift() float64 {
	return l.Calc.Total - l.Billed.Total
}
