package pricing

import "testing"

func TestComputedTotals_WrapsPriceItem(t *testing.T) {
	in := ItemInput{
		Pages:                   []Page{{Words: 225, ComplexityMultiplier: 1.0}, {Words: 300, ComplexityMultiplier: 1.15}},
		BaseRate:                40,
		TierMultiplier:          1.2,
		CertificationPriceCents: ptr(int64(3500)),
	}

	calc := ComputedTotals(in)

	nearlyEqual(t, "units", calc.Units, 2.75)
	nearlyEqual(t, "rate", calc.Rate, 50)
	nearlyEqual(t, "total", calc.Total, 172.5)
}

func TestToBilledTotals_SeedsBilledFromCalc(t *testing.T) {
	calc := Totals{Units: 2, Rate: 45, Total: 90}

	ledger := ToBilledTotals(calc)

	if ledger.Calc != calc || ledger.Billed != calc {
		t.Fatalf("ToBilledTotals = %+v, want calc and billed equal to %+v", ledger, calc)
	}
	nearlyEqual(t, "drift", ledger.Drift(), 0)
}

func TestKeepBilledFrozen_RecomputesCalcOnly(t *testing.T) {
	issued := ToBilledTotals(Totals{Units: 2, Rate: 45, Total: 90})

	corrected := ComputedTotals(ItemInput{
		Pages:          []Page{{Words: 675, ComplexityMultiplier: 1.0}},
		BaseRate:       45,
		TierMultiplier: 1.0,
	})
	ledger := KeepBilledFrozen(corrected, issued.Billed)

	if ledger.Billed != issued.Billed {
		t.Fatalf("billed = %+v, want frozen %+v", ledger.Billed, issued.Billed)
	}
	nearlyEqual(t, "calc units", ledger.Calc.Units, 3)
	nearlyEqual(t, "calc total", ledger.Calc.Total, 135)
	nearlyEqual(t, "drift", ledger.Drift(), 45)
}

func TestRebill_IssuesCalc(t *testing.T) {
	ledger := KeepBilledFrozen(Totals{Units: 3, Rate: 45, Total: 135}, Totals{Units: 2, Rate: 45, Total: 90})

	rebilled := ledger.Rebill()

	if rebilled.Billed != ledger.Calc {
		t.Fatalf("billed = %+v, want %+v", rebilled.Billed, ledger.Calc)
	}
	if ledger.Billed.Total != 90 {
		t.Fatalf("Rebill mutated the receiver: %+v", ledger)
	}
}
