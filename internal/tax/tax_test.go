package tax

import (
	"math"
	"testing"
)

var testRegions = []Region{
	{Country: "CA", Province: "ON", TaxPct: 13.0},
	{Country: "CA", Province: "AB", TaxPct: 5.0},
	{Country: "CA", Province: "NB", TaxPct: 15.0},
	{Country: "US", TaxPct: 0.0},
}

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestFindRate_ExactProvince(t *testing.T) {
	nearlyEqual(t, "ON", FindRate("CA", "ON", testRegions), 13.0)
	nearlyEqual(t, "AB", FindRate("CA", "AB", testRegions), 5.0)
	nearlyEqual(t, "NB", FindRate("CA", "NB", testRegions), 15.0)
}

func TestFindRate_FallsBackToCountry(t *testing.T) {
	nearlyEqual(t, "US/CA", FindRate("US", "CA", testRegions), 0.0)
	nearlyEqual(t, "US", FindRate("US", "", testRegions), 0.0)

	regions := append([]Region{{Country: "FR", TaxPct: 20.0}}, testRegions...)
	nearlyEqual(t, "FR/IDF", FindRate("FR", "IDF", regions), 20.0)
}

func TestFindRate_UnknownRegionIsZero(t *testing.T) {
	nearlyEqual(t, "UK", FindRate("UK", "", testRegions), 0)
	nearlyEqual(t, "FR/Paris", FindRate("FR", "Paris", testRegions), 0)
	// Canada has no country-level row, so an unknown province is not taxed.
	nearlyEqual(t, "CA/QC", FindRate("CA", "QC", testRegions), 0)
}

func TestFindRate_ProvinceRowIgnoredWithoutProvince(t *testing.T) {
	nearlyEqual(t, "CA", FindRate("CA", "", testRegions), 0)
}

func TestFindRate_FirstDuplicateWins(t *testing.T) {
	regions := []Region{
		{Country: "CA", Province: "ON", TaxPct: 13.0},
		{Country: "CA", Province: "ON", TaxPct: 99.0},
	}
	nearlyEqual(t, "ON", FindRate("CA", "ON", regions), 13.0)
}

func TestForRegion_HST(t *testing.T) {
	got := ForRegion(100, "CA", "ON", testRegions)

	nearlyEqual(t, "subtotal", got.Subtotal, 100)
	nearlyEqual(t, "taxRate", got.TaxRate, 13)
	nearlyEqual(t, "taxAmount", got.TaxAmount, 13)
	nearlyEqual(t, "total", got.Total, 113)
	if got.Region != "ON, CA" {
		t.Fatalf("region = %q, want %q", got.Region, "ON, CA")
	}
}

func TestForRegion_GST(t *testing.T) {
	got := ForRegion(100, "CA", "AB", DefaultRegions())

	nearlyEqual(t, "taxRate", got.TaxRate, 5)
	nearlyEqual(t, "taxAmount", got.TaxAmount, 5)
	nearlyEqual(t, "total", got.Total, 105)
	if got.Region != "AB, CA" {
		t.Fatalf("region = %q, want %q", got.Region, "AB, CA")
	}
}

func TestForRegion_CountryOnly(t *testing.T) {
	got := ForRegion(100, "US", "", testRegions)

	nearlyEqual(t, "taxAmount", got.TaxAmount, 0)
	nearlyEqual(t, "total", got.Total, 100)
	if got.Region != "US" {
		t.Fatalf("region = %q, want %q", got.Region, "US")
	}
}

func TestDefaultRegions(t *testing.T) {
	regions := DefaultRegions()

	for _, p := range []string{"NB", "NL", "NS", "ON", "PE"} {
		if rate := FindRate("CA", p, regions); rate <= 10 {
			t.Fatalf("HST rate for %s = %v, want > 10", p, rate)
		}
	}
	for _, p := range []string{"AB", "NT", "NU", "YT"} {
		nearlyEqual(t, "GST "+p, FindRate("CA", p, regions), 5.0)
	}
	nearlyEqual(t, "ON", FindRate("CA", "ON", regions), 13.0)
	nearlyEqual(t, "US", FindRate("US", "", regions), 0.0)
	nearlyEqual(t, "UK", FindRate("UK", "", regions), 0.0)
}

func TestDefaultRegions_ReturnsCopy(t *testing.T) {
	regions := DefaultRegions()
	regions[0].TaxPct = 99

	if rate := FindRate("CA", "NB", DefaultRegions()); rate != 15.0 {
		t.Fatalf("default table was mutated through a returned copy: NB = %v", rate)
	}
}

func TestForRegion_RepeatedCallsAgreeAndLeaveTableAlone(t *testing.T) {
	regions := DefaultRegions()
	before := DefaultRegions()

	first := ForRegion(160, "CA", "AB", regions)
	second := ForRegion(160, "CA", "AB", regions)
	if first != second {
		t.Fatalf("ForRegion differs between calls: %+v vs %+v", first, second)
	}
	for i := range regions {
		if regions[i] != before[i] {
			t.Fatalf("regions[%d] = %+v after ForRegion, want %+v", i, regions[i], before[i])
		}
	}

	// Editing one caller's copy must not leak into the next lookup.
	for i := range regions {
		regions[i].TaxPct = 50
	}
	again := ForRegion(160, "CA", "AB", DefaultRegions())
	if again != first {
		t.Fatalf("ForRegion after editing a copy = %+v, want %+v", again, first)
	}
}
