// Package tax looks up regional sales tax rates and applies them to a subtotal.
package tax

// Region is one row of a tax table. An empty Province marks the country-level rate.
type Region struct {
	Country  string  `json:"country" yaml:"country"`
	Province string  `json:"province" yaml:"province"`
	TaxPct   float64 `json:"taxPct" yaml:"taxPct"`
}

// Calculation is the result of applying a regional rate to a subtotal.
type Calculation struct {
	Subtotal  float64 `json:"subtotal"`
	TaxRate   float64 `json:"taxRate"`
	TaxAmount float64 `json:"taxAmount"`
	Total     float64 `json:"total"`
	Region    string  `json:"region"`
}

var defaultRegions = []Region{
	// HST
	{Country: "CA", Province: "NB", TaxPct: 15.0},
	{Country: "CA", Province: "NL", TaxPct: 15.0},
	{Country: "CA", Province: "NS", TaxPct: 14.0},
	{Country: "CA", Province: "ON", TaxPct: 13.0},
	{Country: "CA", Province: "PE", TaxPct: 15.0},
	// GST
	{Country: "CA", Province: "AB", TaxPct: 5.0},
	{Country: "CA", Province: "NT", TaxPct: 5.0},
	{Country: "CA", Province: "NU", TaxPct: 5.0},
	{Country: "CA", Province: "YT", TaxPct: 5.0},
	{Country: "US", TaxPct: 0.0},
}

// DefaultRegions returns a copy of the built-in Canadian HST/GST table plus a 0% US row.
func DefaultRegions() []Region {
	out := make([]Region, len(defaultRegions))
	copy(out, defaultRegions)
	return out
}

// FindRate returns the percentage rate for a country and optional province.
// A province row beats the country row; unknown regions are taxed at 0.
func FindRate(country, province string, regions []Region) float64 {
	if province != "" {
		for _, r := range regions {
			if r.Country == country && r.Province == province {
				return r.TaxPct
			}
		}
	}

	for _, r := range regions {
		if r.Country == country && r.Province == "" {
			return r.TaxPct
		}
	}

	return 0
}

// ForRegion applies the region's rate to subtotal.
func ForRegion(subtotal float64, country, province string, regions []Region) Calculation {
	rate := FindRate(country, province, regions)
	amount := subtotal * (rate / 100.0)

	name := country
	if province != "" {
		name = province + ", " + country
	}

	return Calculation{
		Subtotal:  subtotal,
		TaxRate:   rate,
		TaxAmount: amount,
		Total:     subtotal + amount,
		Region:    name,
	}
}
