package quote

import (
	"time"

	"github.com/Simplici0/quote.works/internal/hitl"
	"github.com/Simplici0/quote.works/internal/pricing"
	"github.com/Simplici0/quote.works/internal/sla"
	"github.com/Simplici0/quote.works/internal/tax"
)

// StatusDraft is the only status the service assigns; later states belong to staff workflows.
const StatusDraft = "draft"

// PageRequest is one page of a document.
type PageRequest struct {
	Words        int    `json:"words" validate:"min=0"`
	ComplexityID string `json:"complexityId,omitempty" validate:"omitempty,uuid"`
}

// ItemRequest is one document to translate.
type ItemRequest struct {
	DocumentType        string        `json:"documentType" validate:"max=200"`
	CertificationTypeID string        `json:"certificationTypeId,omitempty" validate:"omitempty,uuid"`
	Pages               []PageRequest `json:"pages" validate:"required,min=1,dive"`
}

// Request is everything needed to price a quote.
type Request struct {
	Title            string        `json:"title" validate:"max=200"`
	Notes            string        `json:"notes" validate:"max=2000"`
	CustomerEmail    string        `json:"customerEmail,omitempty" validate:"omitempty,email"`
	SourceLang       string        `json:"sourceLang" validate:"required,min=2,max=8"`
	TargetLang       string        `json:"targetLang" validate:"required,min=2,max=8"`
	Country          string        `json:"country,omitempty" validate:"omitempty,len=2"`
	Province         string        `json:"province,omitempty" validate:"omitempty,max=3"`
	Rush             bool          `json:"rush"`
	ShippingMethodID string        `json:"shippingMethodId,omitempty" validate:"omitempty,uuid"`
	Items            []ItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
	OCRConfidences   []float64     `json:"ocrConfidences,omitempty" validate:"omitempty,dive,min=0,max=100"`
}

// ItemBreakdown is the priced result of one ItemRequest.
type ItemBreakdown struct {
	Position            int     `json:"position"`
	DocumentType        string  `json:"documentType"`
	CertificationTypeID string  `json:"certificationTypeId,omitempty"`
	CertificationName   string  `json:"certificationName,omitempty"`
	PageCount           int     `json:"pageCount"`
	Words               int     `json:"words"`
	Units               float64 `json:"units"`
	Rate                float64 `json:"rate"`
	Subtotal            float64 `json:"subtotal"`
	CertificationCost   float64 `json:"certificationCost"`
	Total               float64 `json:"total"`
}

// Breakdown is the full priced snapshot of a request.
type Breakdown struct {
	Items               []ItemBreakdown `json:"items"`
	TierMultiplier      float64         `json:"tierMultiplier"`
	Units               float64         `json:"units"`
	Rate                float64         `json:"rate"`
	TranslationSubtotal float64         `json:"translationSubtotal"`
	CertificationTotal  float64         `json:"certificationTotal"`
	ItemsTotal          float64         `json:"itemsTotal"`
	RushPct             float64         `json:"rushPct"`
	RushFee             float64         `json:"rushFee"`
	ShippingMethod      string          `json:"shippingMethod,omitempty"`
	ShippingFee         float64         `json:"shippingFee"`
	Tax                 tax.Calculation `json:"tax"`
	GrandTotal          float64         `json:"grandTotal"`
	Currency            string          `json:"currency"`
	PageCount           int             `json:"pageCount"`
	DeliveryDays        int             `json:"deliveryDays"`
	DueDate             string          `json:"dueDate"`
	HITL                hitl.Decision   `json:"hitl"`
}

// Totals returns the calc side of the quote-level ledger.
func (b Breakdown) Totals() pricing.Totals {
	return pricing.Totals{Units: b.Units, Rate: b.Rate, Total: b.GrandTotal}
}

// Snapshot is the request and breakdown last issued to the customer.
type Snapshot struct {
	Request   Request   `json:"request"`
	Breakdown Breakdown `json:"breakdown"`
}

// Quote is a stored quote. Breakdown and Request hold the latest calculation;
// Billed holds what the customer was last shown. They differ after a Reprice
// until the quote is rebilled.
type Quote struct {
	ID               string         `json:"id"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	Title            string         `json:"title"`
	Notes            string         `json:"notes"`
	CustomerEmail    string         `json:"customerEmail"`
	SourceLang       string         `json:"sourceLang"`
	TargetLang       string         `json:"targetLang"`
	Country          string         `json:"country"`
	Province         string         `json:"province"`
	Rush             bool           `json:"rush"`
	ShippingMethodID string         `json:"shippingMethodId,omitempty"`
	Status           string         `json:"status"`
	RequiresHITL     bool           `json:"requiresHitl"`
	Currency         string         `json:"currency"`
	Ledger           pricing.Ledger `json:"ledger"`
	Drift            float64        `json:"drift"`
	Breakdown        Breakdown      `json:"breakdown"`
	Request          Request        `json:"request"`
	Billed           *Snapshot      `json:"billed,omitempty"`
}

// CustomerView returns the quote as last issued: the billed snapshot and billed
// totals, without the recalculated side.
func (q Quote) CustomerView() Quote {
	v := q
	if q.Billed != nil {
		applyRequest(&v, q.Billed.Request, q.Billed.Breakdown)
	}
	v.Ledger.Calc = v.Ledger.Billed
	v.Drift = 0
	v.Billed = nil
	return v
}

// ListItem is a row of the staff quote list.
type ListItem struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	Title         string    `json:"title"`
	CustomerEmail string    `json:"customerEmail"`
	Status        string    `json:"status"`
	RequiresHITL  bool      `json:"requiresHitl"`
	BilledTotal   float64   `json:"billedTotal"`
	CalcTotal     float64   `json:"calcTotal"`
	Currency      string    `json:"currency"`
}

// Settings is the pricing singleton staff can edit.
type Settings struct {
	BaseRate          float64      `json:"baseRate" validate:"gt=0"`
	Divisor           float64      `json:"divisor" validate:"gt=0"`
	RoundingThreshold float64      `json:"roundingThreshold" validate:"gt=0,lt=1"`
	RushPct           float64      `json:"rushPct" validate:"min=0,max=100"`
	HITLThreshold     float64      `json:"hitlThreshold" validate:"min=0,max=100"`
	SLA               sla.Settings `json:"sla"`
	Currency          string       `json:"currency" validate:"required,len=3,uppercase"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

type Tier struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Multiplier float64 `json:"multiplier"`
}

type Language struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	TierCode string `json:"tierCode"`
}

const (
	PricingModeFlat       = "flat"
	PricingModeMultiplier = "multiplier"
)

type CertificationType struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" validate:"required,max=100"`
	PriceCents  int64   `json:"priceCents" validate:"min=0"`
	PricingMode string  `json:"pricingMode" validate:"required,oneof=flat multiplier"`
	Multiplier  float64 `json:"multiplier" validate:"gt=0"`
	Active      bool    `json:"active"`
}

type ComplexityCategory struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

type ShippingMethod struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Tracking   bool   `json:"tracking"`
	Active     bool   `json:"active"`
}

type TaxRegion struct {
	ID       string  `json:"id"`
	Country  string  `json:"country" validate:"required,len=2,uppercase"`
	Province string  `json:"province" validate:"omitempty,max=3,uppercase"`
	TaxPct   float64 `json:"taxPct" validate:"min=0,max=100"`
}

// Catalog is the public reference data a client needs to build a Request.
type Catalog struct {
	Tiers                []Tier               `json:"tiers"`
	Languages            []Language           `json:"languages"`
	CertificationTypes   []CertificationType  `json:"certificationTypes"`
	ComplexityCategories []ComplexityCategory `json:"complexityCategories"`
	ShippingMethods      []ShippingMethod     `json:"shippingMethods"`
	Currency             string               `json:"currency"`
}
