// Package quote composes the pricing, tax, SLA and review engines into stored quotes.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Simplici0/quote.works/internal/hitl"
	"github.com/Simplici0/quote.works/internal/money"
	"github.com/Simplici0/quote.works/internal/pricing"
	"github.com/Simplici0/quote.works/internal/sla"
	"github.com/Simplici0/quote.works/internal/tax"
	"github.com/Simplici0/quote.works/internal/validate"
)

const dueDateLayout = "2006-01-02"

// Service prices, stores and reprices quotes.
type Service struct {
	store          *Store
	logger         *zap.Logger
	now            func() time.Time
	defaultCountry string
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaultCountry sets the tax country used when a request has none.
func WithDefaultCountry(country string) Option {
	return func(s *Service) { s.defaultCountry = strings.ToUpper(country) }
}

// NewService returns a Service backed by store.
func NewService(store *Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:          store,
		logger:         logger,
		now:            time.Now,
		defaultCountry: "CA",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Estimate prices a request without storing it.
func (s *Service) Estimate(ctx context.Context, req Request) (Breakdown, error) {
	req, err := s.normalize(req)
	if err != nil {
		return Breakdown{}, err
	}
	return s.price(ctx, req, s.now().UTC())
}

// Create prices and stores a new draft quote. The billed snapshot starts equal
// to the calculation.
func (s *Service) Create(ctx context.Context, req Request) (Quote, error) {
	req, err := s.normalize(req)
	if err != nil {
		return Quote{}, err
	}

	now := s.now().UTC()
	b, err := s.price(ctx, req, now)
	if err != nil {
		return Quote{}, err
	}

	q := Quote{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Status:    StatusDraft,
	}
	applyRequest(&q, req, b)
	q.Ledger = pricing.ToBilledTotals(b.Totals())
	q.Drift = q.Ledger.Drift()
	q.Billed = &Snapshot{Request: req, Breakdown: b}

	if err := s.store.InsertQuote(ctx, q); err != nil {
		return Quote{}, err
	}

	s.logger.Info("quote created",
		zap.String("quote_id", q.ID),
		zap.Float64("total", q.Ledger.Billed.Total),
		zap.Bool("requires_hitl", q.RequiresHITL),
	)
	return q, nil
}

// Get returns the full quote: the latest calculation plus the billed snapshot.
func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	return s.store.GetQuote(ctx, id)
}

// CustomerQuote returns the quote as last issued to the customer.
func (s *Service) CustomerQuote(ctx context.Context, id string) (Quote, error) {
	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	return q.CustomerView(), nil
}

func (s *Service) List(ctx context.Context, query string) ([]ListItem, error) {
	return s.store.ListQuotes(ctx, strings.TrimSpace(query))
}

// Reprice recomputes a stored quote from req. Only the calculated side is
// written; the billed snapshot stays frozen until Rebill is called.
func (s *Service) Reprice(ctx context.Context, id string, req Request) (Quote, error) {
	req, err := s.normalize(req)
	if err != nil {
		return Quote{}, err
	}

	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return Quote{}, err
	}

	now := s.now().UTC()
	b, err := s.price(ctx, req, now)
	if err != nil {
		return Quote{}, err
	}

	applyRequest(&q, req, b)
	q.UpdatedAt = now
	q.Ledger = pricing.KeepBilledFrozen(b.Totals(), q.Ledger.Billed)

	if err := s.store.UpdateQuote(ctx, q); err != nil {
		return Quote{}, err
	}

	// Re-read so the billed side reflects the row, not the copy read above.
	q, err = s.store.GetQuote(ctx, id)
	if err != nil {
		return Quote{}, err
	}

	s.logger.Info("quote repriced",
		zap.String("quote_id", q.ID),
		zap.Float64("calc_total", q.Ledger.Calc.Total),
		zap.Float64("billed_total", q.Ledger.Billed.Total),
		zap.Int64("drift_cents", money.Cents(q.Drift)),
	)
	return q, nil
}

// Rebill issues the current calculation to the customer: billed totals and
// the billed snapshot are copied from the calculated side in one statement.
func (s *Service) Rebill(ctx context.Context, id string) (Quote, error) {
	before, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return Quote{}, err
	}

	if err := s.store.Rebill(ctx, id, s.now().UTC()); err != nil {
		return Quote{}, err
	}

	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return Quote{}, err
	}

	s.logger.Info("quote rebilled",
		zap.String("quote_id", q.ID),
		zap.Float64("previous_total", before.Ledger.Billed.Total),
		zap.Float64("billed_total", q.Ledger.Billed.Total),
	)
	return q, nil
}

func applyRequest(q *Quote, req Request, b Breakdown) {
	q.Title = req.Title
	q.Notes = req.Notes
	q.CustomerEmail = req.CustomerEmail
	q.SourceLang = req.SourceLang
	q.TargetLang = req.TargetLang
	q.Country = req.Country
	q.Province = req.Province
	q.Rush = req.Rush
	q.ShippingMethodID = req.ShippingMethodID
	q.RequiresHITL = b.HITL.Required
	q.Currency = b.Currency
	q.Breakdown = b
	q.Request = req
}

// normalize validates req and fills defaults.
func (s *Service) normalize(req Request) (Request, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.SourceLang = strings.ToLower(strings.TrimSpace(req.SourceLang))
	req.TargetLang = strings.ToLower(strings.TrimSpace(req.TargetLang))
	req.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	req.Province = strings.ToUpper(strings.TrimSpace(req.Province))

	if err := validate.Struct(req); err != nil {
		return Request{}, err
	}
	if req.Country == "" {
		req.Country = s.defaultCountry
	}
	return req, nil
}

// price runs the engines over req using the stored reference data.
func (s *Service) price(ctx context.Context, req Request, now time.Time) (Breakdown, error) {
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return Breakdown{}, err
	}
	regions, err := s.store.TaxRegions(ctx)
	if err != nil {
		return Breakdown{}, err
	}
	complexity, err := s.complexityMultipliers(ctx)
	if err != nil {
		return Breakdown{}, err
	}
	tierMultiplier, err := s.tierMultiplier(ctx, req.SourceLang, req.TargetLang)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Items:          make([]ItemBreakdown, 0, len(req.Items)),
		TierMultiplier: tierMultiplier,
		Rate:           pricing.RoundRateToNext5(settings.BaseRate * tierMultiplier),
		RushPct:        settings.RushPct,
		Currency:       settings.Currency,
	}

	for i, item := range req.Items {
		in := pricing.ItemInput{
			Pages:             make([]pricing.Page, 0, len(item.Pages)),
			BaseRate:          settings.BaseRate,
			TierMultiplier:    tierMultiplier,
			Divisor:           settings.Divisor,
			RoundingThreshold: settings.RoundingThreshold,
		}

		ib := ItemBreakdown{
			Position:     i + 1,
			DocumentType: item.DocumentType,
			PageCount:    len(item.Pages),
		}

		for _, p := range item.Pages {
			m := 1.0
			if p.ComplexityID != "" {
				var ok bool
				if m, ok = complexity[p.ComplexityID]; !ok {
					return Breakdown{}, fmt.Errorf("%w: complexity category %s", ErrUnknownReference, p.ComplexityID)
				}
			}
			in.Pages = append(in.Pages, pricing.Page{Words: p.Words, ComplexityMultiplier: m})
			ib.Words += p.Words
		}

		if item.CertificationTypeID != "" {
			ct, err := s.activeCertificationType(ctx, item.CertificationTypeID)
			if err != nil {
				return Breakdown{}, err
			}
			price := ct.PriceCents
			in.CertificationPriceCents = &price
			if ct.PricingMode == PricingModeMultiplier {
				mult := ct.Multiplier
				in.CertificationMultiplier = &mult
			}
			ib.CertificationTypeID = ct.ID
			ib.CertificationName = ct.Name
		}

		res := pricing.PriceItem(in)
		ib.Units = res.Units
		ib.Rate = res.Rate
		ib.Subtotal = money.Round(res.Subtotal)
		ib.CertificationCost = money.Round(res.CertificationCost)
		ib.Total = money.Round(res.Total)

		b.Items = append(b.Items, ib)
		b.Units += res.Units
		b.TranslationSubtotal += res.Subtotal
		b.CertificationTotal += res.CertificationCost
		b.ItemsTotal += res.Total
		b.PageCount += ib.PageCount
	}

	if req.Rush {
		b.RushFee = money.Round(b.TranslationSubtotal * settings.RushPct / 100)
	}

	if req.ShippingMethodID != "" {
		m, err := s.activeShippingMethod(ctx, req.ShippingMethodID)
		if err != nil {
			return Breakdown{}, err
		}
		b.ShippingMethod = m.Name
		b.ShippingFee = money.FromCents(m.PriceCents)
	}

	b.TranslationSubtotal = money.Round(b.TranslationSubtotal)
	b.CertificationTotal = money.Round(b.CertificationTotal)
	b.ItemsTotal = money.Round(b.ItemsTotal)

	preTax := money.Round(b.ItemsTotal + b.RushFee + b.ShippingFee)
	b.Tax = tax.ForRegion(preTax, req.Country, req.Province, toTaxTable(regions))
	b.Tax.TaxAmount = money.Round(b.Tax.TaxAmount)
	b.Tax.Total = money.Round(b.Tax.Subtotal + b.Tax.TaxAmount)
	b.GrandTotal = b.Tax.Total

	b.DeliveryDays = sla.DeliveryDays(b.PageCount, settings.SLA)
	b.DueDate = sla.DeliveryDate(now, b.DeliveryDays).Format(dueDateLayout)

	pages := make([]hitl.PageConfidence, 0, len(req.OCRConfidences))
	for _, c := range req.OCRConfidences {
		pages = append(pages, hitl.PageConfidence{ConfidencePct: c})
	}
	b.HITL = hitl.Evaluate(req.SourceLang, req.TargetLang, pages, settings.HITLThreshold)

	return b, nil
}

// tierMultiplier picks the higher of the two language tiers, or 1 when neither is priced.
func (s *Service) tierMultiplier(ctx context.Context, source, target string) (float64, error) {
	best, found := 0.0, false
	for _, lang := range []string{source, target} {
		m, ok, err := s.store.TierMultiplier(ctx, lang)
		if err != nil {
			return 0, err
		}
		if ok && (!found || m > best) {
			best, found = m, true
		}
	}
	if !found {
		return 1.0, nil
	}
	return best, nil
}

func (s *Service) complexityMultipliers(ctx context.Context) (map[string]float64, error) {
	cats, err := s.store.ComplexityCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(cats))
	for _, c := range cats {
		out[c.ID] = c.Multiplier
	}
	return out, nil
}

func (s *Service) activeCertificationType(ctx context.Context, id string) (CertificationType, error) {
	ct, err := s.store.CertificationType(ctx, id)
	if errors.Is(err, ErrNotFound) || (err == nil && !ct.Active) {
		return CertificationType{}, fmt.Errorf("%w: certification type %s", ErrUnknownReference, id)
	}
	return ct, err
}

func (s *Service) activeShippingMethod(ctx context.Context, id string) (ShippingMethod, error) {
	m, err := s.store.ShippingMethod(ctx, id)
	if errors.Is(err, ErrNotFound) || (err == nil && !m.Active) {
		return ShippingMethod{}, fmt.Errorf("%w: shipping method %s", ErrUnknownReference, id)
	}
	return m, err
}
