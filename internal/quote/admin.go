package quote

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/quote.works/internal/validate"
)

// Catalog returns the active reference data used to build a Request.
func (s *Service) Catalog(ctx context.Context) (Catalog, error) {
	var c Catalog
	var err error

	if c.Tiers, err = s.store.Tiers(ctx); err != nil {
		return Catalog{}, err
	}
	if c.Languages, err = s.store.Languages(ctx); err != nil {
		return Catalog{}, err
	}
	if c.CertificationTypes, err = s.store.CertificationTypes(ctx, true); err != nil {
		return Catalog{}, err
	}
	if c.ComplexityCategories, err = s.store.ComplexityCategories(ctx); err != nil {
		return Catalog{}, err
	}
	if c.ShippingMethods, err = s.store.ShippingMethods(ctx, true); err != nil {
		return Catalog{}, err
	}

	settings, err := s.store.Settings(ctx)
	if err != nil {
		return Catalog{}, err
	}
	c.Currency = settings.Currency
	return c, nil
}

func (s *Service) Settings(ctx context.Context) (Settings, error) {
	return s.store.Settings(ctx)
}

// UpdateSettings validates and stores st. Stored quotes are not repriced.
func (s *Service) UpdateSettings(ctx context.Context, st Settings) (Settings, error) {
	st.Currency = strings.ToUpper(strings.TrimSpace(st.Currency))
	if err := validate.Struct(st); err != nil {
		return Settings{}, err
	}
	if err := st.SLA.Validate(); err != nil {
		return Settings{}, validate.Field("sla", err.Error())
	}

	if err := s.store.UpdateSettings(ctx, st); err != nil {
		return Settings{}, err
	}
	s.logger.Info("settings updated",
		zap.Float64("base_rate", st.BaseRate),
		zap.Float64("divisor", st.Divisor),
		zap.Float64("rounding_threshold", st.RoundingThreshold),
	)
	return s.store.Settings(ctx)
}

func (s *Service) TaxRegions(ctx context.Context) ([]TaxRegion, error) {
	return s.store.TaxRegions(ctx)
}

func (s *Service) CreateTaxRegion(ctx context.Context, r TaxRegion) (TaxRegion, error) {
	r = normalizeRegion(r)
	if err := validate.Struct(r); err != nil {
		return TaxRegion{}, err
	}
	return s.store.CreateTaxRegion(ctx, r)
}

func (s *Service) UpdateTaxRegion(ctx context.Context, id string, r TaxRegion) (TaxRegion, error) {
	r = normalizeRegion(r)
	r.ID = id
	if err := validate.Struct(r); err != nil {
		return TaxRegion{}, err
	}
	if err := s.store.UpdateTaxRegion(ctx, r); err != nil {
		return TaxRegion{}, err
	}
	return r, nil
}

func normalizeRegion(r TaxRegion) TaxRegion {
	r.Country = strings.ToUpper(strings.TrimSpace(r.Country))
	r.Province = strings.ToUpper(strings.TrimSpace(r.Province))
	return r
}

func (s *Service) CertificationTypes(ctx context.Context) ([]CertificationType, error) {
	return s.store.CertificationTypes(ctx, false)
}

func (s *Service) CreateCertificationType(ctx context.Context, c CertificationType) (CertificationType, error) {
	c = normalizeCertification(c)
	if err := validate.Struct(c); err != nil {
		return CertificationType{}, err
	}
	return s.store.CreateCertificationType(ctx, c)
}

func (s *Service) UpdateCertificationType(ctx context.Context, id string, c CertificationType) (CertificationType, error) {
	c = normalizeCertification(c)
	c.ID = id
	if err := validate.Struct(c); err != nil {
		return CertificationType{}, err
	}
	if err := s.store.UpdateCertificationType(ctx, c); err != nil {
		return CertificationType{}, err
	}
	return c, nil
}

// normalizeCertification forces a multiplier of 1 on flat types.
func normalizeCertification(c CertificationType) CertificationType {
	c.Name = strings.TrimSpace(c.Name)
	c.PricingMode = strings.ToLower(strings.TrimSpace(c.PricingMode))
	if c.PricingMode == PricingModeFlat || c.Multiplier == 0 {
		c.Multiplier = 1
	}
	return c
}
