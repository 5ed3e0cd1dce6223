package quote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/quote.works/internal/sla"
	"github.com/Simplici0/quote.works/internal/tax"
)

// Store runs the SQL behind the quote service.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Settings(ctx context.Context) (Settings, error) {
	var st Settings
	var slaJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT base_rate, divisor, rounding_threshold, rush_pct, hitl_threshold, sla_json, currency, updated_at
		FROM settings
		WHERE id = 1
	`).Scan(&st.BaseRate, &st.Divisor, &st.RoundingThreshold, &st.RushPct, &st.HITLThreshold, &slaJSON, &st.Currency, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, fmt.Errorf("settings singleton: %w", ErrNotFound)
		}
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}

	st.SLA, err = sla.ParseSettings([]byte(slaJSON))
	if err != nil {
		return Settings{}, fmt.Errorf("stored settings: %w", err)
	}
	return st, nil
}

func (s *Store) UpdateSettings(ctx context.Context, st Settings) error {
	slaJSON, err := st.SLA.JSON()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE settings
		SET
			base_rate = ?,
			divisor = ?,
			rounding_threshold = ?,
			rush_pct = ?,
			hitl_threshold = ?,
			sla_json = ?,
			currency = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, st.BaseRate, st.Divisor, st.RoundingThreshold, st.RushPct, st.HITLThreshold, slaJSON, st.Currency)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return requireAffected(res, "settings singleton")
}

// TierMultiplier returns the tier multiplier of a language code.
func (s *Store) TierMultiplier(ctx context.Context, langCode string) (float64, bool, error) {
	var m float64
	err := s.db.QueryRowContext(ctx, `
		SELECT t.multiplier
		FROM pricing_languages l
		JOIN pricing_tiers t ON t.id = l.tier_id
		WHERE l.code = ?
	`, strings.ToLower(langCode)).Scan(&m)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query tier for language %s: %w", langCode, err)
	}
	return m, true, nil
}

func (s *Store) Tiers(ctx context.Context) ([]Tier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, multiplier FROM pricing_tiers ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query tiers: %w", err)
	}
	defer rows.Close()

	out := make([]Tier, 0)
	for rows.Next() {
		var t Tier
		if err := rows.Scan(&t.ID, &t.Code, &t.Multiplier); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Languages(ctx context.Context) ([]Language, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.code, l.name, t.code
		FROM pricing_languages l
		JOIN pricing_tiers t ON t.id = l.tier_id
		ORDER BY t.code, l.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query languages: %w", err)
	}
	defer rows.Close()

	out := make([]Language, 0)
	for rows.Next() {
		var l Language
		if err := rows.Scan(&l.Code, &l.Name, &l.TierCode); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) CertificationTypes(ctx context.Context, activeOnly bool) ([]CertificationType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price_cents, pricing_mode, multiplier, active
		FROM certification_types
		WHERE (? = 0 OR active = 1)
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("query certification types: %w", err)
	}
	defer rows.Close()

	out := make([]CertificationType, 0)
	for rows.Next() {
		var c CertificationType
		if err := rows.Scan(&c.ID, &c.Name, &c.PriceCents, &c.PricingMode, &c.Multiplier, &c.Active); err != nil {
			return nil, fmt.Errorf("scan certification type: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CertificationType(ctx context.Context, id string) (CertificationType, error) {
	var c CertificationType
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, price_cents, pricing_mode, multiplier, active
		FROM certification_types
		WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.PriceCents, &c.PricingMode, &c.Multiplier, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return CertificationType{}, fmt.Errorf("certification type %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return CertificationType{}, fmt.Errorf("query certification type %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) CreateCertificationType(ctx context.Context, c CertificationType) (CertificationType, error) {
	c.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certification_types (id, name, price_cents, pricing_mode, multiplier, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.PriceCents, c.PricingMode, c.Multiplier, c.Active)
	if isUniqueViolation(err) {
		return CertificationType{}, fmt.Errorf("certification type %q: %w", c.Name, ErrConflict)
	}
	if err != nil {
		return CertificationType{}, fmt.Errorf("insert certification type: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateCertificationType(ctx context.Context, c CertificationType) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE certification_types
		SET name = ?, price_cents = ?, pricing_mode = ?, multiplier = ?, active = ?
		WHERE id = ?
	`, c.Name, c.PriceCents, c.PricingMode, c.Multiplier, c.Active, c.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("certification type %q: %w", c.Name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update certification type: %w", err)
	}
	return requireAffected(res, "certification type "+c.ID)
}

func (s *Store) ComplexityCategories(ctx context.Context) ([]ComplexityCategory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, multiplier FROM complexity_categories ORDER BY multiplier`)
	if err != nil {
		return nil, fmt.Errorf("query complexity categories: %w", err)
	}
	defer rows.Close()

	out := make([]ComplexityCategory, 0)
	for rows.Next() {
		var c ComplexityCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Multiplier); err != nil {
			return nil, fmt.Errorf("scan complexity category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ShippingMethods(ctx context.Context, activeOnly bool) ([]ShippingMethod, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price_cents, tracking, active
		FROM shipping_methods
		WHERE (? = 0 OR active = 1)
		ORDER BY price_cents, name
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("query shipping methods: %w", err)
	}
	defer rows.Close()

	out := make([]ShippingMethod, 0)
	for rows.Next() {
		var m ShippingMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.PriceCents, &m.Tracking, &m.Active); err != nil {
			return nil, fmt.Errorf("scan shipping method: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ShippingMethod(ctx context.Context, id string) (ShippingMethod, error) {
	var m ShippingMethod
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, price_cents, tracking, active
		FROM shipping_methods
		WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.PriceCents, &m.Tracking, &m.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return ShippingMethod{}, fmt.Errorf("shipping method %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ShippingMethod{}, fmt.Errorf("query shipping method %s: %w", id, err)
	}
	return m, nil
}

func (s *Store) TaxRegions(ctx context.Context) ([]TaxRegion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, country, province, tax_pct
		FROM tax_regions
		ORDER BY country, province
	`)
	if err != nil {
		return nil, fmt.Errorf("query tax regions: %w", err)
	}
	defer rows.Close()

	out := make([]TaxRegion, 0)
	for rows.Next() {
		var r TaxRegion
		if err := rows.Scan(&r.ID, &r.Country, &r.Province, &r.TaxPct); err != nil {
			return nil, fmt.Errorf("scan tax region: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateTaxRegion(ctx context.Context, r TaxRegion) (TaxRegion, error) {
	r.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tax_regions (id, country, province, tax_pct)
		VALUES (?, ?, ?, ?)
	`, r.ID, r.Country, r.Province, r.TaxPct)
	if isUniqueViolation(err) {
		return TaxRegion{}, fmt.Errorf("tax region %s/%s: %w", r.Country, r.Province, ErrConflict)
	}
	if err != nil {
		return TaxRegion{}, fmt.Errorf("insert tax region: %w", err)
	}
	return r, nil
}

func (s *Store) UpdateTaxRegion(ctx context.Context, r TaxRegion) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tax_regions
		SET country = ?, province = ?, tax_pct = ?
		WHERE id = ?
	`, r.Country, r.Province, r.TaxPct, r.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("tax region %s/%s: %w", r.Country, r.Province, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update tax region: %w", err)
	}
	return requireAffected(res, "tax region "+r.ID)
}

// toTaxTable converts stored regions to the engine's table.
func toTaxTable(regions []TaxRegion) []tax.Region {
	out := make([]tax.Region, 0, len(regions))
	for _, r := range regions {
		out = append(out, tax.Region{Country: r.Country, Province: r.Province, TaxPct: r.TaxPct})
	}
	return out
}

func requireAffected(res sql.Result, what string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
