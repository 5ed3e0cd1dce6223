package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Simplici0/quote.works/internal/db"
	"github.com/Simplici0/quote.works/internal/hitl"
	"github.com/Simplici0/quote.works/internal/pricing"
	"github.com/Simplici0/quote.works/internal/sla"
	"github.com/Simplici0/quote.works/internal/tax"
)

const (
	defaultBaseRate = 40.0
	defaultRushPct  = 30.0
	defaultCurrency = "CAD"
)

// Config contains the values required by startup seed.
type Config struct {
	RoundingThreshold float64
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

type Tier struct {
	Code       string
	Multiplier float64
}

type Language struct {
	Code string
	Name string
	Tier string
}

type CertificationType struct {
	Name        string
	PriceCents  int64
	PricingMode string
	Multiplier  float64
}

type ComplexityCategory struct {
	Name       string
	Multiplier float64
}

type ShippingMethod struct {
	Name       string
	PriceCents int64
	Tracking   bool
}

// Reference data inserted on first run.
var (
	Tiers = []Tier{
		{Code: "A", Multiplier: 1.00},
		{Code: "B", Multiplier: 1.20},
		{Code: "C", Multiplier: 1.35},
		{Code: "D", Multiplier: 1.50},
	}

	Languages = []Language{
		{Code: "pa", Name: "Punjabi", Tier: "A"},
		{Code: "hi", Name: "Hindi", Tier: "A"},
		{Code: "mr", Name: "Marathi", Tier: "A"},
		{Code: "ar", Name: "Arabic", Tier: "B"},
		{Code: "zh", Name: "Chinese", Tier: "B"},
		{Code: "th", Name: "Thai", Tier: "B"},
		{Code: "fr", Name: "French", Tier: "C"},
		{Code: "de", Name: "German", Tier: "C"},
		{Code: "it", Name: "Italian", Tier: "C"},
		{Code: "el", Name: "Greek", Tier: "C"},
		{Code: "no", Name: "Norwegian", Tier: "D"},
		{Code: "sv", Name: "Swedish", Tier: "D"},
		{Code: "fi", Name: "Finnish", Tier: "D"},
		{Code: "nl", Name: "Dutch", Tier: "D"},
	}

	CertificationTypes = []CertificationType{
		{Name: "Notarization", PriceCents: 5000, PricingMode: "flat", Multiplier: 1},
		{Name: "PPTC", PriceCents: 3500, PricingMode: "flat", Multiplier: 1},
		{Name: "Standard", PriceCents: 0, PricingMode: "flat", Multiplier: 1},
	}

	ComplexityCategories = []ComplexityCategory{
		{Name: "Easy", Multiplier: 1.00},
		{Name: "Medium", Multiplier: 1.15},
		{Name: "Hard", Multiplier: 1.30},
	}

	ShippingMethods = []ShippingMethod{
		{Name: "Online Copy", PriceCents: 0, Tracking: false},
		{Name: "Canada Post", PriceCents: 500, Tracking: true},
		{Name: "Pickup Calgary", PriceCents: 0, Tracking: false},
		{Name: "Express Post", PriceCents: 2500, Tracking: true},
	}
)

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, database *sql.DB, cfg Config) (Stats, error) {
	stats := Stats{}
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		if err := ensureSettings(tx, cfg, &stats); err != nil {
			return err
		}
		for _, t := range Tiers {
			if err := ensureTier(tx, t, &stats); err != nil {
				return err
			}
		}
		for _, l := range Languages {
			if err := ensureLanguage(tx, l, &stats); err != nil {
				return err
			}
		}
		for _, c := range CertificationTypes {
			if err := ensureCertificationType(tx, c, &stats); err != nil {
				return err
			}
		}
		for _, c := range ComplexityCategories {
			if err := ensureComplexity(tx, c, &stats); err != nil {
				return err
			}
		}
		for _, m := range ShippingMethods {
			if err := ensureShipping(tx, m, &stats); err != nil {
				return err
			}
		}
		for _, r := range tax.DefaultRegions() {
			if err := ensureTaxRegion(tx, r, &stats); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("seed: %w", err)
	}
	return stats, nil
}

func ensureSettings(tx *sql.Tx, cfg Config, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check settings existence: %w", err)
	}
	if exists {
		return nil
	}

	threshold := cfg.RoundingThreshold
	if threshold <= 0 {
		threshold = pricing.DefaultRoundingThreshold
	}
	slaJSON, err := sla.DefaultSettings().JSON()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO settings (id, base_rate, divisor, rounding_threshold, rush_pct, hitl_threshold, sla_json, currency)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	`, defaultBaseRate, pricing.DefaultDivisor, threshold, defaultRushPct, hitl.DefaultConfidenceThreshold, slaJSON, defaultCurrency); err != nil {
		return fmt.Errorf("insert settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureTier(tx *sql.Tx, t Tier, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM pricing_tiers WHERE code = ?)`, t.Code).Scan(&exists); err != nil {
		return fmt.Errorf("check tier %s existence: %w", t.Code, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO pricing_tiers (id, code, multiplier) VALUES (?, ?, ?)`,
		uuid.NewString(), t.Code, t.Multiplier); err != nil {
		return fmt.Errorf("insert tier %s: %w", t.Code, err)
	}
	stats.Inserts++
	return nil
}

func ensureLanguage(tx *sql.Tx, l Language, stats *Stats) error {
	var tierID string
	if err := tx.QueryRow(`SELECT id FROM pricing_tiers WHERE code = ?`, l.Tier).Scan(&tierID); err != nil {
		return fmt.Errorf("lookup tier %s for language %s: %w", l.Tier, l.Code, err)
	}

	var current string
	err := tx.QueryRow(`SELECT tier_id FROM pricing_languages WHERE code = ?`, l.Code).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec(`INSERT INTO pricing_languages (code, name, tier_id) VALUES (?, ?, ?)`,
			l.Code, l.Name, tierID); err != nil {
			return fmt.Errorf("insert language %s: %w", l.Code, err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check language %s existence: %w", l.Code, err)
	}

	// Language tiers follow the map above.
	if current != tierID {
		if _, err := tx.Exec(`UPDATE pricing_languages SET tier_id = ? WHERE code = ?`, tierID, l.Code); err != nil {
			return fmt.Errorf("update language %s tier: %w", l.Code, err)
		}
		stats.Updates++
	}
	return nil
}

func ensureCertificationType(tx *sql.Tx, c CertificationType, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM certification_types WHERE name = ?)`, c.Name).Scan(&exists); err != nil {
		return fmt.Errorf("check certification type %s existence: %w", c.Name, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO certification_types (id, name, price_cents, pricing_mode, multiplier, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), c.Name, c.PriceCents, c.PricingMode, c.Multiplier, true); err != nil {
		return fmt.Errorf("insert certification type %s: %w", c.Name, err)
	}
	stats.Inserts++
	return nil
}

func ensureComplexity(tx *sql.Tx, c ComplexityCategory, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM complexity_categories WHERE name = ?)`, c.Name).Scan(&exists); err != nil {
		return fmt.Errorf("check complexity %s existence: %w", c.Name, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO complexity_categories (id, name, multiplier) VALUES (?, ?, ?)`,
		uuid.NewString(), c.Name, c.Multiplier); err != nil {
		return fmt.Errorf("insert complexity %s: %w", c.Name, err)
	}
	stats.Inserts++
	return nil
}

func ensureShipping(tx *sql.Tx, m ShippingMethod, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM shipping_methods WHERE name = ?)`, m.Name).Scan(&exists); err != nil {
		return fmt.Errorf("check shipping method %s existence: %w", m.Name, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO shipping_methods (id, name, price_cents, tracking, active)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), m.Name, m.PriceCents, m.Tracking, true); err != nil {
		return fmt.Errorf("insert shipping method %s: %w", m.Name, err)
	}
	stats.Inserts++
	return nil
}

func ensureTaxRegion(tx *sql.Tx, r tax.Region, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1
			FROM tax_regions
			WHERE country = ? AND province = ?
		)
	`, r.Country, r.Province).Scan(&exists); err != nil {
		return fmt.Errorf("check tax region %s/%s existence: %w", r.Country, r.Province, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO tax_regions (id, country, province, tax_pct) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), r.Country, r.Province, r.TaxPct); err != nil {
		return fmt.Errorf("insert tax region %s/%s: %w", r.Country, r.Province, err)
	}
	stats.Inserts++
	return nil
}
