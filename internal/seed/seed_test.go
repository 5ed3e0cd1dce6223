package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Simplici0/quote.works/internal/db"
	"github.com/Simplici0/quote.works/internal/migrations"
	"github.com/Simplici0/quote.works/internal/tax"
)

func TestRunIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	cfg := Config{RoundingThreshold: 0.25}
	want := 1 + len(Tiers) + len(Languages) + len(CertificationTypes) +
		len(ComplexityCategories) + len(ShippingMethods) + len(tax.DefaultRegions())

	for i := 0; i < 10; i++ {
		stats, err := Run(context.Background(), database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != want {
				t.Fatalf("expected %d inserts in first run, got %d", want, stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 || stats.Updates != 0 {
			t.Fatalf("expected no writes in iteration %d, got %+v", i, stats)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM settings WHERE id = 1`, nil, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM pricing_tiers`, nil, len(Tiers))
	assertCount(t, database, `SELECT COUNT(*) FROM pricing_languages`, nil, len(Languages))
	assertCount(t, database, `SELECT COUNT(*) FROM certification_types WHERE name = ?`, "PPTC", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM shipping_methods WHERE name = ? AND price_cents = ?`, []any{"Express Post", 2500}, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM tax_regions WHERE country = ? AND province = ?`, []any{"CA", "ON"}, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM tax_regions WHERE country = ? AND province = ''`, "US", 1)

	var threshold, baseRate float64
	var slaJSON string
	if err := database.QueryRow(`SELECT rounding_threshold, base_rate, sla_json FROM settings WHERE id = 1`).Scan(&threshold, &baseRate, &slaJSON); err != nil {
		t.Fatalf("query settings: %v", err)
	}
	if threshold != 0.25 || baseRate != 40 {
		t.Fatalf("settings = threshold %v base %v, want 0.25 and 40", threshold, baseRate)
	}
	if slaJSON != `{"rules":[{"pages":"1-3","businessDays":2},{"pages":"4+","additionalDaysPerFourPages":1}]}` {
		t.Fatalf("unexpected sla_json %s", slaJSON)
	}

	var tier string
	if err := database.QueryRow(`
		SELECT t.code FROM pricing_languages l JOIN pricing_tiers t ON t.id = l.tier_id WHERE l.code = ?
	`, "fr").Scan(&tier); err != nil {
		t.Fatalf("query fr tier: %v", err)
	}
	if tier != "C" {
		t.Fatalf("fr tier = %s, want C", tier)
	}
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
