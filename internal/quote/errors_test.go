package quote

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Simplici0/quote.works/internal/db"
	"github.com/Simplici0/quote.works/internal/migrations"
)

func TestIsUniqueViolation_UsesSqliteCodes(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "errors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Up(database, zaptest.NewLogger(t)))

	ctx := context.Background()
	insert := `INSERT INTO tax_regions (id, country, province, tax_pct) VALUES (?, ?, ?, ?)`

	_, err = database.ExecContext(ctx, insert, "r1", "FR", "", 20)
	require.NoError(t, err)

	_, err = database.ExecContext(ctx, insert, "r2", "FR", "", 5.5)
	require.Error(t, err)
	require.True(t, isUniqueViolation(err), "duplicate (country, province): %v", err)
	require.True(t, isUniqueViolation(fmt.Errorf("create tax region: %w", err)), "wrapped")

	_, err = database.ExecContext(ctx, insert, "r1", "DE", "", 19)
	require.Error(t, err)
	require.True(t, isUniqueViolation(err), "duplicate primary key: %v", err)

	_, err = database.ExecContext(ctx, insert, "r3", nil, "", 19)
	require.Error(t, err)
	require.False(t, isUniqueViolation(err), "NOT NULL failure is not a conflict: %v", err)

	require.False(t, isUniqueViolation(errors.New("UNIQUE constraint failed: tax_regions.country")))
	require.False(t, isUniqueViolation(nil))
}
