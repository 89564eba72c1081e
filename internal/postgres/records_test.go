package postgres_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbecker/postal/internal"
	"github.com/mbecker/postal/internal/postgres"
	"github.com/mbecker/postal/internal/validation"
)

// newTestStore connects to the database named by TEST_DATABASE_URL and
// runs migrations. Tests are skipped when the variable is unset.
func newTestStore(t *testing.T) *postgres.RecordStore {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	sqlDB, err := sql.Open("pgx", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, internal.RunMigrations(sqlDB))

	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return postgres.NewRecordStore(pool)
}

func TestRecordStore_LastWriteWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	addr := validation.Address{
		StreetAddress: "742 Evergreen Terrace",
		City:          "Springfield",
		State:         "OR",
		ZIPCode:       "97477",
	}

	require.NoError(t, store.Record(ctx, addr, validation.Failed("no match")))
	require.NoError(t, store.Record(ctx, addr, validation.Validated(map[string]any{"streetAddress": "742 EVERGREEN TER"})))

	rec, err := store.Get(ctx, addr.StreetAddress)
	require.NoError(t, err)
	assert.Equal(t, addr.StreetAddress, rec.StreetAddress)
	assert.Equal(t, addr.City, rec.City)

	// Only the most recent outcome is readable at the key.
	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.ValidationResult, &result))
	assert.Equal(t, "742 EVERGREEN TER", result["streetAddress"])
	assert.NotContains(t, result, "error")
}

func TestRecordStore_FailedOutcomePersisted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	addr := validation.Address{
		StreetAddress: "1 Nowhere Rd",
		State:         "NV",
		ZIPCode:       "89001",
	}

	require.NoError(t, store.Record(ctx, addr, validation.Failed(validation.ReasonBothFailed)))

	rec, err := store.Get(ctx, addr.StreetAddress)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.ValidationResult, &result))
	assert.Equal(t, validation.ReasonBothFailed, result["error"])
}
