package catalog

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shelfdesk/shelfdesk/pkg/migrations"
	"github.com/shelfdesk/shelfdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestResolverCategory_CreatesWhenAbsent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	r := NewResolver(db)
	ctx := context.Background()

	category, err := r.Category(ctx, "Fiction")
	require.NoError(t, err)
	assert.NotZero(t, category.ID)
	assert.Equal(t, "Fiction", category.Name)

	count, err := db.NewSelect().Model((*models.Category)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResolverCategory_ReturnsExisting(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	r := NewResolver(db)
	ctx := context.Background()

	first, err := r.Category(ctx, "Fiction")
	require.NoError(t, err)

	second, err := r.Category(ctx, "Fiction")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := db.NewSelect().Model((*models.Category)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResolverCategory_TrimsName(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	r := NewResolver(db)
	ctx := context.Background()

	first, err := r.Category(ctx, "Fiction")
	require.NoError(t, err)

	second, err := r.Category(ctx, "  Fiction  ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestResolverCategory_MatchIsCaseSensitive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	r := NewResolver(db)
	ctx := context.Background()

	first, err := r.Category(ctx, "Fiction")
	require.NoError(t, err)

	second, err := r.Category(ctx, "fiction")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestResolverCategory_RejectsEmptyName(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	r := NewResolver(db)

	_, err := r.Category(context.Background(), "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't be empty")
}

func TestResolverPublisher_VisibleInsideTransaction(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		r := NewResolver(tx)

		publisher, err := r.Publisher(ctx, "Scribner")
		require.NoError(t, err)

		// The created row is visible to the same transaction before commit.
		again, err := r.Publisher(ctx, "Scribner")
		require.NoError(t, err)
		assert.Equal(t, publisher.ID, again.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestResolverPublisher_RolledBackWithEnclosingTransaction(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	sentinel := assert.AnError
	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		r := NewResolver(tx)
		_, err := r.Publisher(ctx, "Scribner")
		require.NoError(t, err)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	count, err := db.NewSelect().Model((*models.Publisher)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "resolver insert should not survive a rolled back transaction")
}
