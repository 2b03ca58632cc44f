package categories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shelfdesk/shelfdesk/pkg/errcodes"
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

func strPtr(s string) *string { return &s }

func TestCreateCategory(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CreateCategoryOptions{
		Name:        "Fiction",
		Description: strPtr("Novels and short stories"),
	})
	require.NoError(t, err)
	assert.NotZero(t, category.ID)

	_, err = svc.CreateCategory(ctx, CreateCategoryOptions{Name: "Fiction"})
	require.Error(t, err)

	codedErr := &errcodes.Error{}
	require.ErrorAs(t, err, &codedErr)
	assert.Equal(t, 409, codedErr.HTTPCode)
}

func TestListCategories_IncludesBookCount(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	fiction, err := svc.CreateCategory(ctx, CreateCategoryOptions{Name: "Fiction"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CreateCategoryOptions{Name: "History"})
	require.NoError(t, err)

	book := &models.Book{
		CreatedAt:  time.Now(),
		BookName:   "Dune",
		Author:     "Frank Herbert",
		CategoryID: fiction.ID,
		Volumes:    1,
		Copies:     1,
		Status:     models.BookStatusAvailable,
	}
	_, err = db.NewInsert().Model(book).Exec(ctx)
	require.NoError(t, err)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Fiction", categories[0].Name)
	assert.Equal(t, 1, categories[0].BookCount)
	assert.Equal(t, "History", categories[1].Name)
	assert.Zero(t, categories[1].BookCount)
}

func TestUpdateCategory_NameTaken(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CreateCategoryOptions{Name: "Fiction"})
	require.NoError(t, err)
	history, err := svc.CreateCategory(ctx, CreateCategoryOptions{Name: "History"})
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, history.ID, UpdateCategoryOptions{Name: strPtr("Fiction")})
	require.Error(t, err)

	codedErr := &errcodes.Error{}
	require.ErrorAs(t, err, &codedErr)
	assert.Equal(t, 409, codedErr.HTTPCode)
}

func TestDeleteCategory_BlockedWhenReferenced(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	fiction, err := svc.CreateCategory(ctx, CreateCategoryOptions{Name: "Fiction"})
	require.NoError(t, err)

	book := &models.Book{
		CreatedAt:  time.Now(),
		BookName:   "Dune",
		Author:     "Frank Herbert",
		CategoryID: fiction.ID,
		Volumes:    1,
		Copies:     1,
		Status:     models.BookStatusAvailable,
	}
	_, err = db.NewInsert().Model(book).Exec(ctx)
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, fiction.ID)
	require.Error(t, err)

	codedErr := &errcodes.Error{}
	require.ErrorAs(t, err, &codedErr)
	assert.Equal(t, 409, codedErr.HTTPCode)
}

func TestDeleteCategory(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	fiction, err := svc.CreateCategory(ctx, CreateCategoryOptions{Name: "Fiction"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, fiction.ID))

	count, err := db.NewSelect().Model((*models.Category)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
