package books

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
func intPtr(n int) *int       { return &n }

func TestCreateBook(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, CreateBookOptions{
		BookName:  "Dune",
		Author:    "Frank Herbert",
		Category:  "Science Fiction",
		Publisher: strPtr("Ace Books"),
		Year:      intPtr(1965),
	})
	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.Equal(t, "Science Fiction", book.CategoryName())
	assert.Equal(t, "Ace Books", book.PublisherName())
	assert.Equal(t, 1, book.Volumes)
	assert.Equal(t, 1, book.Copies)
	assert.Equal(t, models.BookStatusAvailable, book.Status)

	// Category and publisher were created by the resolver.
	count, err := db.NewSelect().Model((*models.Category)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entry := &models.LibraryLog{}
	err = db.NewSelect().Model(entry).Where("ll.log_type = ?", models.LogTypeBook).Scan(ctx)
	require.NoError(t, err)
	assert.Contains(t, entry.Content, "Dune")
}

func TestCreateBook_ReusesCategory(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookOptions{BookName: "Dune", Author: "Frank Herbert", Category: "Science Fiction"})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, CreateBookOptions{BookName: "Hyperion", Author: "Dan Simmons", Category: "Science Fiction"})
	require.NoError(t, err)

	count, err := db.NewSelect().Model((*models.Category)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRetrieveBook_ByNameAndAuthor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, CreateBookOptions{BookName: "Dune", Author: "Frank Herbert", Category: "Science Fiction"})
	require.NoError(t, err)

	book, err := svc.RetrieveBook(ctx, RetrieveBookOptions{
		BookName: strPtr("Dune"),
		Author:   strPtr("Frank Herbert"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, book.ID)

	_, err = svc.RetrieveBook(ctx, RetrieveBookOptions{
		BookName: strPtr("Dune"),
		Author:   strPtr("Someone Else"),
	})
	require.Error(t, err)

	codedErr := &errcodes.Error{}
	require.ErrorAs(t, err, &codedErr)
	assert.Equal(t, 404, codedErr.HTTPCode)
}

func TestListBooksWithTotal_Filters(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookOptions{BookName: "Dune", Author: "Frank Herbert", Category: "Science Fiction", Publisher: strPtr("Ace Books")})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, CreateBookOptions{BookName: "Dune Messiah", Author: "Frank Herbert", Category: "Science Fiction"})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, CreateBookOptions{BookName: "A Distant Mirror", Author: "Barbara Tuchman", Category: "History"})
	require.NoError(t, err)

	// Case-insensitive substring match on the name.
	books, total, err := svc.ListBooksWithTotal(ctx, ListBooksOptions{BookName: strPtr("dune")})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, books, 2)

	_, total, err = svc.ListBooksWithTotal(ctx, ListBooksOptions{Author: strPtr("tuchman")})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = svc.ListBooksWithTotal(ctx, ListBooksOptions{Category: strPtr("history")})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = svc.ListBooksWithTotal(ctx, ListBooksOptions{Publisher: strPtr("ace")})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// Pagination: page size 2 still reports the full total.
	limit, offset := 2, 0
	books, total, err = svc.ListBooksWithTotal(ctx, ListBooksOptions{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, books, 2)
}

func TestUpdateBook_PartialUpdate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, CreateBookOptions{
		BookName:  "Dune",
		Author:    "Frank Herbert",
		Category:  "Science Fiction",
		Publisher: strPtr("Ace Books"),
		Year:      intPtr(1965),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateBook(ctx, created.ID, UpdateBookOptions{
		Category: strPtr("Classics"),
		Note:     strPtr("signed copy"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Classics", updated.CategoryName())
	require.NotNil(t, updated.Note)
	assert.Equal(t, "signed copy", *updated.Note)
	// Untouched fields survive.
	assert.Equal(t, "Dune", updated.BookName)
	assert.Equal(t, "Ace Books", updated.PublisherName())
	require.NotNil(t, updated.Year)
	assert.Equal(t, 1965, *updated.Year)
}

func TestUpdateBook_ClearsPublisher(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, CreateBookOptions{
		BookName:  "Dune",
		Author:    "Frank Herbert",
		Category:  "Science Fiction",
		Publisher: strPtr("Ace Books"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateBook(ctx, created.ID, UpdateBookOptions{Publisher: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.PublisherID)
	assert.Empty(t, updated.PublisherName())
}

func TestDeleteBook_RemovesIssueHistory(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, CreateBookOptions{BookName: "Dune", Author: "Frank Herbert", Category: "Science Fiction"})
	require.NoError(t, err)

	member := &models.Member{CreatedAt: time.Now(), Name: "Paul"}
	_, err = db.NewInsert().Model(member).Returning("*").Exec(ctx)
	require.NoError(t, err)

	now := time.Now()
	record := &models.IssueRecord{
		CreatedAt:        now,
		BookID:           created.ID,
		MemberID:         member.ID,
		IssueDate:        now.AddDate(0, 0, -10),
		ReturnDate:       now,
		ActualReturnDate: &now,
		Status:           models.IssueStatusReturned,
	}
	_, err = db.NewInsert().Model(record).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, created.ID))

	count, err := db.NewSelect().Model((*models.IssueRecord)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBulkDeleteBooks(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first, err := svc.CreateBook(ctx, CreateBookOptions{BookName: "Dune", Author: "Frank Herbert", Category: "Science Fiction"})
	require.NoError(t, err)
	second, err := svc.CreateBook(ctx, CreateBookOptions{BookName: "Hyperion", Author: "Dan Simmons", Category: "Science Fiction"})
	require.NoError(t, err)

	deleted, err := svc.BulkDeleteBooks(ctx, []int{first.ID, second.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	count, err := db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	entry := &models.LibraryLog{}
	err = db.NewSelect().Model(entry).Where("ll.log_type = ?", models.LogTypeDelete).Scan(ctx)
	require.NoError(t, err)
	assert.Contains(t, entry.Content, "2 books")
}

func TestBulkDeleteBooks_NoMatches(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.BulkDeleteBooks(context.Background(), []int{1, 2, 3})
	require.Error(t, err)

	codedErr := &errcodes.Error{}
	require.ErrorAs(t, err, &codedErr)
	assert.Equal(t, 404, codedErr.HTTPCode)
}
