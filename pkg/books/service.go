package books

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfdesk/shelfdesk/pkg/catalog"
	"github.com/shelfdesk/shelfdesk/pkg/errcodes"
	"github.com/shelfdesk/shelfdesk/pkg/librarylog"
	"github.com/shelfdesk/shelfdesk/pkg/models"
	"github.com/uptrace/bun"
)

type CreateBookOptions struct {
	BookName         string
	Author           string
	Category         string
	Editor           *string
	Volumes          *int
	Publisher        *string
	Year             *int
	Copies           *int
	Status           *string
	CompletionStatus *string
	Note             *string
}

type UpdateBookOptions struct {
	BookName  *string
	Author    *string
	Volumes   *int
	Category  *string
	Publisher *string // empty string clears the publisher
	Year      *int
	Note      *string
}

type ListBooksOptions struct {
	Limit     *int
	Offset    *int
	BookName  *string
	Author    *string
	Category  *string
	Publisher *string
	Status    *string
}

type RetrieveBookOptions struct {
	ID       *int
	BookName *string
	Author   *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBook resolves the category/publisher names, inserts the book, and
// appends a log entry, all in one transaction.
func (svc *Service) CreateBook(ctx context.Context, opts CreateBookOptions) (*models.Book, error) {
	var id int
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		resolver := catalog.NewResolver(tx)

		category, err := resolver.Category(ctx, opts.Category)
		if err != nil {
			return err
		}

		var publisherID *int
		if opts.Publisher != nil && strings.TrimSpace(*opts.Publisher) != "" {
			publisher, err := resolver.Publisher(ctx, *opts.Publisher)
			if err != nil {
				return err
			}
			publisherID = &publisher.ID
		}

		now := time.Now()
		book := &models.Book{
			CreatedAt:        now,
			UpdatedAt:        now,
			BookName:         opts.BookName,
			Author:           opts.Author,
			CategoryID:       category.ID,
			Editor:           opts.Editor,
			Volumes:          1,
			PublisherID:      publisherID,
			Year:             opts.Year,
			Copies:           1,
			Status:           models.BookStatusAvailable,
			CompletionStatus: opts.CompletionStatus,
			Note:             opts.Note,
		}
		if opts.Volumes != nil {
			book.Volumes = *opts.Volumes
		}
		if opts.Copies != nil {
			book.Copies = *opts.Copies
		}
		if opts.Status != nil && *opts.Status != "" {
			book.Status = *opts.Status
		}

		_, err = tx.NewInsert().Model(book).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		id = book.ID

		return librarylog.Append(ctx, tx, models.LogTypeBook, fmt.Sprintf("New book %q added to library", book.BookName))
	})
	if err != nil {
		return nil, err
	}

	return svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
}

// RetrieveBook loads a single book with its category and publisher.
func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Category").
		Relation("Publisher")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.BookName != nil && opts.Author != nil {
		q = q.Where("b.book_name = ? AND b.author = ?", *opts.BookName, *opts.Author)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// ListBooksWithTotal returns a filtered page of books plus the total count of
// matches.
func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Category").
		Relation("Publisher").
		Order("b.id ASC")

	if opts.BookName != nil && *opts.BookName != "" {
		q = q.Where("LOWER(b.book_name) LIKE ?", likePattern(*opts.BookName))
	}
	if opts.Author != nil && *opts.Author != "" {
		q = q.Where("LOWER(b.author) LIKE ?", likePattern(*opts.Author))
	}
	if opts.Category != nil && *opts.Category != "" {
		q = q.Where("b.category_id IN (SELECT id FROM categories WHERE LOWER(name) LIKE ?)", likePattern(*opts.Category))
	}
	if opts.Publisher != nil && *opts.Publisher != "" {
		q = q.Where("b.publisher_id IN (SELECT id FROM publishers WHERE LOWER(name) LIKE ?)", likePattern(*opts.Publisher))
	}
	if opts.Status != nil && *opts.Status != "" {
		q = q.Where("b.status = ?", *opts.Status)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// UpdateBook applies a partial update: only fields present in opts change.
// Category and publisher names are resolved (creating rows when needed)
// inside the same transaction as the update.
func (svc *Service) UpdateBook(ctx context.Context, bookID int, opts UpdateBookOptions) (*models.Book, error) {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		book := &models.Book{}
		err := tx.NewSelect().Model(book).Where("b.id = ?", bookID).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book")
			}
			return errors.WithStack(err)
		}

		resolver := catalog.NewResolver(tx)
		columns := []string{}

		if opts.BookName != nil {
			book.BookName = *opts.BookName
			columns = append(columns, "book_name")
		}
		if opts.Author != nil {
			book.Author = *opts.Author
			columns = append(columns, "author")
		}
		if opts.Volumes != nil {
			book.Volumes = *opts.Volumes
			columns = append(columns, "volumes")
		}
		if opts.Category != nil {
			category, err := resolver.Category(ctx, *opts.Category)
			if err != nil {
				return err
			}
			book.CategoryID = category.ID
			columns = append(columns, "category_id")
		}
		if opts.Publisher != nil {
			if strings.TrimSpace(*opts.Publisher) == "" {
				book.PublisherID = nil
			} else {
				publisher, err := resolver.Publisher(ctx, *opts.Publisher)
				if err != nil {
					return err
				}
				book.PublisherID = &publisher.ID
			}
			columns = append(columns, "publisher_id")
		}
		if opts.Year != nil {
			book.Year = opts.Year
			columns = append(columns, "year")
		}
		if opts.Note != nil {
			book.Note = opts.Note
			columns = append(columns, "note")
		}

		if len(columns) == 0 {
			return nil
		}

		book.UpdatedAt = time.Now()
		columns = append(columns, "updated_at")

		_, err = tx.NewUpdate().
			Model(book).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypeBook, fmt.Sprintf("Book %q details updated", book.BookName))
	})
	if err != nil {
		return nil, err
	}

	return svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &bookID})
}

// DeleteBook removes a book along with its issue history.
func (svc *Service) DeleteBook(ctx context.Context, bookID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		book := &models.Book{}
		err := tx.NewSelect().Model(book).Where("b.id = ?", bookID).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book")
			}
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.IssueRecord)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypeBook, fmt.Sprintf("Book %q deleted from library", book.BookName))
	})
}

// BulkDeleteBooks removes all books with the given ids, along with their
// issue history, and returns how many were deleted.
func (svc *Service) BulkDeleteBooks(ctx context.Context, bookIDs []int) (int, error) {
	deleted := 0
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		books := []*models.Book{}
		err := tx.NewSelect().
			Model(&books).
			Where("b.id IN (?)", bun.In(bookIDs)).
			Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if len(books) == 0 {
			return errcodes.NotFound("Books")
		}

		names := make([]string, 0, len(books))
		ids := make([]int, 0, len(books))
		for _, book := range books {
			names = append(names, book.BookName)
			ids = append(ids, book.ID)
		}

		_, err = tx.NewDelete().
			Model((*models.IssueRecord)(nil)).
			Where("book_id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Book)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		deleted = len(books)
		summary := strings.Join(names[:min(len(names), 5)], ", ")
		if len(names) > 5 {
			summary += "..."
		}
		return librarylog.Append(ctx, tx, models.LogTypeDelete, fmt.Sprintf("Bulk deleted %d books: %s", deleted, summary))
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
