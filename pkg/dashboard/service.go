package dashboard

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shelfdesk/shelfdesk/pkg/models"
	"github.com/uptrace/bun"
)

// Stats is the set of headline numbers shown on the landing page.
type Stats struct {
	TotalBooks      int `json:"total_books"`
	TotalAuthors    int `json:"total_authors"`
	TotalCategories int `json:"total_categories"`
	TotalMembers    int `json:"total_members"`
	BooksAvailable  int `json:"books_available"`
	BooksIssued     int `json:"books_issued"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	var err error
	stats.TotalBooks, err = svc.db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("count(DISTINCT author)").
		Scan(ctx, &stats.TotalAuthors)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats.TotalCategories, err = svc.db.NewSelect().Model((*models.Category)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats.TotalMembers, err = svc.db.NewSelect().Model((*models.Member)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats.BooksAvailable, err = svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Where("status = ?", models.BookStatusAvailable).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats.BooksIssued, err = svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Where("status = ?", models.BookStatusIssued).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return stats, nil
}
