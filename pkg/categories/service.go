package categories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfdesk/shelfdesk/pkg/errcodes"
	"github.com/shelfdesk/shelfdesk/pkg/librarylog"
	"github.com/shelfdesk/shelfdesk/pkg/models"
	"github.com/uptrace/bun"
)

type CreateCategoryOptions struct {
	Name        string
	Description *string
}

type UpdateCategoryOptions struct {
	Name        *string
	Description *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateCategory(ctx context.Context, opts CreateCategoryOptions) (*models.Category, error) {
	category := &models.Category{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Category)(nil)).
			Where("name = ?", opts.Name).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict(fmt.Sprintf("Category %q already exists.", opts.Name))
		}

		category.CreatedAt = time.Now()
		category.Name = opts.Name
		category.Description = opts.Description
		_, err = tx.NewInsert().Model(category).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypeCategory, fmt.Sprintf("New category %q added", category.Name))
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (svc *Service) RetrieveCategory(ctx context.Context, id int) (*models.Category, error) {
	category := &models.Category{}
	err := svc.db.NewSelect().Model(category).Where("c.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Category")
		}
		return nil, errors.WithStack(err)
	}
	return category, nil
}

// ListCategories returns all categories ordered by name, each with the number
// of books that reference it.
func (svc *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories := []*models.Category{}
	err := svc.db.
		NewSelect().
		Model(&categories).
		ColumnExpr("c.*").
		ColumnExpr("(SELECT count(*) FROM books b WHERE b.category_id = c.id) AS book_count").
		Order("c.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return categories, nil
}

func (svc *Service) UpdateCategory(ctx context.Context, id int, opts UpdateCategoryOptions) (*models.Category, error) {
	category := &models.Category{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(category).Where("c.id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Category")
			}
			return errors.WithStack(err)
		}

		columns := []string{}
		if opts.Name != nil && *opts.Name != category.Name {
			taken, err := tx.NewSelect().
				Model((*models.Category)(nil)).
				Where("name = ? AND id != ?", *opts.Name, id).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if taken {
				return errcodes.Conflict(fmt.Sprintf("Category %q already exists.", *opts.Name))
			}
			category.Name = *opts.Name
			columns = append(columns, "name")
		}
		if opts.Description != nil {
			category.Description = opts.Description
			columns = append(columns, "description")
		}

		if len(columns) == 0 {
			return nil
		}

		_, err = tx.NewUpdate().Model(category).Column(columns...).WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypeCategory, fmt.Sprintf("Category %q updated", category.Name))
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category that no book references.
func (svc *Service) DeleteCategory(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		category := &models.Category{}
		err := tx.NewSelect().Model(category).Where("c.id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Category")
			}
			return errors.WithStack(err)
		}

		inUse, err := tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("category_id = ?", id).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if inUse > 0 {
			return errcodes.Conflict(fmt.Sprintf("Category %q is used by %d books.", category.Name, inUse))
		}

		_, err = tx.NewDelete().Model(category).WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypeDelete, fmt.Sprintf("Category %q removed", category.Name))
	})
}
