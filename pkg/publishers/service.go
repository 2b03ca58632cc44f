package publishers

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

type CreatePublisherOptions struct {
	Name        string
	Address     *string
	ContactInfo *string
}

type UpdatePublisherOptions struct {
	Name        *string
	Address     *string
	ContactInfo *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreatePublisher(ctx context.Context, opts CreatePublisherOptions) (*models.Publisher, error) {
	publisher := &models.Publisher{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Publisher)(nil)).
			Where("name = ?", opts.Name).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict(fmt.Sprintf("Publisher %q already exists.", opts.Name))
		}

		publisher.CreatedAt = time.Now()
		publisher.Name = opts.Name
		publisher.Address = opts.Address
		publisher.ContactInfo = opts.ContactInfo
		_, err = tx.NewInsert().Model(publisher).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypePublisher, fmt.Sprintf("New publisher %q added", publisher.Name))
	})
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func (svc *Service) RetrievePublisher(ctx context.Context, id int) (*models.Publisher, error) {
	publisher := &models.Publisher{}
	err := svc.db.NewSelect().Model(publisher).Where("pub.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Publisher")
		}
		return nil, errors.WithStack(err)
	}
	return publisher, nil
}

// ListPublishers returns all publishers ordered by name, each with the number
// of books that reference it.
func (svc *Service) ListPublishers(ctx context.Context) ([]*models.Publisher, error) {
	publishers := []*models.Publisher{}
	err := svc.db.
		NewSelect().
		Model(&publishers).
		ColumnExpr("pub.*").
		ColumnExpr("(SELECT count(*) FROM books b WHERE b.publisher_id = pub.id) AS book_count").
		Order("pub.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return publishers, nil
}

func (svc *Service) UpdatePublisher(ctx context.Context, id int, opts UpdatePublisherOptions) (*models.Publisher, error) {
	publisher := &models.Publisher{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(publisher).Where("pub.id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Publisher")
			}
			return errors.WithStack(err)
		}

		columns := []string{}
		if opts.Name != nil && *opts.Name != publisher.Name {
			taken, err := tx.NewSelect().
				Model((*models.Publisher)(nil)).
				Where("name = ? AND id != ?", *opts.Name, id).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if taken {
				return errcodes.Conflict(fmt.Sprintf("Publisher %q already exists.", *opts.Name))
			}
			publisher.Name = *opts.Name
			columns = append(columns, "name")
		}
		if opts.Address != nil {
			publisher.Address = opts.Address
			columns = append(columns, "address")
		}
		if opts.ContactInfo != nil {
			publisher.ContactInfo = opts.ContactInfo
			columns = append(columns, "contact_info")
		}

		if len(columns) == 0 {
			return nil
		}

		_, err = tx.NewUpdate().Model(publisher).Column(columns...).WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypePublisher, fmt.Sprintf("Publisher %q updated", publisher.Name))
	})
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

// DeletePublisher removes a publisher that no book references.
func (svc *Service) DeletePublisher(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		publisher := &models.Publisher{}
		err := tx.NewSelect().Model(publisher).Where("pub.id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Publisher")
			}
			return errors.WithStack(err)
		}

		inUse, err := tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("publisher_id = ?", id).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if inUse > 0 {
			return errcodes.Conflict(fmt.Sprintf("Publisher %q is used by %d books.", publisher.Name, inUse))
		}

		_, err = tx.NewDelete().Model(publisher).WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypeDelete, fmt.Sprintf("Publisher %q removed", publisher.Name))
	})
}
