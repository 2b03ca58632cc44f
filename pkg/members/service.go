package members

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

type CreateMemberOptions struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
}

type UpdateMemberOptions struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

type ListMembersOptions struct {
	Limit  *int
	Offset *int
	Name   *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateMember registers a member. Names are unique; a duplicate is a
// conflict.
func (svc *Service) CreateMember(ctx context.Context, opts CreateMemberOptions) (*models.Member, error) {
	member := &models.Member{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Member)(nil)).
			Where("name = ?", opts.Name).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict(fmt.Sprintf("Member %q already exists.", opts.Name))
		}

		member.CreatedAt = time.Now()
		member.Name = opts.Name
		member.Email = opts.Email
		member.Phone = opts.Phone
		member.Address = opts.Address
		_, err = tx.NewInsert().Model(member).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypeMember, fmt.Sprintf("New member %q registered", member.Name))
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (svc *Service) RetrieveMember(ctx context.Context, id int) (*models.Member, error) {
	member := &models.Member{}
	err := svc.db.NewSelect().Model(member).Where("m.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Member")
		}
		return nil, errors.WithStack(err)
	}
	return member, nil
}

// ListMembersWithTotal returns members ordered by name, with an optional
// substring match on the name.
func (svc *Service) ListMembersWithTotal(ctx context.Context, opts ListMembersOptions) ([]*models.Member, int, error) {
	members := []*models.Member{}

	q := svc.db.
		NewSelect().
		Model(&members).
		Order("m.name ASC")

	if opts.Name != nil && *opts.Name != "" {
		q = q.Where("m.name LIKE ?", "%"+*opts.Name+"%")
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

	return members, total, nil
}

func (svc *Service) UpdateMember(ctx context.Context, id int, opts UpdateMemberOptions) (*models.Member, error) {
	member := &models.Member{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(member).Where("m.id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Member")
			}
			return errors.WithStack(err)
		}

		columns := []string{}
		if opts.Name != nil && *opts.Name != member.Name {
			taken, err := tx.NewSelect().
				Model((*models.Member)(nil)).
				Where("name = ? AND id != ?", *opts.Name, id).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if taken {
				return errcodes.Conflict(fmt.Sprintf("Member %q already exists.", *opts.Name))
			}
			member.Name = *opts.Name
			columns = append(columns, "name")
		}
		if opts.Email != nil {
			member.Email = opts.Email
			columns = append(columns, "email")
		}
		if opts.Phone != nil {
			member.Phone = opts.Phone
			columns = append(columns, "phone")
		}
		if opts.Address != nil {
			member.Address = opts.Address
			columns = append(columns, "address")
		}

		if len(columns) == 0 {
			return nil
		}

		_, err = tx.NewUpdate().Model(member).Column(columns...).WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypeMember, fmt.Sprintf("Member %q details updated", member.Name))
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// DeleteMember removes a member along with their returned issue history. A
// member who still holds books can't be deleted.
func (svc *Service) DeleteMember(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		member := &models.Member{}
		err := tx.NewSelect().Model(member).Where("m.id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Member")
			}
			return errors.WithStack(err)
		}

		pending, err := tx.NewSelect().
			Model((*models.IssueRecord)(nil)).
			Where("member_id = ? AND status = ?", id, models.IssueStatusPending).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if pending > 0 {
			return errcodes.Conflict(fmt.Sprintf("Member %q still has %d books issued.", member.Name, pending))
		}

		_, err = tx.NewDelete().
			Model((*models.IssueRecord)(nil)).
			Where("member_id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().Model(member).WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return librarylog.Append(ctx, tx, models.LogTypeDelete, fmt.Sprintf("Member %q removed", member.Name))
	})
}
