package circulation

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

type IssueBookOptions struct {
	BookID     int
	MemberName string
	IssueDate  time.Time
	ReturnDate time.Time
	Notes      *string
}

type ReturnBookOptions struct {
	BookID           int
	ActualReturnDate time.Time
}

type ListHistoryOptions struct {
	Limit    *int
	Offset   *int
	BookID   *int
	MemberID *int
	Status   *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// IssueBook lends a book to a member. It fails with a conflict when the book
// isn't available and with not-found when the member doesn't exist. The
// pending record, the book status flip, and the log entry commit together.
func (svc *Service) IssueBook(ctx context.Context, opts IssueBookOptions) (*models.IssueRecord, error) {
	var recordID int
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		book := &models.Book{}
		err := tx.NewSelect().Model(book).Where("b.id = ?", opts.BookID).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book")
			}
			return errors.WithStack(err)
		}

		if book.Status != models.BookStatusAvailable {
			return errcodes.Conflict("Book is already issued.")
		}

		member := &models.Member{}
		err = tx.NewSelect().Model(member).Where("m.name = ?", opts.MemberName).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Member")
			}
			return errors.WithStack(err)
		}

		record := &models.IssueRecord{
			CreatedAt:  time.Now(),
			BookID:     book.ID,
			MemberID:   member.ID,
			IssueDate:  opts.IssueDate,
			ReturnDate: opts.ReturnDate,
			Status:     models.IssueStatusPending,
			Notes:      opts.Notes,
		}
		_, err = tx.NewInsert().Model(record).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		recordID = record.ID

		// Conditional update guards against a concurrent issue that slipped
		// in between the availability check and here.
		res, err := tx.NewUpdate().
			Model((*models.Book)(nil)).
			Set("status = ?", models.BookStatusIssued).
			Set("updated_at = ?", time.Now()).
			Where("id = ? AND status = ?", book.ID, models.BookStatusAvailable).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return errcodes.Conflict("Book is already issued.")
		}

		content := fmt.Sprintf("Book %q issued to %s. Expected return: %s",
			book.BookName, member.Name, opts.ReturnDate.Format("2006-01-02"))
		return librarylog.Append(ctx, tx, models.LogTypeIssue, content)
	})
	if err != nil {
		return nil, err
	}

	return svc.RetrieveRecord(ctx, recordID)
}

// ReturnBook closes the pending record for a book. It fails with a conflict
// when the book is already available and with not-found when the book status
// says Issued but no pending record exists (a consistency guard).
func (svc *Service) ReturnBook(ctx context.Context, opts ReturnBookOptions) (*models.IssueRecord, error) {
	var recordID int
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		book := &models.Book{}
		err := tx.NewSelect().Model(book).Where("b.id = ?", opts.BookID).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book")
			}
			return errors.WithStack(err)
		}

		if book.Status != models.BookStatusIssued {
			return errcodes.Conflict("Book is already available.")
		}

		record := &models.IssueRecord{}
		err = tx.NewSelect().
			Model(record).
			Where("ih.book_id = ? AND ih.status = ?", book.ID, models.IssueStatusPending).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Pending issue record")
			}
			return errors.WithStack(err)
		}

		member := &models.Member{}
		err = tx.NewSelect().Model(member).Where("m.id = ?", record.MemberID).Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		record.Status = models.IssueStatusReturned
		record.ActualReturnDate = &opts.ActualReturnDate
		_, err = tx.NewUpdate().
			Model(record).
			Column("status", "actual_return_date").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		recordID = record.ID

		res, err := tx.NewUpdate().
			Model((*models.Book)(nil)).
			Set("status = ?", models.BookStatusAvailable).
			Set("updated_at = ?", time.Now()).
			Where("id = ? AND status = ?", book.ID, models.BookStatusIssued).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return errcodes.Conflict("Book is already available.")
		}

		content := fmt.Sprintf("Book %q returned by %s on %s",
			book.BookName, member.Name, opts.ActualReturnDate.Format("2006-01-02"))
		return librarylog.Append(ctx, tx, models.LogTypeReturn, content)
	})
	if err != nil {
		return nil, err
	}

	return svc.RetrieveRecord(ctx, recordID)
}

// RetrieveRecord loads one issue record with its book and member.
func (svc *Service) RetrieveRecord(ctx context.Context, id int) (*models.IssueRecord, error) {
	record := &models.IssueRecord{}
	err := svc.db.
		NewSelect().
		Model(record).
		Relation("Book").
		Relation("Member").
		Where("ih.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Issue record")
		}
		return nil, errors.WithStack(err)
	}
	return record, nil
}

// ListHistoryWithTotal returns a page of issue records, newest first.
func (svc *Service) ListHistoryWithTotal(ctx context.Context, opts ListHistoryOptions) ([]*models.IssueRecord, int, error) {
	records := []*models.IssueRecord{}

	q := svc.db.
		NewSelect().
		Model(&records).
		Relation("Book").
		Relation("Member").
		Order("ih.id DESC")

	if opts.BookID != nil {
		q = q.Where("ih.book_id = ?", *opts.BookID)
	}
	if opts.MemberID != nil {
		q = q.Where("ih.member_id = ?", *opts.MemberID)
	}
	if opts.Status != nil && *opts.Status != "" {
		q = q.Where("ih.status = ?", *opts.Status)
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

	return records, total, nil
}

// CountPendingForMember returns how many books a member currently holds.
func (svc *Service) CountPendingForMember(ctx context.Context, memberID int) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.IssueRecord)(nil)).
		Where("member_id = ? AND status = ?", memberID, models.IssueStatusPending).
		Count(ctx)
	return count, errors.WithStack(err)
}
