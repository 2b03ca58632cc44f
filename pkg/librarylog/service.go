package librarylog

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfdesk/shelfdesk/pkg/models"
	"github.com/uptrace/bun"
)

// Append writes one activity log entry. It accepts a bun.IDB so that callers
// can append inside their own transaction; the entry then commits or rolls
// back together with the operation it describes. Entries are never updated or
// deleted afterwards.
func Append(ctx context.Context, idb bun.IDB, logType, content string) error {
	entry := &models.LibraryLog{
		Timestamp: time.Now(),
		Content:   content,
		LogType:   logType,
	}
	_, err := idb.NewInsert().Model(entry).Exec(ctx)
	return errors.WithStack(err)
}

type ListLogsOptions struct {
	Limit   *int
	Offset  *int
	LogType *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// ListLogsWithTotal returns log entries newest first.
func (svc *Service) ListLogsWithTotal(ctx context.Context, opts ListLogsOptions) ([]*models.LibraryLog, int, error) {
	logs := []*models.LibraryLog{}

	q := svc.db.
		NewSelect().
		Model(&logs).
		Order("ll.timestamp DESC").
		Order("ll.id DESC")

	if opts.LogType != nil && *opts.LogType != "" {
		q = q.Where("ll.log_type = ?", *opts.LogType)
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

	return logs, total, nil
}
