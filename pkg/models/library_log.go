package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Log type tags. Every mutating operation writes exactly one entry tagged
// with one of these.
const (
	LogTypeGeneral   = "General"
	LogTypeBook      = "Book"
	LogTypeMember    = "Member"
	LogTypeCategory  = "Category"
	LogTypePublisher = "Publisher"
	LogTypeIssue     = "Issue"
	LogTypeReturn    = "Return"
	LogTypeImport    = "Import"
	LogTypeUpdate    = "Update"
	LogTypeDelete    = "Delete"
)

type LibraryLog struct {
	bun.BaseModel `bun:"table:library_logs,alias:ll"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	Timestamp time.Time `bun:",nullzero" json:"timestamp"`
	Content   string    `bun:",nullzero" json:"content"`
	LogType   string    `bun:",nullzero" json:"log_type"`
}
