package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	IssueStatusPending  = "Pending"
	IssueStatusReturned = "Returned"
)

type IssueRecord struct {
	bun.BaseModel `bun:"table:issue_history,alias:ih"`

	ID               int        `bun:",pk,nullzero" json:"id"`
	CreatedAt        time.Time  `json:"created_at"`
	BookID           int        `bun:",nullzero" json:"book_id"`
	Book             *Book      `bun:"rel:belongs-to,join:book_id=id" json:"-"`
	MemberID         int        `bun:",nullzero" json:"member_id"`
	Member           *Member    `bun:"rel:belongs-to,join:member_id=id" json:"-"`
	IssueDate        time.Time  `bun:",nullzero" json:"issueDate"`
	ReturnDate       time.Time  `bun:",nullzero" json:"returnDate"`
	ActualReturnDate *time.Time `json:"actualReturnDate"`
	Status           string     `bun:",nullzero" json:"status"`
	Notes            *string    `json:"notes"`
}
