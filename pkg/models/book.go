package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BookStatusAvailable = "Available"
	BookStatusIssued    = "Issued"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID               int        `bun:",pk,nullzero" json:"library_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	BookName         string     `bun:",nullzero" json:"bookName"`
	Author           string     `bun:",nullzero" json:"author"`
	CategoryID       int        `bun:",nullzero" json:"-"`
	Category         *Category  `bun:"rel:belongs-to,join:category_id=id" json:"-"`
	Editor           *string    `json:"editor"`
	Volumes          int        `bun:",nullzero" json:"volumes"`
	PublisherID      *int       `json:"-"`
	Publisher        *Publisher `bun:"rel:belongs-to,join:publisher_id=id" json:"-"`
	Year             *int       `json:"year"`
	Copies           int        `bun:",nullzero" json:"copies"`
	Status           string     `bun:",nullzero" json:"status"`
	CompletionStatus *string    `json:"completion_status"`
	Note             *string    `json:"note"`
}

// CategoryName returns the loaded category name, or "" when the relation
// isn't loaded.
func (b *Book) CategoryName() string {
	if b.Category == nil {
		return ""
	}
	return b.Category.Name
}

// PublisherName returns the loaded publisher name, or "" when the book has no
// publisher or the relation isn't loaded.
func (b *Book) PublisherName() string {
	if b.Publisher == nil {
		return ""
	}
	return b.Publisher.Name
}
