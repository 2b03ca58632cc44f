package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Publisher struct {
	bun.BaseModel `bun:"table:publishers,alias:pub"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `bun:",nullzero" json:"name"`
	Address     *string   `json:"address"`
	ContactInfo *string   `json:"contact_info"`
	BookCount   int       `bun:",scanonly" json:"book_count,omitempty"`
}
