package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `bun:",nullzero" json:"name"`
	Description *string   `json:"description"`
	BookCount   int       `bun:",scanonly" json:"book_count,omitempty"`
}
