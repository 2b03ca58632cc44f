// Package catalog holds the lookup-or-create resolver shared by single-record
// writes and bulk import. Category and Publisher rows are both addressed by a
// human-entered name, so the resolution logic is written once and
// parameterized over the entity kind.
package catalog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfdesk/shelfdesk/pkg/errcodes"
	"github.com/shelfdesk/shelfdesk/pkg/models"
	"github.com/uptrace/bun"
)

// Resolver resolves names to catalog rows, creating rows that don't exist
// yet. It operates on a bun.IDB so that, when handed a transaction, a created
// row is visible to the rest of the operation before the caller commits. A
// caller that fails after resolving must roll back the whole transaction,
// otherwise the created row would be orphaned.
type Resolver struct {
	idb bun.IDB
}

func NewResolver(idb bun.IDB) *Resolver {
	return &Resolver{idb}
}

// Category returns the category with exactly the given name, creating it when
// absent. The name is trimmed first; an empty name is a validation error.
func (r *Resolver) Category(ctx context.Context, name string) (*models.Category, error) {
	return findOrCreate(ctx, r.idb, "Category", name, func(name string) *models.Category {
		return &models.Category{Name: name, CreatedAt: time.Now()}
	})
}

// Publisher is the publisher counterpart of Category.
func (r *Resolver) Publisher(ctx context.Context, name string) (*models.Publisher, error) {
	return findOrCreate(ctx, r.idb, "Publisher", name, func(name string) *models.Publisher {
		return &models.Publisher{Name: name, CreatedAt: time.Now()}
	})
}

// findOrCreate looks a row up by exact (case-sensitive) name match and
// inserts a fresh row via build when nothing matches.
func findOrCreate[M any](ctx context.Context, idb bun.IDB, kind, name string, build func(string) *M) (*M, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errcodes.ValidationError(kind + " name can't be empty")
	}

	row := new(M)
	err := idb.NewSelect().Model(row).Where("name = ?", name).Scan(ctx)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	row = build(name)
	_, err = idb.NewInsert().Model(row).Returning("*").Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return row, nil
}
