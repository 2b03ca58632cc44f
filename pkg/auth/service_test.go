package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shelfdesk/shelfdesk/pkg/errcodes"
	"github.com/shelfdesk/shelfdesk/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	user, err := svc.Register(ctx, "librarian", "correct horse")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	authed, err := svc.Authenticate(ctx, "librarian", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = svc.Authenticate(ctx, "librarian", "wrong password")
	require.Error(t, err)

	codedErr := &errcodes.Error{}
	require.ErrorAs(t, err, &codedErr)
	assert.Equal(t, 401, codedErr.HTTPCode)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, "librarian", "password one")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "librarian", "password two")
	require.Error(t, err)

	codedErr := &errcodes.Error{}
	require.ErrorAs(t, err, &codedErr)
	assert.Equal(t, 409, codedErr.HTTPCode)
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")

	user, err := svc.Register(context.Background(), "librarian", "correct horse")
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "librarian", claims.Username)
	assert.WithinDuration(t, time.Now().Add(TokenExpiry), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")

	user, err := svc.Register(context.Background(), "librarian", "correct horse")
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	other := NewService(db, "different-secret")
	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("swordfish")
	require.NoError(t, err)
	assert.True(t, CheckPassword("swordfish", hash))
	assert.False(t, CheckPassword("sturgeon", hash))
}
