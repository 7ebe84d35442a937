package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passreg/passreg/internal/store"
)

func newTestAuth(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	st, err := store.New("") // in-memory SQLite
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewAuthService(st, "test-secret-key-for-jwt", time.Hour), st
}

func TestPasswordHashRoundTrip(t *testing.T) {
	auth, _ := newTestAuth(t)

	hash, err := auth.HashPassword("supersecret")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", hash)

	assert.True(t, auth.CheckPassword(hash, "supersecret"))
	assert.False(t, auth.CheckPassword(hash, "wrongpassword"))
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ivan@Example.COM", "ivan@example.com"},
		{"Ivan@example.com", "Ivan@example.com"}, // local part untouched
		{"  ivan@EXAMPLE.com ", "ivan@example.com"},
		{"not-an-email", "not-an-email"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in), "input %q", tt.in)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	token, err := auth.IssueToken(ctx, 42, "ivan")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), principal.UserID)
	assert.Equal(t, "ivan", principal.Username)
}

func TestTokenExpired(t *testing.T) {
	st, err := store.New("")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	auth := NewAuthService(st, "test-secret-key-for-jwt", time.Nanosecond)
	ctx := context.Background()

	token, err := auth.IssueToken(ctx, 1, "ivan")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenInvalid(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.ValidateToken(context.Background(), "garbage.token.here")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	acc, err := auth.Register(ctx, "ivan", "ivan@Example.COM", "supersecret")
	require.NoError(t, err)
	assert.NotZero(t, acc.ID)
	assert.Equal(t, "ivan@example.com", acc.Email) // domain case-folded
	assert.True(t, acc.IsActive)
	assert.False(t, acc.IsStaff)
	assert.False(t, acc.IsSuperuser)
	assert.True(t, auth.CheckPassword(acc.PasswordHash, "supersecret"))
}

func TestRegisterMissingFields(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "", "ivan@example.com", "supersecret")
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = auth.Register(ctx, "ivan", "", "supersecret")
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestRegisterDuplicate(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "ivan", "ivan@example.com", "supersecret")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "ivan", "other@example.com", "supersecret")
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = auth.Register(ctx, "other", "ivan@example.com", "supersecret")
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestCreateSuperuser(t *testing.T) {
	auth, st := newTestAuth(t)
	ctx := context.Background()

	acc, err := auth.CreateSuperuser(ctx, "root", "root@example.com", "supersecret")
	require.NoError(t, err)
	assert.True(t, acc.IsStaff)
	assert.True(t, acc.IsSuperuser)

	// Flags are persisted, not just set on the returned value.
	got, err := st.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, got.IsStaff)
	assert.True(t, got.IsSuperuser)
}

func TestCreateSuperuserRequiresPassword(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.CreateSuperuser(context.Background(), "root", "root@example.com", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)
}

func TestAuthenticate(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "ivan", "ivan@example.com", "supersecret")
	require.NoError(t, err)

	acc, err := auth.Authenticate(ctx, "ivan", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "ivan", acc.Username)

	_, err = auth.Authenticate(ctx, "ivan", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Authenticate(ctx, "nobody", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
