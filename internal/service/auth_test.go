package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy/internal/events"
	"github.com/Skotchmaster/pharmacy/internal/otp"
	"github.com/Skotchmaster/pharmacy/internal/transport"
	"github.com/Skotchmaster/pharmacy/pkg/tokens"
)

func register(t *testing.T, e *env, email string) {
	t.Helper()
	_, err := e.Auth.Register(context.Background(), transport.RegisterRequest{
		Name: "Asha", Email: email, Password: "password123",
	})
	require.NoError(t, err)
}

func TestRegisterSendsCodeAndVerifies(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	user, err := e.Auth.Register(ctx, transport.RegisterRequest{Name: "Asha", Email: " Asha@Example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "password123", user.PasswordHash)

	ev := e.Events.last()
	assert.Equal(t, events.TopicUsers, ev.Topic)

	code := e.Notifier.lastCode(t)
	require.NoError(t, e.Auth.Verify(ctx, "asha@example.com", code))

	got, err := e.Repo.GetUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	assert.ErrorIs(t, e.Auth.Verify(ctx, "asha@example.com", code), ErrInvalidCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	register(t, e, "dup@example.com")

	_, err := e.Auth.Register(context.Background(), transport.RegisterRequest{Name: "B", Email: "DUP@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRequestCodeCooldownAndUnknown(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	register(t, e, "a@example.com")

	err := e.Auth.RequestCode(ctx, "a@example.com", otp.PurposeVerify)
	assert.ErrorIs(t, err, ErrTooManyRequests)

	assert.NoError(t, e.Auth.RequestCode(ctx, "nobody@example.com", otp.PurposeVerify))
	assert.ErrorIs(t, e.Auth.RequestCode(ctx, "a@example.com", otp.Purpose("login")), ErrValidation)
}

func TestRequestCodeByPhone(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "phone@example.com", false)
	_, err := e.Repo.UpdateUser(ctx, u.ID, map[string]any{"phone": "+919800000001"})
	require.NoError(t, err)

	assert.ErrorIs(t, e.Auth.RequestCode(ctx, "+919800000001", otp.PurposeReset), ErrValidation)
	require.Empty(t, e.Notifier.sent)

	require.NoError(t, e.Auth.RequestCode(ctx, "+919800000001", otp.PurposeVerify))
	require.Len(t, e.Notifier.sent, 1)
	assert.Equal(t, "+919800000001", e.Notifier.sent[0].To)

	require.NoError(t, e.Auth.Verify(ctx, "+919800000001", e.Notifier.lastCode(t)))
	got, err := e.Repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
}

func TestLoginAndRefreshRotation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	register(t, e, "r@example.com")

	_, _, err := e.Auth.Login(ctx, "r@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)

	pair, user, err := e.Auth.Login(ctx, "R@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "r@example.com", user.Email)

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, e.Auth.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "user", claims.Role)

	next, err := e.Auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// Replaying the rotated token fails and burns the whole family.
	_, err = e.Auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = e.Auth.Refresh(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	register(t, e, "x@example.com")

	pair, _, err := e.Auth.Login(ctx, "x@example.com", "password123")
	require.NoError(t, err)

	_, err = e.Auth.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogoutRevokesRefresh(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	register(t, e, "l@example.com")

	pair, _, err := e.Auth.Login(ctx, "l@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, e.Auth.Logout(ctx, pair.RefreshToken))

	_, err = e.Auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	register(t, e, "p@example.com")

	pair, _, err := e.Auth.Login(ctx, "p@example.com", "password123")
	require.NoError(t, err)

	e.Auth.ForgotPassword(ctx, "p@example.com")
	code := e.Notifier.lastCode(t)

	assert.ErrorIs(t, e.Auth.ResetPassword(ctx, "p@example.com", code, "short"), ErrValidation)
	require.NoError(t, e.Auth.ResetPassword(ctx, "p@example.com", code, "new-password-1"))

	_, err = e.Auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = e.Auth.Login(ctx, "p@example.com", "new-password-1")
	require.NoError(t, err)

	sent := len(e.Notifier.sent)
	e.Auth.ForgotPassword(ctx, "ghost@example.com")
	assert.Len(t, e.Notifier.sent, sent)
}

func TestSetRoleRevokesSessions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin := e.user(t, "admin@example.com", true)
	register(t, e, "u@example.com")

	pair, user, err := e.Auth.Login(ctx, "u@example.com", "password123")
	require.NoError(t, err)

	_, err = e.Users.SetRole(ctx, admin.ID, admin.ID, "user")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := e.Users.SetRole(ctx, admin.ID, user.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)

	_, err = e.Auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestChangePasswordAndProfile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "me@example.com", true)
	other := e.user(t, "other@example.com", true)
	phone := "+15550002"
	_, err := e.Users.UpdateProfile(ctx, other.ID, transport.UpdateProfileRequest{Phone: &phone})
	require.NoError(t, err)

	assert.ErrorIs(t, e.Users.ChangePassword(ctx, u.ID, "nope", "new-password-1"), ErrUnauthorized)
	require.NoError(t, e.Users.ChangePassword(ctx, u.ID, "password123", "new-password-1"))

	_, err = e.Users.UpdateProfile(ctx, u.ID, transport.UpdateProfileRequest{Phone: &phone})
	assert.ErrorIs(t, err, ErrConflict)

	name := "Renamed"
	got, err := e.Users.UpdateProfile(ctx, u.ID, transport.UpdateProfileRequest{
		Name:    &name,
		Address: &transport.Address{Line1: "1 Main", City: "Pune", State: "MH", PostalCode: "411001"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "Pune", got.Address.City)
}
