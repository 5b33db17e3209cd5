package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
	"github.com/oksasatya/crm-accounts/internal/infrastructure/memory"
	"github.com/oksasatya/crm-accounts/pkg/helpers"
)

func newAuthFixture(t *testing.T) (*AuthService, *memory.AccountRepository, *entity.Account) {
	t.Helper()
	r := memory.NewAccountRepository()
	a, err := r.Insert(context.Background(), &entity.Account{
		Username: "jeandupont", Email: "jean@crm.test", FirstName: "Jean", LastName: "Dupont",
		Role: entity.RoleFormateur, PasswordHash: "hashed:motdepasse", IsActive: true,
	})
	require.NoError(t, err)
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	return NewAuthService(r, plainHasher{}, jwt, newMemSessions(), nil, 0), r, a
}

func TestAuthenticateCredentials(t *testing.T) {
	svc, _, acc := newAuthFixture(t)
	ctx := context.Background()

	got, err := svc.AuthenticateCredentials(ctx, " JEAN@crm.test ", "motdepasse")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	_, err = svc.AuthenticateCredentials(ctx, "jean@crm.test", "mauvais")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AuthenticateCredentials(ctx, "nobody@crm.test", "motdepasse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AuthenticateCredentials(ctx, "bad", "x")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email"))
	assert.True(t, verr.Has("password"))
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	svc, r, acc := newAuthFixture(t)
	acc.IsActive = false
	_, err := r.Update(context.Background(), acc)
	require.NoError(t, err)

	_, err = svc.AuthenticateCredentials(context.Background(), "jean@crm.test", "motdepasse")
	assert.ErrorIs(t, err, ErrInactiveAccount)
}

func TestLoginResolveAndLogout(t *testing.T) {
	svc, _, acc := newAuthFixture(t)
	ctx := context.Background()

	_, sess, err := svc.Login(ctx, "jean@crm.test", "motdepasse")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, sess.AccountID)

	actor, err := svc.ResolveActor(ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, Actor{ID: acc.ID, Role: entity.RoleFormateur}, actor)

	_, err = svc.ResolveActor(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "refresh token is not an access token")

	require.NoError(t, svc.Logout(ctx, acc.ID))
	_, err = svc.ResolveActor(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewSessionInvalidatesPreviousTokens(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, first, err := svc.Login(ctx, "jean@crm.test", "motdepasse")
	require.NoError(t, err)
	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	_, err = svc.ResolveActor(ctx, first.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.ResolveActor(ctx, second.AccessToken)
	assert.NoError(t, err)
}

func TestResolveActorRejectsDeactivatedAccount(t *testing.T) {
	svc, r, acc := newAuthFixture(t)
	ctx := context.Background()
	_, sess, err := svc.Login(ctx, "jean@crm.test", "motdepasse")
	require.NoError(t, err)

	acc.IsActive = false
	_, err = r.Update(ctx, acc)
	require.NoError(t, err)

	_, err = svc.ResolveActor(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInactiveAccount)
}

func TestChangePasswordThenAuthenticate(t *testing.T) {
	auth, r, acc := newAuthFixture(t)
	ctx := context.Background()
	accounts := NewAccountService(r, plainHasher{}, auth, nil)

	_, before, err := auth.Login(ctx, "jean@crm.test", "motdepasse")
	require.NoError(t, err)

	sess, err := accounts.ChangePassword(ctx, ActorFromAccount(acc), ChangePasswordInput{
		OldPassword: "motdepasse", NewPassword: "nouveaumotdepasse", ConfirmPassword: "nouveaumotdepasse",
	})
	require.NoError(t, err)
	require.NotNil(t, sess)

	_, err = auth.AuthenticateCredentials(ctx, "jean@crm.test", "nouveaumotdepasse")
	assert.NoError(t, err)
	_, err = auth.AuthenticateCredentials(ctx, "jean@crm.test", "motdepasse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.ResolveActor(ctx, sess.AccessToken)
	assert.NoError(t, err, "the re-established session stays valid")
	_, err = auth.ResolveActor(ctx, before.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
