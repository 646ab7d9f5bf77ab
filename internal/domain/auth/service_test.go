package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"planora/internal/core/apperror"
	"planora/internal/core/id"
	"planora/internal/core/role"
	"planora/internal/core/tenant"
	"planora/internal/domain"
	"planora/internal/domain/user"
)

type fakeUserRepo struct {
	byID    map[id.ID]*user.User
	byEmail map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[id.ID]*user.User{},
		byEmail: map[string]*user.User{},
	}
}

func (r *fakeUserRepo) add(u *user.User) {
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.add(u)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID id.ID) (*user.User, error) {
	u, ok := r.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

func (r *fakeUserRepo) GetScoped(ctx context.Context, _ tenant.Scope, userID id.ID) (*user.User, error) {
	return r.GetByID(ctx, userID)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	return u, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	r.add(u)
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID id.ID) error {
	u, ok := r.byID[userID]
	if ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, userID)
	}
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ tenant.Scope, _ domain.ListFilter) (domain.ListResult[*user.User], error) {
	return domain.ListResult[*user.User]{}, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

type fakeTokenRepo struct {
	byHash map[string]*RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{byHash: map[string]*RefreshToken{}}
}

func (r *fakeTokenRepo) SaveRefreshToken(_ context.Context, token *RefreshToken) error {
	r.byHash[token.TokenHash] = token
	return nil
}

func (r *fakeTokenRepo) GetRefreshToken(_ context.Context, tokenHash string) (*RefreshToken, error) {
	t, ok := r.byHash[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("refresh_token", tokenHash)
	}
	return t, nil
}

func (r *fakeTokenRepo) RevokeRefreshToken(_ context.Context, tokenID id.ID, reason string) error {
	for _, t := range r.byHash {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(_ context.Context, userID id.ID, reason string) error {
	for _, t := range r.byHash {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (r *fakeTokenRepo) CleanupExpiredTokens(_ context.Context) (int, error) {
	return 0, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeTokenRepo) {
	t.Helper()
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewService(users, tokens, passthroughTx{}, NewJWTService(DefaultJWTConfig("test-secret")), DefaultServiceConfig())
	return svc, users, tokens
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string, r role.Role) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := user.NewUser("Test User", email, string(hash), r)
	repo.add(u)
	return u
}

func TestSignup(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupRequest{
		Name:     "Joana",
		Email:    "joana@example.com",
		Password: "strongpass1",
	})
	require.NoError(t, err)
	assert.Equal(t, role.Entrepreneur, u.Role)
	assert.Nil(t, u.EntrepreneurID)

	stored, err := users.GetByEmail(ctx, "joana@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "strongpass1", stored.PasswordHash)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, users, _ := newTestService(t)
	seedUser(t, users, "joana@example.com", "pass12345", role.Entrepreneur)

	_, err := svc.Signup(context.Background(), SignupRequest{
		Name:     "Joana",
		Email:    "joana@example.com",
		Password: "strongpass1",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestSignup_ShortPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "x@example.com",
		Password: "short",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestLogin(t *testing.T) {
	svc, users, tokens := newTestService(t)
	seedUser(t, users, "joana@example.com", "pass12345", role.Entrepreneur)

	pair, u, err := svc.Login(context.Background(), Credentials{
		Email:    "joana@example.com",
		Password: "pass12345",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotNil(t, u.LastLoginAt)
	assert.Len(t, tokens.byHash, 1)

	ident, err := svc.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, ident.UserID)
	assert.Equal(t, role.Entrepreneur, ident.Role)
}

func TestLogin_IndistinguishableFailures(t *testing.T) {
	svc, users, _ := newTestService(t)
	seedUser(t, users, "joana@example.com", "pass12345", role.Entrepreneur)

	_, _, errUnknown := svc.Login(context.Background(), Credentials{
		Email:    "nobody@example.com",
		Password: "pass12345",
	})
	_, _, errWrongPass := svc.Login(context.Background(), Credentials{
		Email:    "joana@example.com",
		Password: "wrongpass",
	})

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)

	a, ok := apperror.AsAppError(errUnknown)
	require.True(t, ok)
	b, ok := apperror.AsAppError(errWrongPass)
	require.True(t, ok)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Message, b.Message)
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := seedUser(t, users, "joana@example.com", "pass12345", role.Entrepreneur)

	for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
		_, _, err := svc.Login(context.Background(), Credentials{
			Email:    "joana@example.com",
			Password: "wrongpass",
		})
		require.Error(t, err)
	}
	assert.True(t, u.IsLocked())

	// Correct password is rejected while locked.
	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "joana@example.com",
		Password: "pass12345",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestRefreshToken_Rotation(t *testing.T) {
	svc, users, tokens := newTestService(t)
	seedUser(t, users, "joana@example.com", "pass12345", role.Entrepreneur)

	pair, _, err := svc.Login(context.Background(), Credentials{
		Email:    "joana@example.com",
		Password: "pass12345",
	})
	require.NoError(t, err)

	newPair, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// Spent token cannot be redeemed again.
	_, err = svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.Error(t, err)

	old, err := tokens.GetRefreshToken(context.Background(), hashToken(pair.RefreshToken))
	require.NoError(t, err)
	assert.NotNil(t, old.RevokedAt)
	assert.Equal(t, "refreshed", old.RevokedReason)
}

func TestLogout(t *testing.T) {
	svc, users, _ := newTestService(t)
	seedUser(t, users, "joana@example.com", "pass12345", role.Entrepreneur)

	pair, _, err := svc.Login(context.Background(), Credentials{
		Email:    "joana@example.com",
		Password: "pass12345",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.RefreshToken))
	_, err = svc.RefreshToken(context.Background(), pair.RefreshToken)
	assert.Error(t, err)

	// Logging out an unknown token is a no-op.
	assert.NoError(t, svc.Logout(context.Background(), "unknown-token"))
}

func TestLogoutAll(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := seedUser(t, users, "joana@example.com", "pass12345", role.Entrepreneur)

	first, _, err := svc.Login(context.Background(), Credentials{Email: "joana@example.com", Password: "pass12345"})
	require.NoError(t, err)
	second, _, err := svc.Login(context.Background(), Credentials{Email: "joana@example.com", Password: "pass12345"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(context.Background(), u.ID))

	_, err = svc.RefreshToken(context.Background(), first.RefreshToken)
	assert.Error(t, err)
	_, err = svc.RefreshToken(context.Background(), second.RefreshToken)
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := seedUser(t, users, "joana@example.com", "pass12345", role.Entrepreneur)

	pair, _, err := svc.Login(context.Background(), Credentials{Email: "joana@example.com", Password: "pass12345"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), u.ID, "pass12345", "newpass123")
	require.NoError(t, err)

	// Old sessions are gone, new password works.
	_, err = svc.RefreshToken(context.Background(), pair.RefreshToken)
	assert.Error(t, err)

	_, _, err = svc.Login(context.Background(), Credentials{Email: "joana@example.com", Password: "newpass123"})
	assert.NoError(t, err)
}
