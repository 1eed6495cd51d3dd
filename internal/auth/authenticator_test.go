package auth

import (
	"context"
	"testing"
	"time"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

// stubUserStore serves a fixed user set; only GetByID matters here.
type stubUserStore struct {
	users map[uint]*models.User
}

func (s *stubUserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrRecordNotFound
}

func (s *stubUserStore) List(ctx context.Context) ([]*models.User, error) { return nil, nil }
func (s *stubUserStore) UpdateFullName(ctx context.Context, id uint, fullName string) error {
	return nil
}
func (s *stubUserStore) SetBlocked(ctx context.Context, id uint, blocked bool) error { return nil }
func (s *stubUserStore) Roles(ctx context.Context, userID uint) ([]models.Role, error) {
	return nil, nil
}
func (s *stubUserStore) SetRoles(ctx context.Context, userID uint, roles []models.Role) error {
	return nil
}
func (s *stubUserStore) TestsForUser(ctx context.Context, userID uint) ([]repositories.UserTestRow, error) {
	return nil, nil
}

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func defaultClaims(userID uint, perms ...string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:      userID,
		Permissions: perms,
	}
}

func newAuthenticator(users ...*models.User) *Authenticator {
	store := &stubUserStore{users: make(map[uint]*models.User)}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return NewAuthenticator(testSecret, store)
}

func TestAuthenticator_Authenticate(t *testing.T) {
	a := newAuthenticator(&models.User{ID: 42, FullName: "Student"})
	ctx := context.Background()

	token := signedToken(t, testSecret, defaultClaims(42, authz.PermQuestCreate))
	actor, err := a.Authenticate(ctx, token)

	assert.NoError(t, err)
	assert.Equal(t, uint(42), actor.UserID)
	assert.True(t, actor.Permissions.Has(authz.PermQuestCreate))
	assert.False(t, actor.Permissions.Has(authz.PermQuestDel))
}

func TestAuthenticator_Authenticate_WrongSecret(t *testing.T) {
	a := newAuthenticator(&models.User{ID: 42})
	ctx := context.Background()

	token := signedToken(t, "other-secret", defaultClaims(42))
	_, err := a.Authenticate(ctx, token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticator_Authenticate_ExpiredToken(t *testing.T) {
	a := newAuthenticator(&models.User{ID: 42})
	ctx := context.Background()

	claims := defaultClaims(42)
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := signedToken(t, testSecret, claims)

	_, err := a.Authenticate(ctx, token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticator_Authenticate_RejectsUnsignedToken(t *testing.T) {
	a := newAuthenticator(&models.User{ID: 42})
	ctx := context.Background()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, defaultClaims(42))
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = a.Authenticate(ctx, unsigned)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticator_Authenticate_UnknownUser(t *testing.T) {
	a := newAuthenticator()
	ctx := context.Background()

	token := signedToken(t, testSecret, defaultClaims(42))
	_, err := a.Authenticate(ctx, token)

	assert.ErrorIs(t, err, ErrUnknownUser)
}

// Blocking must bite immediately even while old tokens are still valid.
func TestAuthenticator_Authenticate_BlockedUser(t *testing.T) {
	a := newAuthenticator(&models.User{ID: 42, IsBlocked: true})
	ctx := context.Background()

	token := signedToken(t, testSecret, defaultClaims(42))
	_, err := a.Authenticate(ctx, token)

	assert.ErrorIs(t, err, ErrAccountBlocked)
}

func TestAuthenticator_ParseToken_Garbage(t *testing.T) {
	a := newAuthenticator()

	_, err := a.ParseToken("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}
