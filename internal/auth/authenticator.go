package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
)

// Common auth errors.
var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrUnknownUser    = errors.New("token subject is not a known user")
	ErrAccountBlocked = errors.New("account is blocked")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID      uint     `json:"user_id"`
	Permissions []string `json:"permissions,omitempty"`
}

// Authenticator turns bearer tokens into request actors. Permissions
// ride in the token; identity and the blocked flag are re-checked
// against the user store on every request so a block takes effect
// immediately.
type Authenticator struct {
	secret []byte
	users  repositories.UserRepository
}

func NewAuthenticator(secret string, users repositories.UserRepository) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		users:  users,
	}
}

// ParseToken validates the signature and expiry and returns the claims.
func (a *Authenticator) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves a bearer token into an Actor.
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*authz.Actor, error) {
	claims, err := a.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	if user.IsBlocked {
		return nil, ErrAccountBlocked
	}

	return &authz.Actor{
		UserID:      user.ID,
		Permissions: authz.NewPermissionSet(claims.Permissions),
	}, nil
}
