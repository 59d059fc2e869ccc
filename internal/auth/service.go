// Package auth issues and validates the bearer tokens that identify the
// actor of every request. Policies never see credentials, only the
// resolved actor.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/shared"
	"github.com/taskhive/taskhive/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	repo   users.Repository
	secret []byte
	ttl    time.Duration
}

// NewService constructs a Service signing tokens with secret.
func NewService(repo users.Repository, secret string, ttl time.Duration) *Service {
	return &Service{repo: repo, secret: []byte(secret), ttl: ttl}
}

// Authenticate validates email/password credentials and returns a signed
// token for the account. Disabled accounts cannot authenticate.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *users.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil, shared.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if user.Status != authz.StatusEnabled {
		return "", nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) issueToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ResolveActor validates a bearer token and loads the account it names.
// The resolved actor is immutable for the duration of the request.
func (s *Service) ResolveActor(ctx context.Context, tokenString string) (authz.Actor, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return authz.Actor{}, shared.ErrInvalidCredentials
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return authz.Actor{}, shared.ErrInvalidCredentials
	}
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return authz.Actor{}, shared.ErrInvalidCredentials
		}
		return authz.Actor{}, err
	}
	if user.Status != authz.StatusEnabled {
		return authz.Actor{}, shared.ErrInvalidCredentials
	}
	return authz.Actor{ID: user.ID, Role: user.Role, Status: user.Status}, nil
}
