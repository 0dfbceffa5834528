package services

import (
	"errors"
	"fmt"
	"time"

	"storecart/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds     = errors.New("invalid email or password")
	ErrBadToken     = errors.New("invalid or expired token")
	ErrTokensDenied = errors.New("token sessions are not configured")
)

// UserStore is the slice of the user repository auth needs.
type UserStore interface {
	ByEmail(email string) (*domain.User, error)
	ByID(id string) (*domain.User, error)
	BindSession(sid, userID string) error
	SessionUser(sid string) (*domain.User, error)
	UnbindSession(sid string) error
}

// AuthService resolves the signed-in user either from a session id cookie or
// from an HS256 bearer token whose subject is the user id.
type AuthService struct {
	Users    UserStore
	Secret   []byte
	TokenTTL time.Duration
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// IssueToken signs a bearer token for u.
func (s *AuthService) IssueToken(u *domain.User) (string, error) {
	if len(s.Secret) == 0 {
		return "", ErrTokensDenied
	}
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// TokenUser validates a bearer token and loads its subject.
func (s *AuthService) TokenUser(token string) (*domain.User, error) {
	if len(s.Secret) == 0 {
		return nil, ErrTokensDenied
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	u, err := s.Users.ByID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown subject", ErrBadToken)
	}
	return u, nil
}
