package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"quiz-api-service/internal/domain"
)

const adminSubject = "admin"

// Service checks the admin password and issues bearer tokens for the
// authoring routes.
type Service struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewService(passwordHash, secret string, ttl time.Duration) *Service {
	return &Service{
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Login returns a signed token when password matches the configured hash.
func (s *Service) Login(password string) (string, error) {
	if len(s.passwordHash) == 0 || len(s.secret) == 0 {
		return "", fmt.Errorf("%w: admin login disabled", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	return s.GenerateToken()
}

func (s *Service) GenerateToken() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenString string) error {
	if len(s.secret) == 0 {
		return fmt.Errorf("%w: admin login disabled", domain.ErrUnauthorized)
	}
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if claims.Subject != adminSubject {
		return fmt.Errorf("%w: invalid subject", domain.ErrUnauthorized)
	}
	return nil
}

// HashPassword is used by the hash-password command to produce config values.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
