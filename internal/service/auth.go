package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/config"
)

// AuthService issues and verifies admin bearer tokens. Credentials come
// from configuration (one admin identity per deployment); the password is
// stored only as a bcrypt hash.
type AuthService struct {
	adminEmail   string
	passwordHash []byte
	jwtSecret    []byte
	expiry       time.Duration
	now          func() time.Time
}

func NewAuthService(cfg *config.Auth) *AuthService {
	return &AuthService{
		adminEmail:   cfg.AdminEmail,
		passwordHash: []byte(cfg.AdminPasswordHash),
		jwtSecret:    []byte(cfg.JWTSecret),
		expiry:       time.Duration(cfg.JWTExpiryHours) * time.Hour,
		now:          time.Now,
	}
}

// Login verifies the admin credentials and returns a signed token. The
// error is identical for a wrong email and a wrong password.
func (s *AuthService) Login(email, password string) (string, error) {
	if email != s.adminEmail || len(s.passwordHash) == 0 {
		return "", apperr.Auth("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", apperr.Auth("invalid credentials")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperr.Auth("could not issue token")
	}
	return signed, nil
}

// VerifyToken validates a bearer token and returns the admin subject.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, apperr.Auth("unexpected signing method")
			}
			return s.jwtSecret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil || !token.Valid {
		return "", apperr.Auth("invalid or expired token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", apperr.Auth("invalid token claims")
	}
	return claims.Subject, nil
}
