package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleAdmin is the only role the service issues.
const RoleAdmin = "admin"

type TokenSigner func(subject, role string, ttl time.Duration) (string, error)

// AdminAuthService guards the reports area with a single shared password.
// There is no per-user identity: every admin token carries the same subject.
type AdminAuthService struct {
	hash      []byte
	now       func() time.Time
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AdminLoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewAdminAuthService accepts either a bcrypt hash or a plaintext password,
// which is hashed here so it is never compared in the clear.
func NewAdminAuthService(password, passwordHash string, signer TokenSigner, ttl time.Duration) (*AdminAuthService, error) {
	var hash []byte
	switch {
	case passwordHash != "":
		hash = []byte(passwordHash)
		if _, err := bcrypt.Cost(hash); err != nil {
			return nil, errors.New("admin password hash is not a bcrypt hash")
		}
	case password != "":
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = h
	default:
		return nil, errors.New("admin password not configured")
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &AdminAuthService{
		hash:      hash,
		now:       func() time.Time { return time.Now().UTC() },
		signToken: signer,
		tokenTTL:  ttl,
	}, nil
}

func (s *AdminAuthService) Login(password string) (*AdminLoginResult, error) {
	if strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("password required")
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid password")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(RoleAdmin, RoleAdmin, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AdminLoginResult{Token: token, ExpiresAt: s.now().Add(s.tokenTTL)}, nil
}

// HashPassword produces a value suitable for admin.password_hash.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", NewInvalidError("password required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
