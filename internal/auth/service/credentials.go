// Package service generates and verifies the credentials used to identify registry callers:
// client secrets hashed with Argon2id and bearer tokens hashed with SHA-256.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/claims/internal/errors"
)

// credentialSize is the number of random bytes behind every secret and token.
const credentialSize = 32

// SecretService generates, hashes and verifies client secrets.
type SecretService interface {
	// GenerateSecret returns a new random secret and its hash. Only the hash is stored.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)
	HashSecret(plainSecret string) (string, error)
	// CompareSecret reports whether plainSecret matches hashedSecret.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenService generates and hashes bearer tokens.
type TokenService interface {
	GenerateToken() (plainToken string, tokenHash string, err error)
	HashToken(plainToken string) string
}

func randomCredential() (string, error) {
	buf := make([]byte, credentialSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

type secretService struct {
	hasher *pwdhash.PasswordHasher
}

// NewSecretService creates a SecretService using the Argon2id moderate policy.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		// Only reachable with an invalid built-in policy.
		panic(err)
	}
	return &secretService{hasher: hasher}
}

func (s *secretService) GenerateSecret() (string, string, error) {
	plainSecret, err := randomCredential()
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	hashedSecret, err := s.HashSecret(plainSecret)
	if err != nil {
		return "", "", err
	}
	return plainSecret, hashedSecret, nil
}

func (s *secretService) HashSecret(plainSecret string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hashed, nil
}

func (s *secretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	return err == nil && ok
}

type tokenService struct{}

// NewTokenService creates a TokenService.
func NewTokenService() TokenService {
	return tokenService{}
}

func (t tokenService) GenerateToken() (string, string, error) {
	plainToken, err := randomCredential()
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}
	return plainToken, t.HashToken(plainToken), nil
}

// HashToken returns the hex SHA-256 of plainToken. Tokens are high-entropy random values,
// so an unsalted hash is enough for lookup.
func (t tokenService) HashToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
