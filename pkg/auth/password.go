package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the shortest accepted login secret
const MinSecretLength = 8

// HashSecret derives a one-way salted hash from the plaintext secret.
// The caller must not retain the plaintext after this returns.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// CompareSecret checks a plaintext secret against a stored hash and returns
// a KindInvalidCredentials error on mismatch.
func CompareSecret(hash, secret string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return E(KindInvalidCredentials, "Invalid Credentials")
	}
	return nil
}
