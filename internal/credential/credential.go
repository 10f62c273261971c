// Package credential derives and checks salted password hashes.
package credential

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 65536
	DefaultKeyLength  = 16
	SaltLength        = 16
)

// Hasher is a keyed derivation hash(password, salt).
type Hasher interface {
	Hash(password string, salt []byte) []byte
	NewSalt() ([]byte, error)
}

// PBKDF2 hashes with PBKDF2-HMAC-SHA1.
type PBKDF2 struct {
	Iterations int
	KeyLength  int
}

func NewPBKDF2() PBKDF2 {
	return PBKDF2{Iterations: DefaultIterations, KeyLength: DefaultKeyLength}
}

func (p PBKDF2) Hash(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, p.Iterations, p.KeyLength, sha1.New)
}

func (p PBKDF2) NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// Verify derives the hash of password with salt and compares it to want in
// constant time.
func Verify(h Hasher, password string, salt, want []byte) bool {
	got := h.Hash(password, salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}
