package hasher

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// Hasher produces a one-way digest of a plaintext credential. Equality is
// always checked by hashing the presented value and comparing digests;
// nothing stored is ever decrypted. The digest must be deterministic so the
// account store can look records up by hashed password or hashed token.
type Hasher interface {
	Hash(plaintext string) string
}

// Default PBKDF2 parameters
const (
	DefaultIterations = 4096
	DefaultKeyLength  = 32
)

// PBKDF2Hasher implements Hasher using PBKDF2-SHA256 with a server-side
// pepper as the salt.
type PBKDF2Hasher struct {
	pepper     []byte
	iterations int
	keyLength  int
}

// PBKDF2HasherOption configures a PBKDF2Hasher
type PBKDF2HasherOption func(*PBKDF2Hasher)

// WithIterations sets the PBKDF2 iteration count
func WithIterations(n int) PBKDF2HasherOption {
	return func(h *PBKDF2Hasher) {
		h.iterations = n
	}
}

// WithKeyLength sets the derived key length in bytes
func WithKeyLength(n int) PBKDF2HasherOption {
	return func(h *PBKDF2Hasher) {
		h.keyLength = n
	}
}

// NewPBKDF2Hasher creates a new hasher with the given pepper
func NewPBKDF2Hasher(pepper string, opts ...PBKDF2HasherOption) *PBKDF2Hasher {
	h := &PBKDF2Hasher{
		pepper:     []byte(pepper),
		iterations: DefaultIterations,
		keyLength:  DefaultKeyLength,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Hash derives a hex-encoded digest of the plaintext
func (h *PBKDF2Hasher) Hash(plaintext string) string {
	key := pbkdf2.Key([]byte(plaintext), h.pepper, h.iterations, h.keyLength, sha256.New)
	return hex.EncodeToString(key)
}
