package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Token length in bytes before encoding
const tokenBytes = 32

// Generator produces opaque one-time tokens for verification and password
// reset links.
type Generator interface {
	Generate() (Secret, error)
}

// RandomGenerator implements Generator using crypto/rand
type RandomGenerator struct{}

// NewRandomGenerator creates a new random token generator
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

// Generate returns a new cryptographically random token
func (g *RandomGenerator) Generate() (Secret, error) {
	b := make([]byte, tokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return Secret{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return NewSecret(base64.RawURLEncoding.EncodeToString(b)), nil
}
