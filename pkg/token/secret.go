package token

import "log/slog"

// Secret holds the plaintext form of a one-time token. The plaintext only
// ever leaves this type through Reveal, which is intended for the outbound
// notification payload; logging a Secret yields a redacted value.
type Secret struct {
	value string
}

// NewSecret wraps a plaintext token value
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the plaintext token for delivery to the user
func (s Secret) Reveal() string {
	return s.value
}

// IsZero reports whether the secret is empty
func (s Secret) IsZero() bool {
	return s.value == ""
}

// String implements fmt.Stringer with a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// LogValue implements slog.LogValuer so secrets never reach log output
func (s Secret) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}
