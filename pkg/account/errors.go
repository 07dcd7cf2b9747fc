package account

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is the single undifferentiated failure for every
	// credential, token, or email lookup. It never reveals whether the
	// account was missing, inactive, or the credential was wrong.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned when the store detects a uniqueness
	// conflict on username, email, or token
	ErrDuplicateAccount = errors.New("duplicate account")

	// ErrInvalidConfiguration is returned when a configured role or
	// security-level name fails to resolve
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUniquenessViolation is raised by repositories on a conflicting
	// username, email, or token at commit time
	ErrUniquenessViolation = errors.New("uniqueness violation")
)

// InvalidConfigurationError names the field and value that failed to resolve
type InvalidConfigurationError struct {
	Field string
	Value string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("bad %s name: %s", e.Field, e.Value)
}

func (e *InvalidConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}
