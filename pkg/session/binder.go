package session

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the identity and granted authorities bound to a session
// after a successful sign-in. Authorities are capability tags resolved from
// the account's role at sign-in time.
type Principal struct {
	AccountID   uuid.UUID `json:"account_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Authorities []string  `json:"authorities"`
}

// HasAuthority reports whether the principal carries the given capability
func (p Principal) HasAuthority(name string) bool {
	for _, a := range p.Authorities {
		if a == name {
			return true
		}
	}
	return false
}

// Binder attaches an authenticated principal to the current request scope
// and clears it on sign-out. Implementations are request-scoped; the
// lifecycle manager only ever talks to this interface so it stays free of
// transport concerns.
type Binder interface {
	Bind(ctx context.Context, principal Principal) error
	Current(ctx context.Context) (Principal, bool)
	Clear(ctx context.Context) error
}
