// Package account implements the account lifecycle: registration with
// policy-gated self-verification, sign-in and sign-out against a session
// binder, self-service profile update, token-based password reset, and
// administrative full update.
//
// The AccountService owns every status and token transition. Persistence
// is behind AccountRepository, with PostgreSQL and in-memory
// implementations; the repository is the sole arbiter of username, email,
// and token uniqueness, detected at commit time. Credential and token
// material is stored only as digests, and every failed lookup collapses to
// the same ErrAccountNotFound so callers learn nothing from the failure
// mode.
package account
