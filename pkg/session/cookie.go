package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrNoRequestScope is returned when Bind or Clear is called outside a
// request passing through the binder middleware.
var ErrNoRequestScope = errors.New("no request scope in context")

type sessionClaims struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

type stateKey struct{}

// requestState carries the response writer and the principal parsed from
// the incoming cookie through the request context, so the binder can set
// cookies from service code that only sees a context.
type requestState struct {
	writer    http.ResponseWriter
	principal Principal
	bound     bool
}

// CookieBinder implements Binder over a signed JWT session cookie. The
// Middleware must wrap every route that signs in, signs out, or reads the
// current principal.
type CookieBinder struct {
	secret     []byte
	cookieName string
	expiry     time.Duration
	httpOnly   bool
	secure     bool
}

// CookieBinderOption configures a CookieBinder
type CookieBinderOption func(*CookieBinder)

// WithCookieName sets the session cookie name
func WithCookieName(name string) CookieBinderOption {
	return func(b *CookieBinder) {
		b.cookieName = name
	}
}

// WithExpiry sets the session token lifetime
func WithExpiry(d time.Duration) CookieBinderOption {
	return func(b *CookieBinder) {
		b.expiry = d
	}
}

// WithCookieHttpOnly sets the HttpOnly cookie flag
func WithCookieHttpOnly(httpOnly bool) CookieBinderOption {
	return func(b *CookieBinder) {
		b.httpOnly = httpOnly
	}
}

// WithCookieSecure sets the Secure cookie flag
func WithCookieSecure(secure bool) CookieBinderOption {
	return func(b *CookieBinder) {
		b.secure = secure
	}
}

// NewCookieBinder creates a cookie-backed session binder signing with the
// given HS256 secret.
func NewCookieBinder(secret string, opts ...CookieBinderOption) *CookieBinder {
	b := &CookieBinder{
		secret:     []byte(secret),
		cookieName: "access_token",
		expiry:     15 * time.Minute,
		httpOnly:   true,
		secure:     false,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Middleware parses the session cookie, if any, and stashes request state
// so Bind and Clear can reach the response writer.
func (b *CookieBinder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := &requestState{writer: w}
		if cookie, err := r.Cookie(b.cookieName); err == nil {
			principal, err := b.parse(cookie.Value)
			if err != nil {
				slog.Debug("Discarding invalid session cookie", "err", err)
			} else {
				state.principal = principal
				state.bound = true
			}
		}
		ctx := context.WithValue(r.Context(), stateKey{}, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Bind mints a session token for the principal and sets it as a cookie on
// the current response.
func (b *CookieBinder) Bind(ctx context.Context, principal Principal) error {
	state, ok := ctx.Value(stateKey{}).(*requestState)
	if !ok {
		return ErrNoRequestScope
	}

	tokenString, err := b.mint(principal)
	if err != nil {
		return err
	}

	http.SetCookie(state.writer, &http.Cookie{
		Name:     b.cookieName,
		Value:    tokenString,
		Path:     "/",
		Expires:  time.Now().Add(b.expiry),
		HttpOnly: b.httpOnly,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})

	state.principal = principal
	state.bound = true
	return nil
}

// Current returns the principal parsed from the session cookie, if any
func (b *CookieBinder) Current(ctx context.Context) (Principal, bool) {
	state, ok := ctx.Value(stateKey{}).(*requestState)
	if !ok || !state.bound {
		return Principal{}, false
	}
	return state.principal, true
}

// Clear expires the session cookie
func (b *CookieBinder) Clear(ctx context.Context) error {
	state, ok := ctx.Value(stateKey{}).(*requestState)
	if !ok {
		return ErrNoRequestScope
	}

	http.SetCookie(state.writer, &http.Cookie{
		Name:     b.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: b.httpOnly,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})

	state.principal = Principal{}
	state.bound = false
	return nil
}

func (b *CookieBinder) mint(principal Principal) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username:    principal.Username,
		Email:       principal.Email,
		Authorities: principal.Authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(b.secret)
}

func (b *CookieBinder) parse(tokenString string) (Principal, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Principal{}, err
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, err
	}

	return Principal{
		AccountID:   accountID,
		Username:    claims.Username,
		Email:       claims.Email,
		Authorities: claims.Authorities,
	}, nil
}
