package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/session"
)

// Handle exposes the account lifecycle over HTTP
type Handle struct {
	service *account.AccountService
}

// NewHandle creates a new account API handle
func NewHandle(service *account.AccountService) *Handle {
	return &Handle{
		service: service,
	}
}

// Routes builds the account router. The binder middleware wraps every
// route; profile update requires a valid session token and the admin
// routes additionally require the account:admin authority.
func Routes(h *Handle, binder *session.CookieBinder, tokenAuth *jwtauth.JWTAuth, cookieName string) chi.Router {
	r := chi.NewRouter()
	r.Use(binder.Middleware)

	r.Post("/register", h.Register)
	r.Post("/verify", h.Verify)
	r.Post("/signin", h.SignIn)
	r.Post("/signout", h.SignOut)
	r.Get("/me", h.CurrentAccount)
	r.Post("/password-reset", h.StartPasswordReset)
	r.Put("/password-reset", h.FinishPasswordReset)

	r.Group(func(pr chi.Router) {
		pr.Use(jwtauth.Verify(tokenAuth, tokenFromCookie(cookieName), jwtauth.TokenFromHeader))
		pr.Use(jwtauth.Authenticator(tokenAuth))
		pr.Put("/me", h.UpdateCurrentAccount)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(jwtauth.Verify(tokenAuth, tokenFromCookie(cookieName), jwtauth.TokenFromHeader))
		ar.Use(jwtauth.Authenticator(tokenAuth))
		ar.Use(RequireAuthority(binder, "account:admin"))
		ar.Get("/accounts", h.FindAccounts)
		ar.Get("/accounts/{id}", h.GetAccount)
		ar.Put("/accounts/{id}", h.UpdateAccount)
	})

	return r
}

func tokenFromCookie(name string) func(r *http.Request) string {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// RequireAuthority rejects requests whose bound principal lacks the
// capability.
func RequireAuthority(binder session.Binder, authority string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := binder.Current(r.Context())
			if !ok || !principal.HasAuthority(authority) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, ErrorResponse{Error: "Insufficient privileges"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Register handles POST /register
func (h *Handle) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		badRequest(w, r, "Username, password and email are required")
		return
	}

	projection, err := h.service.Register(r.Context(), account.RegisterParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrDuplicateAccount):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, ErrorResponse{Error: "Username or email already registered"})
		case errors.Is(err, account.ErrInvalidConfiguration):
			slog.Error("Registration policy misconfigured", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "Registration is unavailable"})
		default:
			slog.Error("Failed to register account", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "Failed to register account"})
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toAccountResponse(projection))
}

// Verify handles POST /verify
func (h *Handle) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	if req.Token == "" {
		badRequest(w, r, "Token is required")
		return
	}

	_, err := h.service.Verify(r.Context(), account.VerifyParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Token:     req.Token,
	})
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "Invalid verification token"})
			return
		}
		slog.Error("Failed to verify account", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to verify account"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Account verified successfully"})
}

// SignIn handles POST /signin
func (h *Handle) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}

	projection, err := h.service.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "Invalid username or password"})
			return
		}
		slog.Error("Failed to sign in", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to sign in"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAccountResponse(projection))
}

// SignOut handles POST /signout
func (h *Handle) SignOut(w http.ResponseWriter, r *http.Request) {
	h.service.SignOut(r.Context())
	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Signed out"})
}

// CurrentAccount handles GET /me. Always succeeds; an unauthenticated
// caller gets the anonymous view.
func (h *Handle) CurrentAccount(w http.ResponseWriter, r *http.Request) {
	projection := h.service.CurrentAccount(r.Context())
	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAccountResponse(projection))
}

// UpdateCurrentAccount handles PUT /me
func (h *Handle) UpdateCurrentAccount(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	if req.CurrentPassword == "" {
		badRequest(w, r, "Current password is required")
		return
	}

	projection, err := h.service.UpdateCurrentAccount(r.Context(), account.UpdateProfileParams{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		NewPassword:     req.NewPassword,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "Invalid credentials"})
			return
		}
		slog.Error("Failed to update account", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to update account"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAccountResponse(projection))
}

// StartPasswordReset handles POST /password-reset
func (h *Handle) StartPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req StartPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	if req.Email == "" {
		badRequest(w, r, "Email is required")
		return
	}

	_, err := h.service.StartPasswordReset(r.Context(), req.Email)
	if err != nil && !errors.Is(err, account.ErrAccountNotFound) {
		slog.Error("Failed to start password reset", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to start password reset"})
		return
	}

	// An unknown email gets the same response, so this endpoint cannot be
	// used to enumerate accounts.
	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "If the account exists, a reset email has been sent"})
}

// FinishPasswordReset handles PUT /password-reset
func (h *Handle) FinishPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req FinishPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	if req.Token == "" {
		badRequest(w, r, "Token is required")
		return
	}

	ok, err := h.service.FinishPasswordReset(r.Context(), req.Token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "Invalid reset token"})
			return
		}
		slog.Error("Failed to finish password reset", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to finish password reset"})
		return
	}
	if !ok {
		badRequest(w, r, "Passwords do not match")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Password reset successfully"})
}

// FindAccounts handles GET /accounts
func (h *Handle) FindAccounts(w http.ResponseWriter, r *http.Request) {
	projections, err := h.service.FindAccounts(r.Context())
	if err != nil {
		slog.Error("Failed to list accounts", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to list accounts"})
		return
	}

	responses := make([]AccountResponse, len(projections))
	for i, p := range projections {
		responses[i] = toAccountResponse(p)
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, responses)
}

// GetAccount handles GET /accounts/{id}
func (h *Handle) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "Invalid account id")
		return
	}

	projection, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "Account not found"})
			return
		}
		slog.Error("Failed to get account", "account_id", id, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to get account"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAccountResponse(projection))
}

// UpdateAccount handles PUT /accounts/{id}
func (h *Handle) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "Invalid account id")
		return
	}

	var req AdminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}

	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		badRequest(w, r, "Invalid role id")
		return
	}

	projection, err := h.service.UpdateAccount(r.Context(), id, account.AdminUpdateParams{
		Username:      req.Username,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Password:      req.Password,
		SecurityLevel: req.SecurityLevel,
		RoleID:        roleID,
		Active:        req.Active,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAccountNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{Error: "Account not found"})
		case errors.Is(err, account.ErrDuplicateAccount):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, ErrorResponse{Error: "Username or email already registered"})
		case errors.Is(err, account.ErrInvalidConfiguration):
			badRequest(w, r, "Invalid role or security level")
		default:
			slog.Error("Failed to update account", "account_id", id, "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "Failed to update account"})
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAccountResponse(projection))
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: message})
}

func toAccountResponse(projection account.Projection) AccountResponse {
	var resp AccountResponse
	if err := copier.Copy(&resp, &projection); err != nil {
		slog.Error("Failed to map account response", "err", err)
	}
	return resp
}
