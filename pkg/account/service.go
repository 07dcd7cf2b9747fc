package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/config"
	"github.com/tendant/simple-account/pkg/hasher"
	"github.com/tendant/simple-account/pkg/notice"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/role"
	"github.com/tendant/simple-account/pkg/session"
	"github.com/tendant/simple-account/pkg/token"
)

// AccountService orchestrates the account lifecycle: registration with
// optional self-verification, sign-in/out session binding, profile update,
// password reset, and administrative update. It is the sole writer of
// status and token transitions; the repository owns persistence and is the
// sole arbiter of uniqueness.
type AccountService struct {
	repo                AccountRepository
	roleService         *role.RoleService
	credentialHasher    hasher.Hasher
	tokenGenerator      token.Generator
	binder              session.Binder
	notificationManager *notification.NotificationManager
	policy              config.RegistrationConfig
	baseURL             string
}

// AccountServiceOption configures an AccountService
type AccountServiceOption func(*AccountService)

// WithNotificationManager sets the notification manager. Without one,
// notices are skipped with a warning; state transitions still commit.
func WithNotificationManager(nm *notification.NotificationManager) AccountServiceOption {
	return func(s *AccountService) {
		s.notificationManager = nm
	}
}

// WithRegistrationPolicy sets the registration policy configuration
func WithRegistrationPolicy(policy config.RegistrationConfig) AccountServiceOption {
	return func(s *AccountService) {
		s.policy = policy
	}
}

// WithBaseURL sets the base URL used to build verification and reset links
func WithBaseURL(baseURL string) AccountServiceOption {
	return func(s *AccountService) {
		s.baseURL = baseURL
	}
}

// NewAccountService creates a new account lifecycle service
func NewAccountService(
	repo AccountRepository,
	roleService *role.RoleService,
	credentialHasher hasher.Hasher,
	tokenGenerator token.Generator,
	binder session.Binder,
	opts ...AccountServiceOption,
) *AccountService {
	s := &AccountService{
		repo:             repo,
		roleService:      roleService,
		credentialHasher: credentialHasher,
		tokenGenerator:   tokenGenerator,
		binder:           binder,
		baseURL:          "http://localhost:4000",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register starts a registration sequence by creating a new account and,
// when auto-approve policy matches the email address, sending out a
// self-verification notice carrying a one-time token. Registrations outside
// the policy stay pending until an administrator activates them.
//
// Uniqueness is detected by the store at commit time, not pre-checked, so
// concurrent registrations cannot race past a check.
func (s *AccountService) Register(ctx context.Context, params RegisterParams) (Projection, error) {
	account := Account{
		ID:           uuid.New(),
		Username:     params.Username,
		PasswordHash: s.credentialHasher.Hash(params.Password),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		Status:       StatusPending,
	}

	var secret token.Secret
	var levelName, roleName string
	if s.policy.AutoApproveEnabled && s.emailMatches(params.Email) {
		levelName = s.policy.InitialSecurityLevel
		roleName = s.policy.InitialRole

		generated, err := s.tokenGenerator.Generate()
		if err != nil {
			return Projection{}, fmt.Errorf("failed to generate verification token: %w", err)
		}
		secret = generated
		account.TokenHash = s.credentialHasher.Hash(secret.Reveal())
	} else {
		levelName = s.policy.DefaultSecurityLevel
		roleName = s.policy.DefaultRole
	}

	// A badly configured level or role name must fail loudly rather than
	// fall through to some implicit default.
	level, err := ParseSecurityLevel(levelName)
	if err != nil {
		return Projection{}, err
	}
	account.SecurityLevel = level

	assignedRole, err := s.roleService.FindByName(ctx, roleName)
	if err != nil {
		return Projection{}, fmt.Errorf("%w: bad role name: %s", ErrInvalidConfiguration, roleName)
	}
	account.Role = assignedRole

	saved, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, ErrUniquenessViolation) {
			return Projection{}, fmt.Errorf("%w: %s", ErrDuplicateAccount, params.Username)
		}
		return Projection{}, fmt.Errorf("failed to create account: %w", err)
	}

	if !secret.IsZero() {
		s.notify(notice.VerificationRequested, saved.Email, map[string]string{
			"FirstName":        saved.FirstName,
			"Token":            secret.Reveal(),
			"VerificationLink": fmt.Sprintf("%s/verify?token=%s", s.baseURL, secret.Reveal()),
		})
		s.notifyAdmins(notice.AdminVerificationRequested, saved)
		secret = token.Secret{}
	} else {
		s.notify(notice.RegistrationReceived, saved.Email, map[string]string{
			"FirstName": saved.FirstName,
		})
		s.notifyAdmins(notice.AdminRegistrationReceived, saved)
	}

	slog.Info("Account registered", "account_id", saved.ID, "status", saved.Status, "self_verification", saved.TokenHash != "")
	return asProjection(saved), nil
}

// Verify completes a registration sequence from an emailed token. The
// presented first/last name must match the account on top of the token, as
// a cross-check against a guessed token. Any mismatch fails identically.
func (s *AccountService) Verify(ctx context.Context, params VerifyParams) (bool, error) {
	account, err := s.repo.FindByTokenHash(ctx, s.credentialHasher.Hash(params.Token))
	if err != nil {
		return false, ErrAccountNotFound
	}

	if !strings.EqualFold(account.FirstName, params.FirstName) ||
		!strings.EqualFold(account.LastName, params.LastName) {
		return false, ErrAccountNotFound
	}

	account.Status = StatusActive
	account.TokenHash = ""
	saved, err := s.repo.Update(ctx, account)
	if err != nil {
		return false, fmt.Errorf("failed to activate account: %w", err)
	}

	s.notify(notice.VerificationCompleted, saved.Email, map[string]string{
		"FirstName": saved.FirstName,
	})
	s.notifyAdmins(notice.AdminAccountVerified, saved)

	slog.Info("Account verified", "account_id", saved.ID)
	return true, nil
}

// SignIn authenticates by username and password, resolves the account's
// role into an authority list, and binds the principal to the session.
// Wrong username, wrong password, and inactive account all fail with the
// same undifferentiated error.
func (s *AccountService) SignIn(ctx context.Context, username, password string) (Projection, error) {
	account, err := s.repo.FindByUsernameAndPassword(ctx, username, s.credentialHasher.Hash(password), true)
	if err != nil {
		return Projection{}, ErrAccountNotFound
	}

	resolvedRole, err := s.roleService.GetRole(ctx, account.Role.ID)
	if err != nil {
		return Projection{}, fmt.Errorf("failed to resolve role %s: %w", account.Role.Name, err)
	}
	account.Role = resolvedRole

	principal := session.Principal{
		AccountID:   account.ID,
		Username:    account.Username,
		Email:       account.Email,
		Authorities: resolvedRole.PermissionNames(),
	}
	if err := s.binder.Bind(ctx, principal); err != nil {
		return Projection{}, fmt.Errorf("failed to bind session: %w", err)
	}

	slog.Info("Account signed in", "account_id", account.ID, "role", resolvedRole.Name)
	return asProjection(account), nil
}

// SignOut clears the current session binding. Always succeeds.
func (s *AccountService) SignOut(ctx context.Context) bool {
	if err := s.binder.Clear(ctx); err != nil {
		slog.Warn("Failed to clear session", "err", err)
	}
	return true
}

// CurrentAccount returns the projection of the bound principal, or the
// anonymous projection when no principal is bound.
func (s *AccountService) CurrentAccount(ctx context.Context) Projection {
	principal, ok := s.binder.Current(ctx)
	if !ok {
		return AnonymousProjection()
	}

	account, err := s.repo.GetByID(ctx, principal.AccountID)
	if err != nil {
		slog.Warn("Bound principal has no account", "account_id", principal.AccountID, "err", err)
		return AnonymousProjection()
	}
	return asProjection(account)
}

// UpdateCurrentAccount applies a self-service profile update. The caller is
// re-authenticated by the bound principal's email plus the supplied current
// password, and the re-authenticated identity must equal the bound identity
// before anything is applied.
func (s *AccountService) UpdateCurrentAccount(ctx context.Context, params UpdateProfileParams) (Projection, error) {
	principal, ok := s.binder.Current(ctx)
	if !ok {
		return Projection{}, ErrAccountNotFound
	}

	account, err := s.repo.FindByEmailAndPassword(ctx, principal.Email, s.credentialHasher.Hash(params.CurrentPassword), true)
	if err != nil {
		return Projection{}, ErrAccountNotFound
	}

	// Guards against a crafted payload updating someone else's account
	// through a stale or swapped session.
	if account.ID != principal.AccountID {
		slog.Warn("Re-authenticated identity differs from bound principal", "bound", principal.AccountID, "found", account.ID)
		return Projection{}, ErrAccountNotFound
	}

	account.FirstName = params.FirstName
	account.LastName = params.LastName
	if params.NewPassword != "" {
		account.PasswordHash = s.credentialHasher.Hash(params.NewPassword)
	}

	saved, err := s.repo.Update(ctx, account)
	if err != nil {
		return Projection{}, fmt.Errorf("failed to update account: %w", err)
	}

	s.notify(notice.AccountUpdated, saved.Email, map[string]string{
		"FirstName": saved.FirstName,
	})

	slog.Info("Account updated", "account_id", saved.ID)
	return asProjection(saved), nil
}

// StartPasswordReset begins a reset sequence for the account holding the
// email address. A newly issued token supersedes any prior pending token.
func (s *AccountService) StartPasswordReset(ctx context.Context, email string) (bool, error) {
	account, err := s.repo.FindByEmail(ctx, email, true)
	if err != nil {
		return false, ErrAccountNotFound
	}

	secret, err := s.tokenGenerator.Generate()
	if err != nil {
		return false, fmt.Errorf("failed to generate reset token: %w", err)
	}
	account.TokenHash = s.credentialHasher.Hash(secret.Reveal())

	if _, err := s.repo.Update(ctx, account); err != nil {
		return false, fmt.Errorf("failed to store reset token: %w", err)
	}

	s.notify(notice.ResetRequested, account.Email, map[string]string{
		"FirstName": account.FirstName,
		"Token":     secret.Reveal(),
		"ResetLink": fmt.Sprintf("%s/password-reset?token=%s", s.baseURL, secret.Reveal()),
	})

	slog.Info("Password reset started", "account_id", account.ID)
	return true, nil
}

// FinishPasswordReset completes a reset sequence. A password/confirmation
// mismatch returns false without a typed error; no state is touched and no
// notice is sent in that case.
func (s *AccountService) FinishPasswordReset(ctx context.Context, presentedToken, newPassword, confirmation string) (bool, error) {
	if newPassword == "" || newPassword != confirmation {
		return false, nil
	}

	account, err := s.repo.FindByTokenHash(ctx, s.credentialHasher.Hash(presentedToken))
	if err != nil {
		return false, ErrAccountNotFound
	}

	account.PasswordHash = s.credentialHasher.Hash(newPassword)
	account.TokenHash = ""
	saved, err := s.repo.Update(ctx, account)
	if err != nil {
		return false, fmt.Errorf("failed to reset password: %w", err)
	}

	s.notify(notice.ResetCompleted, saved.Email, map[string]string{
		"FirstName": saved.FirstName,
	})

	slog.Info("Password reset completed", "account_id", saved.ID)
	return true, nil
}

// UpdateAccount applies the administrative full-update payload. Exactly one
// notice is selected, in precedence order: newly activated, password reset,
// generic update; inactive accounts get none.
func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, params AdminUpdateParams) (Projection, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Projection{}, err
	}
	wasActive := account.Active()

	account.Username = params.Username
	account.FirstName = params.FirstName
	account.LastName = params.LastName
	account.Email = params.Email

	passwordChanged := params.Password != ""
	if passwordChanged {
		account.PasswordHash = s.credentialHasher.Hash(params.Password)
	}

	level, err := ParseSecurityLevel(params.SecurityLevel)
	if err != nil {
		return Projection{}, err
	}
	account.SecurityLevel = level

	resolvedRole, err := s.roleService.GetRole(ctx, params.RoleID)
	if err != nil {
		return Projection{}, fmt.Errorf("%w: bad role id: %s", ErrInvalidConfiguration, params.RoleID)
	}
	account.Role = resolvedRole

	if params.Active {
		account.Status = StatusActive
	} else {
		account.Status = StatusDisabled
	}

	saved, err := s.repo.Update(ctx, account)
	if err != nil {
		if errors.Is(err, ErrUniquenessViolation) {
			return Projection{}, fmt.Errorf("%w: %s", ErrDuplicateAccount, params.Username)
		}
		return Projection{}, fmt.Errorf("failed to update account: %w", err)
	}

	switch {
	case !wasActive && saved.Active():
		s.notify(notice.AccountActivated, saved.Email, map[string]string{
			"FirstName": saved.FirstName,
		})
	case saved.Active() && passwordChanged:
		s.notify(notice.ResetCompleted, saved.Email, map[string]string{
			"FirstName": saved.FirstName,
		})
	case saved.Active():
		s.notify(notice.AccountUpdated, saved.Email, map[string]string{
			"FirstName": saved.FirstName,
		})
	}

	slog.Info("Account updated by admin", "account_id", saved.ID, "status", saved.Status)
	return asProjection(saved), nil
}

// GetAccount retrieves an account projection by ID
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (Projection, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Projection{}, err
	}
	return asProjection(account), nil
}

// FindAccounts retrieves all account projections, newest first
func (s *AccountService) FindAccounts(ctx context.Context) ([]Projection, error) {
	accounts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	projections := make([]Projection, len(accounts))
	for i, account := range accounts {
		projections[i] = asProjection(account)
	}
	return projections, nil
}

// FindAccountsByRole retrieves all accounts holding a role
func (s *AccountService) FindAccountsByRole(ctx context.Context, roleID uuid.UUID) ([]Account, error) {
	return s.repo.FindByRole(ctx, roleID)
}

func (s *AccountService) emailMatches(email string) bool {
	normalized := strings.ToLower(strings.TrimSpace(email))
	for _, suffix := range s.policy.AutoApproveEmailSuffixes {
		if strings.HasSuffix(normalized, strings.ToLower(strings.TrimSpace(suffix))) {
			return true
		}
	}
	return false
}

// notify dispatches a notice. A failed or skipped send never fails the
// state transition that preceded it.
func (s *AccountService) notify(noticeType notification.NoticeType, to string, data map[string]string) {
	if s.notificationManager == nil {
		slog.Warn("Notification manager not configured, skipping notice", "type", noticeType)
		return
	}
	err := s.notificationManager.Send(noticeType, notification.NotificationData{
		To:   to,
		Data: data,
	})
	if err != nil {
		slog.Warn("Failed to send notice", "type", noticeType, "err", err)
	}
}

func (s *AccountService) notifyAdmins(noticeType notification.NoticeType, account Account) {
	for _, adminEmail := range s.policy.AdminEmails {
		s.notify(noticeType, adminEmail, map[string]string{
			"FullName": account.FullName(),
			"Email":    account.Email,
		})
	}
}
