package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/config"
	"github.com/tendant/simple-account/pkg/hasher"
	"github.com/tendant/simple-account/pkg/notice"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/role"
	"github.com/tendant/simple-account/pkg/session"
	"github.com/tendant/simple-account/pkg/token"
)

const testSecret = "test-jwt-secret"

type apiFixture struct {
	server   *httptest.Server
	client   *http.Client
	notifier *notification.MockNotifier
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	roleRepo := role.NewInMemoryRoleRepository()
	roleRepo.SeedRole(role.Role{
		ID:   uuid.New(),
		Name: "Member",
		Permissions: []role.Permission{
			{ID: uuid.New(), Name: "account:read"},
			{ID: uuid.New(), Name: "account:write"},
		},
	})
	roleRepo.SeedRole(role.Role{ID: uuid.New(), Name: "Browser"})

	notifier := &notification.MockNotifier{}
	nm := notification.NewNotificationManager()
	nm.RegisterNotifier(notification.EmailSystem, notifier)
	require.NoError(t, notice.RegisterTemplates(nm))

	binder := session.NewCookieBinder(testSecret, session.WithCookieName("access_token"))
	service := account.NewAccountService(
		account.NewInMemoryAccountRepository(),
		role.NewRoleService(roleRepo),
		hasher.NewPBKDF2Hasher("test-pepper", hasher.WithIterations(16)),
		token.NewRandomGenerator(),
		binder,
		account.WithNotificationManager(nm),
		account.WithRegistrationPolicy(config.RegistrationConfig{
			AutoApproveEnabled:       true,
			AutoApproveEmailSuffixes: []string{"@example.com"},
			InitialRole:              "Member",
			InitialSecurityLevel:     "confidential",
			DefaultRole:              "Browser",
			DefaultSecurityLevel:     "public",
		}),
	)

	tokenAuth := jwtauth.New("HS256", []byte(testSecret), nil)
	server := httptest.NewServer(Routes(NewHandle(service), binder, tokenAuth, "access_token"))
	t.Cleanup(server.Close)

	return &apiFixture{
		server:   server,
		client:   &http.Client{},
		notifier: notifier,
	}
}

func (f *apiFixture) postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := f.client.Post(f.server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestRegisterVerifySignInFlow(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/register", RegisterRequest{
		Username:  "alice",
		Password:  "secret123",
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created AccountResponse
	decode(t, resp, &created)
	assert.Equal(t, "pending", created.Status)
	assert.False(t, created.Active)

	sent := f.notifier.SentTo("alice@example.com")
	require.Len(t, sent, 1)
	plaintextToken := sent[0].Data.Data["Token"]
	require.NotEmpty(t, plaintextToken)

	resp = f.postJSON(t, "/verify", VerifyRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Token:     plaintextToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.postJSON(t, "/signin", SignInRequest{Username: "alice", Password: "secret123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var signedIn AccountResponse
	decode(t, resp, &signedIn)
	assert.True(t, signedIn.Active)
	assert.Contains(t, signedIn.Permissions, "account:write")

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "access_token" {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/me", nil)
	require.NoError(t, err)
	req.AddCookie(sessionCookie)
	meResp, err := f.client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var me AccountResponse
	decode(t, meResp, &me)
	assert.Equal(t, "alice", me.Username)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/signin", SignInRequest{Username: "ghost", Password: "pw"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCurrentAccountAnonymous(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := f.client.Get(f.server.URL + "/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me AccountResponse
	decode(t, resp, &me)
	assert.Equal(t, "anonymous", me.Username)
	assert.False(t, me.Active)
	assert.Equal(t, "Browser", me.RoleName)
}

func TestRegisterDuplicateConflict(t *testing.T) {
	f := newAPIFixture(t)

	body := RegisterRequest{
		Username: "alice", Password: "secret123",
		FirstName: "Alice", LastName: "Smith", Email: "alice@example.com",
	}
	resp := f.postJSON(t, "/register", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.postJSON(t, "/register", body)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFinishPasswordResetMismatch(t *testing.T) {
	f := newAPIFixture(t)

	payload, err := json.Marshal(FinishPasswordResetRequest{
		Token:           "whatever",
		NewPassword:     "one123456",
		ConfirmPassword: "two123456",
	})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, f.server.URL+"/password-reset", bytes.NewReader(payload))
	require.NoError(t, err)
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStartPasswordResetHidesUnknownEmail(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/password-reset", StartPasswordResetRequest{Email: "nobody@example.com"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminRoutesRequireAuthority(t *testing.T) {
	f := newAPIFixture(t)

	// No session at all: rejected before the handler.
	resp, err := f.client.Get(f.server.URL + "/accounts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A Member session has no account:admin authority.
	f.postJSON(t, "/register", RegisterRequest{
		Username: "alice", Password: "secret123",
		FirstName: "Alice", LastName: "Smith", Email: "alice@example.com",
	}).Body.Close()
	plaintextToken := f.notifier.SentTo("alice@example.com")[0].Data.Data["Token"]
	f.postJSON(t, "/verify", VerifyRequest{FirstName: "Alice", LastName: "Smith", Token: plaintextToken}).Body.Close()

	signInResp := f.postJSON(t, "/signin", SignInRequest{Username: "alice", Password: "secret123"})
	signInResp.Body.Close()
	var sessionCookie *http.Cookie
	for _, c := range signInResp.Cookies() {
		if c.Name == "access_token" {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/accounts", nil)
	require.NoError(t, err)
	req.AddCookie(sessionCookie)
	resp, err = f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
