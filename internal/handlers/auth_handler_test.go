package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newTestEnv(t, testConfig(t))

	rr := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "a@x.com", "password": "secret123", "name": "Ann", "inviteCode": testInvite,
	}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body := decode[map[string]map[string]any](t, rr)
	user := body["user"]
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "Ann", user["name"])
	assert.NotEmpty(t, user["id"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "PasswordHash")
	// регистрация не логинит
	assert.Nil(t, sessionCookie(rr))

	// повторная регистрация — 400
	rr = e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "a@x.com", "password": "another1", "inviteCode": testInvite,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "email already registered", decode[errResp](t, rr).Error)
}

func TestRegister_Rejections(t *testing.T) {
	e := newTestEnv(t, testConfig(t))

	cases := map[string]map[string]string{
		"missing invite": {"email": "a@x.com", "password": "secret123"},
		"wrong invite":   {"email": "a@x.com", "password": "secret123", "inviteCode": "nope"},
		"bad email":      {"email": "nope", "password": "secret123", "inviteCode": testInvite},
		"short password": {"email": "a@x.com", "password": "123", "inviteCode": testInvite},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := e.do(t, http.MethodPost, "/api/auth/register", body, nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.NotEmpty(t, decode[errResp](t, rr).Error)
		})
	}

	rr := e.do(t, http.MethodPost, "/api/auth/register", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_InviteNotConfiguredIsServerError(t *testing.T) {
	cfg := testConfig(t)
	cfg.InviteCode = ""
	e := newTestEnv(t, cfg)

	rr := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{"email": "a@x.com", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal error", decode[errResp](t, rr).Error)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t, testConfig(t))
	e.signup(t, "b@x.com")

	rr := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "b@x.com", "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	setCookie := rr.Header().Get("Set-Cookie")
	for _, part := range []string{"auth_token=", "Path=/", "Max-Age=3600", "HttpOnly", "Secure", "SameSite=Lax"} {
		assert.Contains(t, setCookie, part)
	}
	assert.NotContains(t, rr.Body.String(), "password")
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	rr = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "b@x.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid password", decode[errResp](t, rr).Error)
	assert.Nil(t, sessionCookie(rr))

	rr = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ghost@x.com", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "user not found", decode[errResp](t, rr).Error)
}

func TestMeAndLogout(t *testing.T) {
	e := newTestEnv(t, testConfig(t))

	rr := e.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "unauthorized", decode[errResp](t, rr).Error)

	c := e.signup(t, "c@x.com")
	rr = e.do(t, http.MethodGet, "/api/auth/me", nil, c)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "c@x.com", decode[map[string]map[string]any](t, rr)["user"]["email"])

	rr = e.do(t, http.MethodPost, "/api/auth/logout", nil, c)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	assert.True(t, strings.Contains(rr.Header().Get("Set-Cookie"), "Max-Age=0"))

	// старая cookie больше не работает
	rr = e.do(t, http.MethodGet, "/api/auth/me", nil, c)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t, testConfig(t))
	c := e.signup(t, "d@x.com")

	rr := e.do(t, http.MethodPost, "/api/auth/password", map[string]string{"currentPassword": "bad", "newPassword": "newsecret"}, c)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.do(t, http.MethodPost, "/api/auth/password", map[string]string{"currentPassword": "secret123", "newPassword": "x"}, c)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, http.MethodPost, "/api/auth/password", map[string]string{"currentPassword": "secret123", "newPassword": "newsecret"}, c)
	require.Equal(t, http.StatusOK, rr.Code)

	// текущая сессия жива, старый пароль больше не подходит
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/auth/me", nil, c).Code)
	rr = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "d@x.com", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "d@x.com", "password": "newsecret"}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHealthAndUnknownAPI(t *testing.T) {
	e := newTestEnv(t, testConfig(t))

	rr := e.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	health := decode[map[string]any](t, rr)
	assert.Equal(t, true, health["ok"])
	assert.NotZero(t, health["ts"])

	rr = e.do(t, http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not found", decode[errResp](t, rr).Error)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitRPS = 0.1
	cfg.RateLimitBurst = 2
	e := newTestEnv(t, cfg)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/health", nil, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/health", nil, nil).Code)
	rr := e.do(t, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "too many requests", decode[errResp](t, rr).Error)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	// статика не ограничивается
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/", nil, nil).Code)
}
