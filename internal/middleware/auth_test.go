package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keiworks/authd/internal/tokens"
)

var testSecret = []byte("test-jwt-secret")

const errorKey = "server.validation"

func issueToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()

	token, err := tokens.Issue(tokens.Claims{UserID: 7, Username: "alice", Role: role}, ttl, testSecret)
	require.NoError(t, err)
	return token
}

func runGuard(t *testing.T, authHeader string, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	require.NoError(t, handler(c))

	return rec
}

func TestRequireAuthSuccess(t *testing.T) {
	t.Parallel()

	g := NewGuard(testSecret, errorKey)
	rec := runGuard(t, "Bearer "+issueToken(t, "regular", time.Hour), g.RequireAuth)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthFailures(t *testing.T) {
	t.Parallel()

	g := NewGuard(testSecret, errorKey)

	tests := []struct {
		name   string
		header string
		body   string
	}{
		{name: "missing header", header: "", body: "access_token_required"},
		{name: "wrong scheme", header: "Basic abc123", body: "access_token_invalid"},
		{name: "missing token segment", header: "Bearer", body: "access_token_invalid"},
		{name: "empty token segment", header: "Bearer ", body: "access_token_invalid"},
		{name: "garbage token", header: "Bearer not.a.jwt", body: "access_token_invalid"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := runGuard(t, tt.header, g.RequireAuth)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), errorKey+"."+tt.body)
		})
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	t.Parallel()

	g := NewGuard(testSecret, errorKey)
	rec := runGuard(t, "Bearer "+issueToken(t, "regular", -time.Minute), g.RequireAuth)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_token_invalid")
}

func TestRequireAuthWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := tokens.Issue(tokens.Claims{UserID: 7, Username: "alice", Role: "admin"}, time.Hour, []byte("other-secret"))
	require.NoError(t, err)

	g := NewGuard(testSecret, errorKey)
	rec := runGuard(t, "Bearer "+token, g.RequireAuth)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	g := NewGuard(testSecret, errorKey)

	tests := []struct {
		name    string
		role    string
		allowed []string
		status  int
	}{
		{name: "member of set", role: "admin", allowed: []string{"admin"}, status: http.StatusOK},
		{name: "one of several", role: "regular", allowed: []string{"admin", "regular"}, status: http.StatusOK},
		{name: "not a member", role: "regular", allowed: []string{"admin"}, status: http.StatusUnauthorized},
		{name: "empty set", role: "admin", allowed: nil, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := runGuard(t, "Bearer "+issueToken(t, tt.role, time.Hour), g.RequireAuth, g.RequireRoles(tt.allowed...))
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "no_permission")
			}
		})
	}
}

func TestRequireRolesWithoutAuthenticate(t *testing.T) {
	t.Parallel()

	// Claims were never attached: role membership cannot hold.
	g := NewGuard(testSecret, errorKey)
	rec := runGuard(t, "", g.RequireRoles("admin"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimsFromContext(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issueToken(t, "regular", time.Hour))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	g := NewGuard(testSecret, errorKey)
	handler := g.RequireAuth(func(c echo.Context) error {
		claims := ClaimsFromContext(c)
		require.NotNil(t, claims)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, uint(7), claims.UserID)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Nil(t, ClaimsFromContext(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())))
}
