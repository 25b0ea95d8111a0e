package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keiworks/authd/internal/response"
	"github.com/keiworks/authd/internal/tokens"
)

const claimsContextKey = "auth_claims"

// Guard authenticates bearer tokens and authorizes by claim role. It never
// touches the store: everything it needs is inside the verified token, so a
// role change only lands once the current access token expires.
type Guard struct {
	Secret   []byte
	ErrorKey string
}

func NewGuard(secret []byte, errorKey string) *Guard {
	return &Guard{Secret: secret, ErrorKey: errorKey}
}

// RequireAuth accepts exactly "Bearer <token>" in the Authorization header,
// verifies it and attaches the claims to the request context.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return c.JSON(http.StatusForbidden, response.AccessTokenRequired(g.ErrorKey))
		}

		parts := strings.Split(header, " ")
		if len(parts) < 2 || parts[0] != "Bearer" || parts[1] == "" {
			return c.JSON(http.StatusForbidden, response.AccessTokenInvalid(g.ErrorKey))
		}

		claims, err := tokens.Parse(parts[1], g.Secret)
		if err != nil {
			return c.JSON(http.StatusForbidden, response.AccessTokenInvalid(g.ErrorKey))
		}

		c.Set(claimsContextKey, claims)

		return next(c)
	}
}

// RequireRoles allows the request through only when the authenticated claim
// role is one of names. It must run after RequireAuth.
func (g *Guard) RequireRoles(names ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := ""
			if claims := ClaimsFromContext(c); claims != nil {
				role = claims.Role
			}

			for _, name := range names {
				if role == name {
					return next(c)
				}
			}

			return c.JSON(http.StatusUnauthorized, response.NoPermission(g.ErrorKey))
		}
	}
}

// ClaimsFromContext returns the claims RequireAuth attached, or nil.
func ClaimsFromContext(c echo.Context) *tokens.Claims {
	if claims, ok := c.Get(claimsContextKey).(*tokens.Claims); ok {
		return claims
	}
	return nil
}
