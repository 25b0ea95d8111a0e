package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keiworks/authd/internal/middleware"
)

type Deps struct {
	Auth   *AuthHTTP
	Guard  *middleware.Guard
	Prefix string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	g := e.Group(d.Prefix)
	g.POST("/login", d.Auth.Login)
	g.POST("/logout", d.Auth.Logout, d.Guard.RequireAuth)
	g.POST("/refresh", d.Auth.Refresh)
	g.POST("/register", d.Auth.Register)
}
