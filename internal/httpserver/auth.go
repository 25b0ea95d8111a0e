package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keiworks/authd/internal/logging"
	"github.com/keiworks/authd/internal/response"
	"github.com/keiworks/authd/internal/service"
	"github.com/keiworks/authd/internal/validate"
)

type AuthHTTP struct {
	Svc       *service.AuthService
	Validator *validate.Validator
	ErrorKey  string

	// LoginMinDuration pads the login handler to a fixed minimum wall time,
	// success or failure, on top of the service's decoy-hash path.
	LoginMinDuration time.Duration
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")
	started := time.Now()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_rejected", "reason", "bad_body")
	}

	// A malformed login body gets the same uniform 403 as bad credentials.
	if errs := h.Validator.Login(req.Username, req.Password); len(errs) > 0 {
		h.pace(c, started)
		return c.JSON(http.StatusForbidden, response.LoginError(h.ErrorKey))
	}

	pair, err := h.Svc.Login(ctx, req.Username, req.Password)
	h.pace(c, started)
	if err != nil {
		return c.JSON(http.StatusForbidden, response.LoginError(h.ErrorKey))
	}

	return c.JSON(http.StatusOK, response.Data(echo.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("logout_rejected", "reason", "bad_body")
	}
	if errs := h.Validator.RefreshToken(req.RefreshToken); len(errs) > 0 {
		return h.validationFailed(c, errs)
	}

	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		// A missing record means the client tried to end a session the
		// server does not know about; that inconsistency is a 500, not a 4xx.
		return c.JSON(http.StatusInternalServerError, response.ServerError())
	}

	return c.NoContent(http.StatusOK)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_rejected", "reason", "bad_body")
	}
	if errs := h.Validator.RefreshToken(req.RefreshToken); len(errs) > 0 {
		return h.validationFailed(c, errs)
	}

	access, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalid) {
			return c.JSON(http.StatusForbidden, response.RefreshTokenInvalid(h.ErrorKey))
		}
		return c.JSON(http.StatusInternalServerError, response.ServerError())
	}

	return c.JSON(http.StatusOK, response.Data(echo.Map{"accessToken": access}))
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_rejected", "reason", "bad_body")
	}
	if errs := h.Validator.Register(req.Username, req.Password, req.PasswordConfirm); len(errs) > 0 {
		return h.validationFailed(c, errs)
	}

	pair, err := h.Svc.Register(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			return c.JSON(http.StatusUnprocessableEntity, response.UsernameAlreadyExist(h.ErrorKey))
		}
		return c.JSON(http.StatusInternalServerError, response.ServerError())
	}

	return c.JSON(http.StatusOK, response.Data(echo.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}))
}

func (h *AuthHTTP) validationFailed(c echo.Context, errs []validate.FieldError) error {
	out := make([]response.Error, 0, len(errs))
	for _, e := range errs {
		out = append(out, response.Error{Key: e.Key(h.ErrorKey), Name: e.Field})
	}
	return c.JSON(http.StatusUnprocessableEntity, response.Errors(out...))
}

func (h *AuthHTTP) pace(c echo.Context, started time.Time) {
	remaining := h.LoginMinDuration - time.Since(started)
	if remaining <= 0 {
		return
	}
	select {
	case <-time.After(remaining):
	case <-c.Request().Context().Done():
	}
}
