package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy/pkg/logging"
	"github.com/Skotchmaster/pharmacy/pkg/tokens"

	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/otp"
	"github.com/Skotchmaster/pharmacy/internal/service"
	"github.com/Skotchmaster/pharmacy/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bind(c, l, "register_failed", &req); err != nil {
		return err
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_failed", err, "cannot register user")
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.verify")

	var req transport.VerifyRequest
	if err := bind(c, l, "verify_failed", &req); err != nil {
		return err
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}

	if err := h.Svc.Verify(ctx, identifier, req.Code); err != nil {
		return fail(l, "verify_failed", err, "cannot verify account")
	}

	l.Info("verify_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "account verified"})
}

func (h *AuthHTTP) RequestCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.request_code")

	var req transport.OTPRequest
	if err := bind(c, l, "request_code_failed", &req); err != nil {
		return err
	}

	if err := h.Svc.RequestCode(ctx, req.Identifier, otp.Purpose(req.Purpose)); err != nil {
		return fail(l, "request_code_failed", err, "cannot send code")
	}

	l.Info("request_code_success", "purpose", req.Purpose)
	return c.JSON(http.StatusAccepted, echo.Map{"message": "if the account exists, a code has been sent"})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bind(c, l, "login_failed", &req); err != nil {
		return err
	}

	pair, user, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_failed", err, "cannot log in")
	}

	h.setCookies(c, pair)
	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, tokenResponse(pair, user))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	token := refreshFrom(c)
	if token == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "missing refresh token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	pair, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", h.CookieSecure))
		c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", h.CookieSecure))
		return fail(l, "refresh_failed", err, "cannot refresh session")
	}

	h.setCookies(c, pair)
	l.Info("refresh_success")
	return c.JSON(http.StatusOK, tokenResponse(pair, nil))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	err := h.Svc.Logout(ctx, refreshFrom(c))
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", h.CookieSecure))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", h.CookieSecure))
	if err != nil {
		return fail(l, "logout_failed", err, "cannot revoke refresh token")
	}

	l.Info("logout_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.forgot_password")

	var req transport.ForgotPasswordRequest
	if err := bind(c, l, "forgot_password_failed", &req); err != nil {
		return err
	}

	h.Svc.ForgotPassword(ctx, req.Email)
	return c.JSON(http.StatusAccepted, echo.Map{"message": "if the account exists, a code has been sent"})
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.reset_password")

	var req transport.ResetPasswordRequest
	if err := bind(c, l, "reset_password_failed", &req); err != nil {
		return err
	}

	if err := h.Svc.ResetPassword(ctx, req.Email, req.Code, req.Password); err != nil {
		return fail(l, "reset_password_failed", err, "cannot reset password")
	}

	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", h.CookieSecure))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", h.CookieSecure))
	l.Info("reset_password_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *AuthHTTP) setCookies(c echo.Context, pair *service.TokenPair) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.AccessToken, "/", pair.AccessExp, h.CookieSecure))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp, h.CookieSecure))
}

// refreshFrom prefers the cookie and falls back to a JSON body.
func refreshFrom(c echo.Context) string {
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

func tokenResponse(pair *service.TokenPair, user *models.User) transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        "Bearer",
		AccessExpiresAt:  pair.AccessExp,
		RefreshExpiresAt: pair.RefreshExp,
		User:             user,
	}
}
