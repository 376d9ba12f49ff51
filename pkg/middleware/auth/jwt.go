package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy/pkg/logging"
	"github.com/Skotchmaster/pharmacy/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"

	RoleAdmin = "admin"
)

type JWTAuth struct {
	JWTSecret []byte
}

func NewJWTAuth(secret []byte) *JWTAuth {
	return &JWTAuth{JWTSecret: secret}
}

// RequireAuth accepts the access token from a Bearer header or the accessToken cookie.
func (m *JWTAuth) RequireAuth() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ,cookie:" + tokens.AccessCookie,
		ParseTokenFunc: func(c echo.Context, auth string) (any, error) {
			return tokens.AccessClaimsFromToken(auth, m.JWTSecret)
		},
		SuccessHandler: func(c echo.Context) {
			if claims, ok := c.Get("user").(*tokens.AccessClaims); ok {
				setUserContext(c, claims)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing access token")
		},
	})
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireRole(RoleAdmin)(next)
}

func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			for _, r := range roles {
				if r == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
		}
	}
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)

	req := c.Request()
	l := logging.FromContext(req.Context()).With("user_id", claims.Subject)
	c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
}
