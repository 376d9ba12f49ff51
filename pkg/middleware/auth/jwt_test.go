package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy/pkg/tokens"
)

var secret = []byte("access-secret")

func newServer() *echo.Echo {
	e := echo.New()
	auth := NewJWTAuth(secret)
	g := e.Group("", auth.RequireAuth())
	g.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(CtxUserID).(string)+":"+c.Get(CtxRole).(string))
	})
	g.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireAdmin)
	return e
}

func token(t *testing.T, role string, exp time.Duration) string {
	t.Helper()
	tok, err := tokens.SignAccess(secret, "u-1", role, time.Now().Add(exp))
	require.NoError(t, err)
	return tok
}

func TestRequireAuthBearer(t *testing.T) {
	e := newServer()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "user", time.Minute))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u-1:user", rec.Body.String())
}

func TestRequireAuthCookie(t *testing.T) {
	e := newServer()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: token(t, "user", time.Minute)})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthMissingOrExpired(t *testing.T) {
	e := newServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "user", -time.Minute))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "user", time.Minute))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "admin", time.Minute))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
