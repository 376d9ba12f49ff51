package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/x", ok)
	e.POST("/x", ok)
	return e
}

func TestGetIssuesToken(t *testing.T) {
	e := newServer()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
}

func TestPostWithoutSessionIsNotChecked(t *testing.T) {
	e := newServer()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPostWithBearerIsNotChecked(t *testing.T) {
	e := newServer()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "t"})
	req.Header.Set(echo.HeaderAuthorization, "Bearer t")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCookieSessionNeedsMatchingToken(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodPost, "http://example.com/x", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://example.com")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "t"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "http://example.com/x", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "t"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCookieSessionRejectsForeignOrigin(t *testing.T) {
	e := newServer()
	req := httptest.NewRequest(http.MethodPost, "http://example.com/x", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://evil.com")
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "t"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAllowCrossOriginSkipsOriginCheck(t *testing.T) {
	e := echo.New()
	e.Use(Middleware(Config{AllowCrossOrigin: true}))
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "http://example.com/x", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://partner.com")
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "t"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
