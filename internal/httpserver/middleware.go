package httpserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/pharmacy/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/pharmacy/pkg/middleware/logging"
)

type MiddlewareConfig struct {
	ServiceName  string
	CORSOrigins  []string
	BodyLimit    string
	RateLimit    float64
	RateBurst    int
	CookieSecure bool
	CSRF         bool
}

// Setup installs the validator and the global middleware chain.
func Setup(e *echo.Echo, cfg MiddlewareConfig, logger *slog.Logger) {
	e.Validator = NewValidator()

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(otelecho.Middleware(cfg.ServiceName))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-CSRF-Token"},
		ExposeHeaders:    []string{"X-CSRF-Token", echo.HeaderXRequestID},
		AllowCredentials: true,
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(cfg.BodyLimit))
	}
	if cfg.RateLimit > 0 {
		e.Use(RateLimiter(cfg.RateLimit, cfg.RateBurst, time.Minute))
	}
	if cfg.CSRF {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.Secure = cfg.CookieSecure
		// endpoints that create the session
		csrfCfg.SkipPaths = []string{"/api/v1/auth/login", "/api/v1/auth/refresh", "/api/v1/auth/register"}
		e.Use(csrf.Middleware(csrfCfg))
	}
}

// RateLimiter limits requests per client IP with echo's in-memory store.
func RateLimiter(perSecond float64, burst int, expiresIn time.Duration) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/health/")
		},
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: expiresIn,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "cannot identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}
