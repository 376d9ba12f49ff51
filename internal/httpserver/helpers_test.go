package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	pkg_hash "github.com/Skotchmaster/pharmacy/pkg/hash"
	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/events"
	"github.com/Skotchmaster/pharmacy/internal/media"
	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/notify"
	"github.com/Skotchmaster/pharmacy/internal/otp"
	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/service"
	"github.com/Skotchmaster/pharmacy/internal/testdb"
)

var jwtSecret = []byte("test-jwt-secret")

type outbox struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (o *outbox) Notify(_ context.Context, m notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return nil
}

var codeRe = regexp.MustCompile(`\b(\d{6})\b`)

func (o *outbox) code(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent)
	m := codeRe.FindStringSubmatch(o.sent[len(o.sent)-1].Body)
	require.Len(t, m, 2)
	return m[1]
}

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	Repo   *repo.GormRepo
	Outbox *outbox
	Deps   *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	r := repo.New(testdb.New(t))
	box := &outbox{}
	pricing := service.Pricing{ShippingFee: 4900, FreeShippingThreshold: 49900}
	categories := &service.CategoryService{Repo: r}

	d := &Deps{
		Auth: &AuthHTTP{Svc: &service.AuthService{
			Repo:          r,
			OTP:           otp.NewStore(otp.DefaultConfig()),
			Notifier:      box,
			Events:        events.Nop{},
			JWTSecret:     jwtSecret,
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    24 * time.Hour,
		}},
		Users:      &UserHTTP{Svc: &service.UserService{Repo: r}},
		Brands:     &BrandHTTP{Svc: &service.BrandService{Repo: r}},
		Categories: &CategoryHTTP{Svc: categories},
		Products: &ProductHTTP{Svc: &service.ProductService{
			Repo: r, Categories: categories, Media: media.Disabled{}, Events: events.Nop{},
		}},
		Cart:          &CartHTTP{Svc: &service.CartService{Repo: r, Pricing: pricing}},
		Wishlist:      &WishlistHTTP{Svc: &service.WishlistService{Repo: r}},
		Orders:        &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: events.Nop{}, Pricing: pricing}},
		Prescriptions: &PrescriptionHTTP{Svc: &service.PrescriptionService{Repo: r, Media: media.Disabled{}, Events: events.Nop{}, MaxBytes: 5 << 20}},
		Media:         &MediaHTTP{Svc: &service.MediaService{Media: media.Disabled{}, MaxBytes: 5 << 20}},
		JWTSecret:     jwtSecret,
	}

	e := echo.New()
	Setup(e, MiddlewareConfig{ServiceName: "pharmacy-test", BodyLimit: "8M"}, logging.NewWithWriter(io.Discard, "error"))
	Register(e, d)

	return &testEnv{T: t, E: e, Repo: r, Outbox: box, Deps: d}
}

// do sends a request through the full router. token may be empty.
func (env *testEnv) do(method, path string, body any, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	env.T.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (env *testEnv) createUser(email, role string, verified bool) *models.User {
	env.T.Helper()
	h, err := pkg_hash.HashPassword("password123")
	require.NoError(env.T, err)
	u := &models.User{Name: "Test User", Email: email, PasswordHash: h, Role: role, IsVerified: verified}
	require.NoError(env.T, env.Repo.CreateUser(context.Background(), u))
	return u
}

func (env *testEnv) login(email string) string {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": "password123"}, "")
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]any](env.T, rec)
	tok, _ := resp["access_token"].(string)
	require.NotEmpty(env.T, tok)
	return tok
}

func cookieFrom(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
