package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy/internal/media"
	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/notify"
	"github.com/Skotchmaster/pharmacy/internal/otp"
	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/testdb"
	pkg_hash "github.com/Skotchmaster/pharmacy/pkg/hash"
)

type published struct {
	Topic string
	Key   string
	Event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) Publish(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{topic, key, event})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) last() published {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return published{}
	}
	return f.events[len(f.events)-1]
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (f *fakeNotifier) Notify(_ context.Context, m notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

var codeRe = regexp.MustCompile(`\b(\d{6})\b`)

func (f *fakeNotifier) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	m := codeRe.FindStringSubmatch(f.sent[len(f.sent)-1].Body)
	require.Len(t, m, 2)
	return m[1]
}

type fakeUploader struct {
	uploads []string
	deleted []string
}

func (f *fakeUploader) Upload(_ context.Context, r io.Reader, folder string) (*media.Asset, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	id := folder + "/" + uuid.NewString()
	f.uploads = append(f.uploads, id)
	return &media.Asset{URL: "https://cdn.test/" + id, PublicID: id}, nil
}

func (f *fakeUploader) Delete(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

type fakeIndex struct {
	indexed map[uuid.UUID]string
	hits    []uuid.UUID
	err     error
}

func (f *fakeIndex) Index(_ context.Context, p *models.Product) error {
	if f.indexed == nil {
		f.indexed = map[uuid.UUID]string{}
	}
	f.indexed[p.ID] = p.Name
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []uuid.UUID, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.hits)), f.hits, nil
}

var errIndexDown = errors.New("index down")

type env struct {
	Repo     *repo.GormRepo
	Events   *fakePublisher
	Notifier *fakeNotifier
	Media    *fakeUploader
	Index    *fakeIndex

	Auth          *AuthService
	Users         *UserService
	Brands        *BrandService
	Categories    *CategoryService
	Products      *ProductService
	Cart          *CartService
	Wishlist      *WishlistService
	Orders        *OrderService
	Prescriptions *PrescriptionService
	MediaSvc      *MediaService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	r := repo.New(testdb.New(t))
	e := &env{
		Repo:     r,
		Events:   &fakePublisher{},
		Notifier: &fakeNotifier{},
		Media:    &fakeUploader{},
		Index:    &fakeIndex{},
	}
	pricing := Pricing{ShippingFee: 4900, FreeShippingThreshold: 49900}

	e.Auth = &AuthService{
		Repo:          r,
		OTP:           otp.NewStore(otp.DefaultConfig()),
		Notifier:      e.Notifier,
		Events:        e.Events,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
	e.Users = &UserService{Repo: r}
	e.Brands = &BrandService{Repo: r}
	e.Categories = &CategoryService{Repo: r}
	e.Products = &ProductService{Repo: r, Categories: e.Categories, Index: e.Index, Media: e.Media, Events: e.Events}
	e.Cart = &CartService{Repo: r, Pricing: pricing}
	e.Wishlist = &WishlistService{Repo: r}
	e.Orders = &OrderService{Repo: r, Events: e.Events, Pricing: pricing}
	e.Prescriptions = &PrescriptionService{Repo: r, Media: e.Media, Events: e.Events, MaxBytes: 5 << 20}
	e.MediaSvc = &MediaService{Media: e.Media, MaxBytes: 5 << 20}
	return e
}

func (e *env) user(t *testing.T, email string, verified bool) *models.User {
	t.Helper()
	h, err := pkg_hash.HashPassword("password123")
	require.NoError(t, err)
	u := &models.User{Name: "Test", Email: email, PasswordHash: h, Role: models.RoleUser, IsVerified: verified}
	require.NoError(t, e.Repo.CreateUser(context.Background(), u))
	return u
}

func (e *env) product(t *testing.T, name string, price int64, stock int, rx bool) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Slug: Slugify(name) + "-" + uuid.NewString()[:8], Price: price, Stock: stock, RequiresPrescription: rx, IsActive: true}
	require.NoError(t, e.Repo.CreateProduct(context.Background(), p))
	return p
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func pdfReader() (io.Reader, int64) {
	return bytes.NewReader(pdfBytes), int64(len(pdfBytes))
}
