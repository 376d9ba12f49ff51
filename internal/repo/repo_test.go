package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/testdb"
)

func newRepo(t *testing.T) *GormRepo {
	return New(testdb.New(t))
}

func seedProduct(t *testing.T, r *GormRepo, name string, price int64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Slug: uuid.NewString(), Price: price, Stock: stock, IsActive: true}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	p := seedProduct(t, r, "Paracetamol", 100, 3)

	ok, err := r.AdjustStock(ctx, p.ID, -2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.AdjustStock(ctx, p.ID, -2)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)

	_, err = r.AdjustStock(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListProductsFilters(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	seedProduct(t, r, "Aspirin", 300, 0)
	seedProduct(t, r, "Ibuprofen", 150, 5)
	seedProduct(t, r, "Cetirizine", 50, 9)

	total, items, err := r.ListProducts(ctx, ProductFilter{InStock: true, Sort: SortPriceAsc}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Cetirizine", items[0].Name)

	min := int64(100)
	total, items, err = r.ListProducts(ctx, ProductFilter{MinPrice: &min, Sort: SortPriceDesc}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Aspirin", items[0].Name)

	total, items, err = r.ListProducts(ctx, ProductFilter{Q: "IBU"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Ibuprofen", items[0].Name)
}

func TestDeleteProductRemovesCartAndWishlistRows(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	p := seedProduct(t, r, "Zinc", 100, 5)
	userID := uuid.New()

	require.NoError(t, r.UpsertCartItem(ctx, &models.CartItem{UserID: userID, ProductID: p.ID, Quantity: 2}))
	require.NoError(t, r.AddToWishlist(ctx, &models.WishlistItem{UserID: userID, ProductID: p.ID}))

	require.NoError(t, r.DeleteProduct(ctx, p.ID))

	cart, err := r.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart)
	wl, err := r.GetWishlist(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, wl)

	assert.ErrorIs(t, r.DeleteProduct(ctx, p.ID), gorm.ErrRecordNotFound)
}

func TestUpsertCartItemOverwritesQuantity(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	p := seedProduct(t, r, "Vitamin C", 100, 10)
	userID := uuid.New()

	require.NoError(t, r.UpsertCartItem(ctx, &models.CartItem{UserID: userID, ProductID: p.ID, Quantity: 2}))
	item := &models.CartItem{UserID: userID, ProductID: p.ID, Quantity: 5}
	require.NoError(t, r.UpsertCartItem(ctx, item))
	assert.Equal(t, 5, item.Quantity)

	cart, err := r.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	require.NotNil(t, cart[0].Product)
	assert.Equal(t, "Vitamin C", cart[0].Product.Name)
}

func TestAddToWishlistIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	p := seedProduct(t, r, "ORS", 20, 10)
	userID := uuid.New()

	require.NoError(t, r.AddToWishlist(ctx, &models.WishlistItem{UserID: userID, ProductID: p.ID}))
	require.NoError(t, r.AddToWishlist(ctx, &models.WishlistItem{UserID: userID, ProductID: p.ID}))

	items, err := r.GetWishlist(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRotateRefreshToken(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	userID := uuid.New()

	old := &models.RefreshToken{UserID: userID, TokenHash: "h1", JTI: "j1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, r.AddRefreshToken(ctx, old))

	next := &models.RefreshToken{UserID: userID, TokenHash: "h2", JTI: "j2", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, r.RotateRefreshToken(ctx, "j1", "h1", next))

	again := &models.RefreshToken{UserID: userID, TokenHash: "h3", JTI: "j3", ExpiresAt: time.Now().Add(time.Hour)}
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, "j1", "h1", again), ErrTokenUnusable)

	burned, err := r.FindRefreshByJTI(ctx, "j1")
	require.NoError(t, err)
	assert.True(t, burned.Revoked)
}

func TestTransitionOrderIsConditional(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	o := &models.Order{
		OrderNumber:   "ORD-20260101-ABC123",
		UserID:        uuid.New(),
		Status:        models.OrderStatusPending,
		PaymentMethod: models.PaymentCOD,
		PaymentStatus: models.PaymentPending,
		ShippingName:  "A",
		ShippingPhone: "1",
		Items:         []models.OrderItem{{ProductID: uuid.New(), Name: "x", UnitPrice: 10, Quantity: 1, LineTotal: 10}},
	}
	require.NoError(t, r.CreateOrder(ctx, o))

	ok, err := r.TransitionOrder(ctx, o.ID, models.OrderStatusPending, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.TransitionOrder(ctx, o.ID, models.OrderStatusPending, models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)
	assert.Len(t, got.Items, 1)
}

func TestMarkVerified(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	u := &models.User{Name: "Rina", Email: "rina@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, r.CreateUser(ctx, u))

	require.NoError(t, r.MarkVerified(ctx, u.ID))
	got, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	assert.ErrorIs(t, r.MarkVerified(ctx, uuid.New()), gorm.ErrRecordNotFound)
}
