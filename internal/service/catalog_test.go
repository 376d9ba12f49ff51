package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy/internal/events"
	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/transport"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "pain-relief", Slugify("  Pain  Relief! "))
	assert.Equal(t, "vitamin-b12", Slugify("Vitamin B12"))
	assert.Equal(t, "", Slugify("!!!"))
	assert.Equal(t, "creme-solaire", Slugify("Crème Solaire"))
}

func TestBrandCRUD(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	b, err := e.Brands.Create(ctx, transport.CreateBrandRequest{Name: "Cipla"})
	require.NoError(t, err)
	assert.Equal(t, "cipla", b.Slug)
	assert.True(t, b.IsActive)

	_, err = e.Brands.Create(ctx, transport.CreateBrandRequest{Name: "cipla"})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := e.Brands.Get(ctx, "cipla")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	inactive := false
	name := "Cipla Health"
	up, err := e.Brands.Update(ctx, b.ID, transport.PatchBrandRequest{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "cipla-health", up.Slug)
	assert.False(t, up.IsActive)

	p := e.product(t, "Cipcal", 100, 1, false)
	p.BrandID = &b.ID
	require.NoError(t, e.Repo.SaveProduct(ctx, p))
	assert.ErrorIs(t, e.Brands.Delete(ctx, b.ID), ErrConflict)

	require.NoError(t, e.Repo.DeleteProduct(ctx, p.ID))
	require.NoError(t, e.Brands.Delete(ctx, b.ID))
	assert.ErrorIs(t, e.Brands.Delete(ctx, b.ID), ErrNotFound)
}

func mkCategory(t *testing.T, e *env, name string, parent *uuid.UUID) *models.Category {
	t.Helper()
	c, err := e.Categories.Create(context.Background(), transport.CreateCategoryRequest{Name: name, ParentID: parent})
	require.NoError(t, err)
	return c
}

func TestCategoryDepthLimit(t *testing.T) {
	e := newEnv(t)
	l1 := mkCategory(t, e, "Medicines", nil)
	l2 := mkCategory(t, e, "Pain Relief", &l1.ID)
	l3 := mkCategory(t, e, "Headache", &l2.ID)
	assert.Equal(t, 3, l3.Level)

	_, err := e.Categories.Create(context.Background(), transport.CreateCategoryRequest{Name: "Too deep", ParentID: &l3.ID})
	assert.ErrorIs(t, err, ErrValidation)

	missing := uuid.New()
	_, err = e.Categories.Create(context.Background(), transport.CreateCategoryRequest{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCategoryMove(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := mkCategory(t, e, "A", nil)
	b := mkCategory(t, e, "B", &a.ID)
	c := mkCategory(t, e, "C", &b.ID)
	x := mkCategory(t, e, "X", nil)

	cyc := c.ID.String()
	_, err := e.Categories.Update(ctx, a.ID, transport.PatchCategoryRequest{ParentID: &cyc})
	assert.ErrorIs(t, err, ErrValidation)

	// B has a child, so under X it would reach level 3 which is fine.
	under := x.ID.String()
	moved, err := e.Categories.Update(ctx, b.ID, transport.PatchCategoryRequest{ParentID: &under})
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Level)

	// Moving X (with B and C below) under A would need four levels.
	toA := a.ID.String()
	_, err = e.Categories.Update(ctx, x.ID, transport.PatchCategoryRequest{ParentID: &toA})
	assert.ErrorIs(t, err, ErrValidation)

	root := ""
	moved, err = e.Categories.Update(ctx, b.ID, transport.PatchCategoryRequest{ParentID: &root})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Level)
	assert.Nil(t, moved.ParentID)

	got, err := e.Categories.Get(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Level)
}

func TestCategoryTreeAndDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := mkCategory(t, e, "Wellness", nil)
	b := mkCategory(t, e, "Vitamins", &a.ID)
	mkCategory(t, e, "Skin", nil)

	tree, err := e.Categories.Tree(ctx, true)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	var wellness *models.Category
	for _, n := range tree {
		if n.ID == a.ID {
			wellness = n
		}
	}
	require.NotNil(t, wellness)
	require.Len(t, wellness.Children, 1)
	assert.Equal(t, b.ID, wellness.Children[0].ID)

	assert.ErrorIs(t, e.Categories.Delete(ctx, a.ID), ErrConflict)
	require.NoError(t, e.Categories.Delete(ctx, b.ID))
	require.NoError(t, e.Categories.Delete(ctx, a.ID))
}

func TestProductCreateValidatesAndSyncs(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.Products.Create(ctx, transport.CreateProductRequest{Name: "Bad", Price: 200, MRP: 100})
	assert.ErrorIs(t, err, ErrValidation)

	missing := uuid.New()
	_, err = e.Products.Create(ctx, transport.CreateProductRequest{Name: "Bad", Price: 1, BrandID: &missing})
	assert.ErrorIs(t, err, ErrValidation)

	sku := "SKU-1"
	p, err := e.Products.Create(ctx, transport.CreateProductRequest{
		Name: "Dolo 650", Price: 3000, MRP: 3200, Stock: 10, SKU: &sku, Tags: []string{"Fever", "fever", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "dolo-650", p.Slug)
	assert.Equal(t, []string{"fever"}, p.Tags)
	assert.Equal(t, "Dolo 650", e.Index.indexed[p.ID])
	assert.Equal(t, events.TopicProducts, e.Events.last().Topic)

	p2, err := e.Products.Create(ctx, transport.CreateProductRequest{Name: "Dolo 650", Price: 1})
	require.NoError(t, err)
	assert.Equal(t, "dolo-650-2", p2.Slug)

	_, err = e.Products.Create(ctx, transport.CreateProductRequest{Name: "Other", Price: 1, SKU: &sku})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProductListByCategoryIncludesDescendants(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	top := mkCategory(t, e, "Medicines", nil)
	child := mkCategory(t, e, "Antibiotics", &top.ID)
	other := mkCategory(t, e, "Baby", nil)

	_, err := e.Products.Create(ctx, transport.CreateProductRequest{Name: "Amoxicillin", Price: 100, Stock: 1, CategoryID: &child.ID})
	require.NoError(t, err)
	_, err = e.Products.Create(ctx, transport.CreateProductRequest{Name: "Diapers", Price: 100, Stock: 1, CategoryID: &other.ID})
	require.NoError(t, err)
	off := false
	_, err = e.Products.Create(ctx, transport.CreateProductRequest{Name: "Hidden", Price: 100, CategoryID: &child.ID, IsActive: &off})
	require.NoError(t, err)

	total, items, err := e.Products.List(ctx, transport.ProductQuery{Category: "medicines"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Amoxicillin", items[0].Name)

	total, items, err = e.Products.List(ctx, transport.ProductQuery{Category: "nope"}, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	_, _, err = e.Products.List(ctx, transport.ProductQuery{Sort: "random"}, 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductSearchFallsBackToDatabase(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, "Cetirizine", 100, 5, false)
	e.product(t, "Zinc", 100, 5, false)

	e.Index.hits = []uuid.UUID{p.ID}
	total, items, err := e.Products.Search(ctx, "ceti", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, p.ID, items[0].ID)

	e.Index.err = errIndexDown
	total, items, err = e.Products.Search(ctx, "zinc", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Zinc", items[0].Name)

	_, _, err = e.Products.Search(ctx, "  ", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductAdjustStockAndDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p, err := e.Products.Create(ctx, transport.CreateProductRequest{
		Name: "ORS", Price: 20, Stock: 2,
		Images: []transport.Image{{URL: "https://cdn.test/a.png", PublicID: "products/a"}},
	})
	require.NoError(t, err)

	_, err = e.Products.AdjustStock(ctx, p.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.Products.AdjustStock(ctx, p.ID, -3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err := e.Products.AdjustStock(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	_, err = e.Products.AdjustStock(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, e.Products.Delete(ctx, p.ID))
	assert.Equal(t, []string{"products/a"}, e.Media.deleted)
	assert.NotContains(t, e.Index.indexed, p.ID)

	_, err = e.Products.Get(ctx, p.ID.String(), true)
	assert.ErrorIs(t, err, ErrNotFound)
}
