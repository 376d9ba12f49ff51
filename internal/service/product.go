package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/events"
	"github.com/Skotchmaster/pharmacy/internal/media"
	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/transport"
)

// ProductIndex is the full-text index kept beside the database.
type ProductIndex interface {
	Index(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q string, from, size int) (int64, []uuid.UUID, error)
}

type ProductService struct {
	Repo       *repo.GormRepo
	Categories *CategoryService
	Index      ProductIndex
	Media      media.Uploader
	Events     events.Publisher
}

func (s *ProductService) slugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	return s.Repo.SlugTaken(ctx, &models.Product{}, slug, exclude)
}

// List resolves category and brand keys and lists active products. An
// unknown category or brand yields an empty page.
func (s *ProductService) List(ctx context.Context, q transport.ProductQuery, offset, limit int) (int64, []models.Product, error) {
	f := repo.ProductFilter{
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		RequiresRx: q.Rx,
		InStock:    q.InStock,
		Q:          strings.TrimSpace(q.Q),
		ActiveOnly: true,
		Sort:       q.Sort,
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return 0, nil, fmt.Errorf("%w: min_price is greater than max_price", ErrValidation)
	}
	switch q.Sort {
	case "", repo.SortPriceAsc, repo.SortPriceDesc, repo.SortNewest, repo.SortName:
	default:
		return 0, nil, fmt.Errorf("%w: unknown sort %q", ErrValidation, q.Sort)
	}

	if q.Category != "" {
		cat, err := s.Repo.GetCategory(ctx, q.Category)
		if err != nil {
			if errors.Is(notFound(err, "category"), ErrNotFound) {
				return 0, []models.Product{}, nil
			}
			return 0, nil, err
		}
		if f.CategoryIDs, err = s.Categories.Descendants(ctx, cat.ID); err != nil {
			return 0, nil, err
		}
	}
	if q.Brand != "" {
		b, err := s.Repo.GetBrand(ctx, q.Brand)
		if err != nil {
			if errors.Is(notFound(err, "brand"), ErrNotFound) {
				return 0, []models.Product{}, nil
			}
			return 0, nil, err
		}
		f.BrandID = &b.ID
	}

	return s.Repo.ListProducts(ctx, f, offset, limit)
}

// Get hides inactive products unless includeInactive is set.
func (s *ProductService) Get(ctx context.Context, idOrSlug string, includeInactive bool) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, idOrSlug)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if !p.IsActive && !includeInactive {
		return nil, fmt.Errorf("%w: product", ErrNotFound)
	}
	return p, nil
}

// Search asks the index first and falls back to a database scan when the
// index is absent or failing.
func (s *ProductService) Search(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: q required", ErrValidation)
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		l.Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}
	return s.Repo.SearchProductsDB(ctx, q, offset, limit)
}

func (s *ProductService) checkRefs(ctx context.Context, brandID, categoryID *uuid.UUID) error {
	if brandID != nil {
		if _, err := s.Repo.GetBrandByID(ctx, *brandID); err != nil {
			if errors.Is(notFound(err, "brand"), ErrNotFound) {
				return fmt.Errorf("%w: brand does not exist", ErrValidation)
			}
			return err
		}
	}
	if categoryID != nil {
		if _, err := s.Repo.GetCategoryByID(ctx, *categoryID); err != nil {
			if errors.Is(notFound(err, "category"), ErrNotFound) {
				return fmt.Errorf("%w: category does not exist", ErrValidation)
			}
			return err
		}
	}
	return nil
}

func (s *ProductService) checkSKU(ctx context.Context, sku *string, exclude uuid.UUID) (*string, error) {
	if sku == nil || strings.TrimSpace(*sku) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*sku)
	taken, err := s.Repo.SKUTaken(ctx, v, exclude)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: sku %q already exists", ErrConflict, v)
	}
	return &v, nil
}

func validatePricing(price, mrp int64) error {
	if price < 0 || mrp < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if mrp > 0 && price > mrp {
		return fmt.Errorf("%w: price cannot exceed mrp", ErrValidation)
	}
	return nil
}

func toImages(in []transport.Image) []models.Image {
	out := make([]models.Image, 0, len(in))
	for _, img := range in {
		out = append(out, models.Image{URL: img.URL, PublicID: img.PublicID})
	}
	return out
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (s *ProductService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	if err := validatePricing(req.Price, req.MRP); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.BrandID, req.CategoryID); err != nil {
		return nil, err
	}
	sku, err := s.checkSKU(ctx, req.SKU, uuid.Nil)
	if err != nil {
		return nil, err
	}
	slug, err := uniqueSlug(ctx, name, uuid.Nil, s.slugTaken)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:                 name,
		Slug:                 slug,
		Description:          req.Description,
		Composition:          req.Composition,
		Manufacturer:         req.Manufacturer,
		SKU:                  sku,
		Price:                req.Price,
		MRP:                  req.MRP,
		Stock:                req.Stock,
		BrandID:              req.BrandID,
		CategoryID:           req.CategoryID,
		Images:               toImages(req.Images),
		Tags:                 cleanTags(req.Tags),
		RequiresPrescription: req.RequiresPrescription,
		IsActive:             req.IsActive == nil || *req.IsActive,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, duplicate(err, "product")
	}

	s.afterWrite(ctx, p, events.TypeProductCreated, 0)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.Repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		if name != p.Name {
			if p.Slug, err = uniqueSlug(ctx, name, id, s.slugTaken); err != nil {
				return nil, err
			}
			p.Name = name
		}
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Composition != nil {
		p.Composition = *req.Composition
	}
	if req.Manufacturer != nil {
		p.Manufacturer = *req.Manufacturer
	}
	if req.SKU != nil {
		if p.SKU, err = s.checkSKU(ctx, req.SKU, id); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.MRP != nil {
		p.MRP = *req.MRP
	}
	if err := validatePricing(p.Price, p.MRP); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.BrandID, req.CategoryID); err != nil {
		return nil, err
	}
	if req.BrandID != nil {
		p.BrandID = req.BrandID
	}
	if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}
	if req.Images != nil {
		p.Images = toImages(*req.Images)
	}
	if req.Tags != nil {
		p.Tags = cleanTags(*req.Tags)
	}
	if req.RequiresPrescription != nil {
		p.RequiresPrescription = *req.RequiresPrescription
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, duplicate(err, "product")
	}

	s.afterWrite(ctx, p, events.TypeProductUpdated, 0)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "product.delete")

	p, err := s.Repo.GetProductByID(ctx, id)
	if err != nil {
		return notFound(err, "product")
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "product")
	}

	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Warn("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	if s.Media != nil {
		for _, img := range p.Images {
			if img.PublicID == "" {
				continue
			}
			if err := s.Media.Delete(ctx, img.PublicID); err != nil && !errors.Is(err, media.ErrDisabled) {
				l.Warn("product_image_delete_failed", "public_id", img.PublicID, "error", err)
			}
		}
	}
	events.PublishLogged(ctx, s.Events, l, events.TopicProducts, id.String(),
		events.ProductEvent{Type: events.TypeProductDeleted, ProductID: id.String(), Name: p.Name})
	return nil
}

// AdjustStock adds delta (which may be negative) to the stock level.
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", ErrValidation)
	}
	ok, err := s.Repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if !ok {
		return nil, fmt.Errorf("%w: stock cannot go below zero", ErrInsufficientStock)
	}

	p, err := s.Repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	s.afterWrite(ctx, p, events.TypeProductRestock, delta)
	return p, nil
}

func (s *ProductService) afterWrite(ctx context.Context, p *models.Product, eventType string, delta int) {
	l := logging.FromContext(ctx).With("svc", "product.sync")

	if s.Index != nil {
		if err := s.Index.Index(ctx, p); err != nil {
			l.Warn("search_index_failed", "product_id", p.ID, "error", err)
		}
	}
	events.PublishLogged(ctx, s.Events, l, events.TopicProducts, p.ID.String(), events.ProductEvent{
		Type:      eventType,
		ProductID: p.ID.String(),
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Delta:     delta,
	})
}
