package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/transport"
)

type BrandService struct {
	Repo *repo.GormRepo
}

func (s *BrandService) slugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	return s.Repo.SlugTaken(ctx, &models.Brand{}, slug, exclude)
}

func (s *BrandService) List(ctx context.Context, q string, active *bool, offset, limit int) (int64, []models.Brand, error) {
	return s.Repo.ListBrands(ctx, q, active, offset, limit)
}

func (s *BrandService) Get(ctx context.Context, idOrSlug string) (*models.Brand, error) {
	b, err := s.Repo.GetBrand(ctx, idOrSlug)
	if err != nil {
		return nil, notFound(err, "brand")
	}
	return b, nil
}

func (s *BrandService) Create(ctx context.Context, req transport.CreateBrandRequest) (*models.Brand, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(ctx, name, uuid.Nil, s.slugTaken)
	if err != nil {
		return nil, err
	}

	b := &models.Brand{
		Name:         name,
		Slug:         slug,
		Description:  req.Description,
		LogoURL:      req.LogoURL,
		LogoPublicID: req.LogoPublicID,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if err := s.Repo.CreateBrand(ctx, b); err != nil {
		return nil, duplicate(err, "brand")
	}
	return b, nil
}

func (s *BrandService) ensureNameFree(ctx context.Context, name string, exclude uuid.UUID) error {
	taken, err := s.Repo.BrandNameTaken(ctx, name, exclude)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: brand %q already exists", ErrConflict, name)
	}
	return nil
}

func (s *BrandService) Update(ctx context.Context, id uuid.UUID, req transport.PatchBrandRequest) (*models.Brand, error) {
	b, err := s.Repo.GetBrandByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "brand")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		if name != b.Name {
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
			if b.Slug, err = uniqueSlug(ctx, name, id, s.slugTaken); err != nil {
				return nil, err
			}
			b.Name = name
		}
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.LogoURL != nil {
		if err := optionalURL("logo_url", *req.LogoURL); err != nil {
			return nil, err
		}
		b.LogoURL = *req.LogoURL
	}
	if req.LogoPublicID != nil {
		b.LogoPublicID = *req.LogoPublicID
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	if err := s.Repo.SaveBrand(ctx, b); err != nil {
		return nil, duplicate(err, "brand")
	}
	return b, nil
}

func (s *BrandService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.Repo.CountProductsByBrand(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: brand is used by %d products", ErrConflict, n)
	}
	return notFound(s.Repo.DeleteBrand(ctx, id), "brand")
}
