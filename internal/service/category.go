package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/transport"
)

type CategoryService struct {
	Repo *repo.GormRepo
}

func (s *CategoryService) slugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	return s.Repo.SlugTaken(ctx, &models.Category{}, slug, exclude)
}

func (s *CategoryService) List(ctx context.Context, f repo.CategoryFilter) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx, f)
}

func (s *CategoryService) Get(ctx context.Context, idOrSlug string) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, idOrSlug)
	if err != nil {
		return nil, notFound(err, "category")
	}
	return c, nil
}

// Tree returns the root categories with their children attached.
func (s *CategoryService) Tree(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	all, err := s.Repo.ListCategories(ctx, repo.CategoryFilter{ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	return buildTree(all), nil
}

func buildTree(all []models.Category) []*models.Category {
	nodes := make(map[uuid.UUID]*models.Category, len(all))
	for i := range all {
		c := all[i]
		c.Children = nil
		nodes[c.ID] = &c
	}

	roots := make([]*models.Category, 0)
	for i := range all {
		n := nodes[all[i].ID]
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		// An inactive parent hides its subtree.
		if p, ok := nodes[*n.ParentID]; ok {
			p.Children = append(p.Children, n)
		}
	}
	return roots
}

// Descendants returns id and the ids of every category below it.
func (s *CategoryService) Descendants(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	all, err := s.Repo.ListCategories(ctx, repo.CategoryFilter{})
	if err != nil {
		return nil, err
	}
	return subtree(all, id), nil
}

func subtree(all []models.Category, root uuid.UUID) []uuid.UUID {
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, c := range all {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	out := []uuid.UUID{root}
	for i := 0; i < len(out); i++ {
		out = append(out, children[out[i]]...)
	}
	return out
}

func (s *CategoryService) Create(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}

	level := 1
	if req.ParentID != nil {
		parent, err := s.Repo.GetCategoryByID(ctx, *req.ParentID)
		if err != nil {
			if err = notFound(err, "parent category"); errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: %w", ErrValidation, err)
			}
			return nil, err
		}
		level = parent.Level + 1
	}
	if level > models.MaxCategoryLevel {
		return nil, fmt.Errorf("%w: categories nest at most %d levels", ErrValidation, models.MaxCategoryLevel)
	}

	slug, err := uniqueSlug(ctx, name, uuid.Nil, s.slugTaken)
	if err != nil {
		return nil, err
	}

	c := &models.Category{
		Name:          name,
		Slug:          slug,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		ImagePublicID: req.ImagePublicID,
		ParentID:      req.ParentID,
		Level:         level,
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, duplicate(err, "category")
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req transport.PatchCategoryRequest) (*models.Category, error) {
	c, err := s.Repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		if name != c.Name {
			if c.Slug, err = uniqueSlug(ctx, name, id, s.slugTaken); err != nil {
				return nil, err
			}
			c.Name = name
		}
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.ImageURL != nil {
		if err := optionalURL("image_url", *req.ImageURL); err != nil {
			return nil, err
		}
		c.ImageURL = *req.ImageURL
	}
	if req.ImagePublicID != nil {
		c.ImagePublicID = *req.ImagePublicID
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if req.ParentID == nil {
		if err := s.Repo.SaveCategory(ctx, c); err != nil {
			return nil, duplicate(err, "category")
		}
		return c, nil
	}

	levels, err := s.move(ctx, c, *req.ParentID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveCategoryTree(ctx, c, levels); err != nil {
		return nil, duplicate(err, "category")
	}
	return c, nil
}

// move re-parents c and returns the new level of every category in its
// subtree. It rejects cycles and trees deeper than MaxCategoryLevel.
func (s *CategoryService) move(ctx context.Context, c *models.Category, rawParent string) (map[uuid.UUID]int, error) {
	var parentID *uuid.UUID
	if rawParent != "" {
		pid, err := uuid.Parse(rawParent)
		if err != nil {
			return nil, fmt.Errorf("%w: parent_id must be a uuid", ErrValidation)
		}
		parentID = &pid
	}

	all, err := s.Repo.ListCategories(ctx, repo.CategoryFilter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Category, len(all))
	for _, cat := range all {
		byID[cat.ID] = cat
	}

	newLevel := 1
	if parentID != nil {
		parent, ok := byID[*parentID]
		if !ok {
			return nil, fmt.Errorf("%w: %w: parent category", ErrValidation, ErrNotFound)
		}
		for _, id := range subtree(all, c.ID) {
			if id == parent.ID {
				return nil, fmt.Errorf("%w: a category cannot be moved under itself", ErrValidation)
			}
		}
		newLevel = parent.Level + 1
	}

	shift := newLevel - c.Level
	levels := make(map[uuid.UUID]int)
	for _, id := range subtree(all, c.ID) {
		lvl := byID[id].Level + shift
		if lvl > models.MaxCategoryLevel {
			return nil, fmt.Errorf("%w: categories nest at most %d levels", ErrValidation, models.MaxCategoryLevel)
		}
		levels[id] = lvl
	}

	c.ParentID = parentID
	c.Level = newLevel
	return levels, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	children, err := s.Repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: category has %d subcategories", ErrConflict, children)
	}
	products, err := s.Repo.CountProductsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if products > 0 {
		return fmt.Errorf("%w: category has %d products", ErrConflict, products)
	}
	return notFound(s.Repo.DeleteCategory(ctx, id), "category")
}
