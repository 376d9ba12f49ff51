package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/repo"
)

type WishlistService struct {
	Repo *repo.GormRepo
}

func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	return s.Repo.GetWishlist(ctx, userID)
}

func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID) ([]models.WishlistItem, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	p, err := s.Repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if !p.IsActive {
		return nil, fmt.Errorf("%w: product", ErrNotFound)
	}
	if err := s.Repo.AddToWishlist(ctx, &models.WishlistItem{UserID: userID, ProductID: productID}); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return notFound(s.Repo.RemoveFromWishlist(ctx, userID, productID), "wishlist item")
}
