package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/transport"
)

// Pricing holds the shipping rules shared by the cart and checkout.
type Pricing struct {
	ShippingFee           int64
	FreeShippingThreshold int64
}

// Shipping returns the fee for an order of subtotal. Empty orders ship free.
func (p Pricing) Shipping(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	if p.FreeShippingThreshold > 0 && subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.ShippingFee
}

type CartService struct {
	Repo    *repo.GormRepo
	Pricing Pricing
}

func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*transport.CartView, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(items), nil
}

func (s *CartService) view(items []models.CartItem) *transport.CartView {
	v := &transport.CartView{Items: make([]transport.CartLine, 0, len(items))}
	for _, it := range items {
		line := transport.CartLine{ProductID: it.ProductID, Quantity: it.Quantity}
		if p := it.Product; p != nil {
			line.Name = p.Name
			line.Slug = p.Slug
			line.UnitPrice = p.Price
			line.Stock = p.Stock
			line.RequiresPrescription = p.RequiresPrescription
			line.Available = p.IsActive && p.Stock >= it.Quantity
			if len(p.Images) > 0 {
				line.Image = p.Images[0].URL
			}
		}
		line.LineTotal = line.UnitPrice * int64(it.Quantity)

		v.Items = append(v.Items, line)
		v.ItemCount += it.Quantity
		v.Subtotal += line.LineTotal
		v.RequiresPrescription = v.RequiresPrescription || line.RequiresPrescription
	}
	v.ShippingFee = s.Pricing.Shipping(v.Subtotal)
	v.Total = v.Subtotal + v.ShippingFee
	return v
}

func (s *CartService) sellable(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
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
	if p.Stock == 0 {
		return nil, fmt.Errorf("%w: %s is out of stock", ErrInsufficientStock, p.Name)
	}
	return p, nil
}

// Add increases the quantity of a line, capped by available stock.
func (s *CartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*transport.CartView, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	p, err := s.sellable(ctx, productID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.Repo.GetCartItem(ctx, userID, productID); err == nil {
		quantity += existing.Quantity
	} else if err = notFound(err, "cart item"); !isNotFound(err) {
		return nil, err
	}

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: min(quantity, p.Stock)}
	if err := s.Repo.UpsertCartItem(ctx, item); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// SetQuantity overwrites the quantity of a line; zero removes it.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*transport.CartView, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be >= 0", ErrValidation)
	}
	if _, err := s.Repo.GetCartItem(ctx, userID, productID); err != nil {
		return nil, notFound(err, "cart item")
	}
	if quantity == 0 {
		return s.Remove(ctx, userID, productID)
	}

	p, err := s.sellable(ctx, productID)
	if err != nil {
		return nil, err
	}
	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: min(quantity, p.Stock)}
	if err := s.Repo.UpsertCartItem(ctx, item); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) (*transport.CartView, error) {
	if err := s.Repo.RemoveFromCart(ctx, userID, productID); err != nil {
		return nil, notFound(err, "cart item")
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.Repo.ClearCart(ctx, userID)
}
