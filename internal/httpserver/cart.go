package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/service"
	"github.com/Skotchmaster/pharmacy/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	view, err := h.Svc.Get(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_failed", err, "cannot load cart")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.AddCartItemRequest
	if err := bind(c, l, "add_to_cart_failed", &req); err != nil {
		return err
	}
	view, err := h.Svc.Add(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart_failed", err, "cannot add item to cart")
	}

	l.Info("add_to_cart_success", "product_id", req.ProductID)
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	productID, err := paramUUID(c, l, "update_cart_failed", "productId")
	if err != nil {
		return err
	}
	var req transport.UpdateCartItemRequest
	if err := bind(c, l, "update_cart_failed", &req); err != nil {
		return err
	}
	view, err := h.Svc.SetQuantity(ctx, userID, productID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_failed", err, "cannot update cart")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	productID, err := paramUUID(c, l, "remove_from_cart_failed", "productId")
	if err != nil {
		return err
	}
	view, err := h.Svc.Remove(ctx, userID, productID)
	if err != nil {
		return fail(l, "remove_from_cart_failed", err, "cannot remove item from cart")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(l, "clear_cart_failed", err, "cannot clear cart")
	}
	return c.NoContent(http.StatusNoContent)
}

type WishlistHTTP struct {
	Svc *service.WishlistService
}

func (h *WishlistHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.list")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.List(ctx, userID)
	if err != nil {
		return fail(l, "list_wishlist_failed", err, "cannot load wishlist")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *WishlistHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.WishlistRequest
	if err := bind(c, l, "add_to_wishlist_failed", &req); err != nil {
		return err
	}
	items, err := h.Svc.Add(ctx, userID, req.ProductID)
	if err != nil {
		return fail(l, "add_to_wishlist_failed", err, "cannot add to wishlist")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *WishlistHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.remove")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	productID, err := paramUUID(c, l, "remove_from_wishlist_failed", "productId")
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(ctx, userID, productID); err != nil {
		return fail(l, "remove_from_wishlist_failed", err, "cannot remove from wishlist")
	}
	return c.NoContent(http.StatusNoContent)
}
