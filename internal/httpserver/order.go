package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/service"
	"github.com/Skotchmaster/pharmacy/internal/transport"
	"github.com/Skotchmaster/pharmacy/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CheckoutRequest
	if err := bind(c, l, "checkout_failed", &req); err != nil {
		return err
	}

	order, err := h.Svc.Checkout(ctx, userID, req)
	if err != nil {
		return fail(l, "checkout_failed", err, "cannot place order")
	}

	l.Info("checkout_success", "order_id", order.ID, "order_number", order.OrderNumber, "total", order.Total)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	p := pagination(c)
	total, orders, err := h.Svc.List(ctx, userID, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_orders_failed", err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, util.NewPage(orders, p.page, p.limit, total))
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, isAdmin, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, l, "get_order_failed", "id")
	if err != nil {
		return err
	}
	order, err := h.Svc.Get(ctx, id, userID, isAdmin)
	if err != nil {
		return fail(l, "get_order_failed", err, "cannot get order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, l, "cancel_order_failed", "id")
	if err != nil {
		return err
	}
	order, err := h.Svc.Cancel(ctx, id, userID)
	if err != nil {
		return fail(l, "cancel_order_failed", err, "cannot cancel order")
	}

	l.Info("cancel_order_success", "order_id", id)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	p := pagination(c)
	total, orders, err := h.Svc.ListAll(ctx, c.QueryParam("status"), p.offset, p.limit)
	if err != nil {
		return fail(l, "list_all_orders_failed", err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, util.NewPage(orders, p.page, p.limit, total))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := paramUUID(c, l, "update_order_status_failed", "id")
	if err != nil {
		return err
	}
	var req transport.OrderStatusRequest
	if err := bind(c, l, "update_order_status_failed", &req); err != nil {
		return err
	}
	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_order_status_failed", err, "cannot update order status")
	}

	l.Info("update_order_status_success", "order_id", id, "order_status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdatePayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_payment")

	id, err := paramUUID(c, l, "update_payment_failed", "id")
	if err != nil {
		return err
	}
	var req transport.PaymentStatusRequest
	if err := bind(c, l, "update_payment_failed", &req); err != nil {
		return err
	}
	order, err := h.Svc.UpdatePayment(ctx, id, req.PaymentStatus)
	if err != nil {
		return fail(l, "update_payment_failed", err, "cannot update payment status")
	}

	l.Info("update_payment_success", "order_id", id, "payment_status", order.PaymentStatus)
	return c.JSON(http.StatusOK, order)
}
