package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/service"
	"github.com/Skotchmaster/pharmacy/internal/transport"
	"github.com/Skotchmaster/pharmacy/internal/util"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	q := transport.ProductQuery{
		Category: c.QueryParam("category"),
		Brand:    c.QueryParam("brand"),
		Q:        c.QueryParam("q"),
		Sort:     c.QueryParam("sort"),
	}
	var err error
	if q.MinPrice, err = queryInt64(c, "min_price"); err != nil {
		return badRequest(l, "list_products_failed", "min_price must be an integer", err)
	}
	if q.MaxPrice, err = queryInt64(c, "max_price"); err != nil {
		return badRequest(l, "list_products_failed", "max_price must be an integer", err)
	}
	if q.Rx, err = queryBool(c, "rx"); err != nil {
		return badRequest(l, "list_products_failed", "rx must be a boolean", err)
	}
	if raw := c.QueryParam("in_stock"); raw != "" {
		if q.InStock, err = strconv.ParseBool(raw); err != nil {
			return badRequest(l, "list_products_failed", "in_stock must be a boolean", err)
		}
	}

	p := pagination(c)
	total, items, err := h.Svc.List(ctx, q, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_products_failed", err, "cannot list products")
	}

	l.Info("list_products_success", "total", total)
	return c.JSON(http.StatusOK, util.NewPage(items, p.page, p.limit, total))
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	p := pagination(c)
	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), p.offset, p.limit)
	if err != nil {
		return fail(l, "search_products_failed", err, "cannot search products")
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p.page, p.limit, total))
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	p, err := h.Svc.Get(ctx, c.Param("id"), false)
	if err != nil {
		return fail(l, "get_product_failed", err, "cannot get product")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := bind(c, l, "create_product_failed", &req); err != nil {
		return err
	}
	p, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_product_failed", err, "cannot add product to db")
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := paramUUID(c, l, "patch_product_failed", "id")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := bind(c, l, "patch_product_failed", &req); err != nil {
		return err
	}
	p, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "patch_product_failed", err, "cannot update product")
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := paramUUID(c, l, "delete_product_failed", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_product_failed", err, "cannot delete product from db")
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.adjust_stock")

	id, err := paramUUID(c, l, "adjust_stock_failed", "id")
	if err != nil {
		return err
	}
	var req transport.AdjustStockRequest
	if err := bind(c, l, "adjust_stock_failed", &req); err != nil {
		return err
	}
	p, err := h.Svc.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		return fail(l, "adjust_stock_failed", err, "cannot adjust stock")
	}

	l.Info("adjust_stock_success", "product_id", id, "delta", req.Delta, "stock", p.Stock)
	return c.JSON(http.StatusOK, p)
}
