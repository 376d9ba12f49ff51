package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/service"
	"github.com/Skotchmaster/pharmacy/internal/transport"
	"github.com/Skotchmaster/pharmacy/internal/util"
)

type BrandHTTP struct {
	Svc *service.BrandService
}

func (h *BrandHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "brand.list")

	active, err := queryBool(c, "active")
	if err != nil {
		return badRequest(l, "list_brands_failed", "active must be a boolean", err)
	}
	p := pagination(c)
	total, brands, err := h.Svc.List(ctx, c.QueryParam("q"), active, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_brands_failed", err, "cannot list brands")
	}
	return c.JSON(http.StatusOK, util.NewPage(brands, p.page, p.limit, total))
}

func (h *BrandHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "brand.get")

	b, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_brand_failed", err, "cannot get brand")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BrandHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "brand.create")

	var req transport.CreateBrandRequest
	if err := bind(c, l, "create_brand_failed", &req); err != nil {
		return err
	}
	b, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_brand_failed", err, "cannot create brand")
	}

	l.Info("create_brand_success", "brand_id", b.ID)
	return c.JSON(http.StatusCreated, b)
}

func (h *BrandHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "brand.patch")

	id, err := paramUUID(c, l, "patch_brand_failed", "id")
	if err != nil {
		return err
	}
	var req transport.PatchBrandRequest
	if err := bind(c, l, "patch_brand_failed", &req); err != nil {
		return err
	}
	b, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "patch_brand_failed", err, "cannot update brand")
	}

	l.Info("patch_brand_success", "brand_id", id)
	return c.JSON(http.StatusOK, b)
}

func (h *BrandHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "brand.delete")

	id, err := paramUUID(c, l, "delete_brand_failed", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_brand_failed", err, "cannot delete brand")
	}

	l.Info("delete_brand_success", "brand_id", id)
	return c.NoContent(http.StatusNoContent)
}

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	f := repo.CategoryFilter{ActiveOnly: true}
	if raw := c.QueryParam("parent_id"); raw != "" {
		if raw == "root" {
			f.RootsOnly = true
		} else {
			id, err := uuid.Parse(raw)
			if err != nil {
				return badRequest(l, "list_categories_failed", "parent_id is not a uuid", err)
			}
			f.ParentID = &id
		}
	}
	if raw := c.QueryParam("level"); raw != "" {
		lvl, err := strconv.Atoi(raw)
		if err != nil || lvl < 1 || lvl > 3 {
			return badRequest(l, "list_categories_failed", "level must be 1, 2 or 3", err)
		}
		f.Level = lvl
	}

	items, err := h.Svc.List(ctx, f)
	if err != nil {
		return fail(l, "list_categories_failed", err, "cannot list categories")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *CategoryHTTP) Tree(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.tree")

	tree, err := h.Svc.Tree(ctx, true)
	if err != nil {
		return fail(l, "category_tree_failed", err, "cannot build category tree")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": tree})
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	cat, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_category_failed", err, "cannot get category")
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CreateCategoryRequest
	if err := bind(c, l, "create_category_failed", &req); err != nil {
		return err
	}
	cat, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_category_failed", err, "cannot create category")
	}

	l.Info("create_category_success", "category_id", cat.ID, "level", cat.Level)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.patch")

	id, err := paramUUID(c, l, "patch_category_failed", "id")
	if err != nil {
		return err
	}
	var req transport.PatchCategoryRequest
	if err := bind(c, l, "patch_category_failed", &req); err != nil {
		return err
	}
	cat, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "patch_category_failed", err, "cannot update category")
	}

	l.Info("patch_category_success", "category_id", id)
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := paramUUID(c, l, "delete_category_failed", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_category_failed", err, "cannot delete category")
	}

	l.Info("delete_category_success", "category_id", id)
	return c.NoContent(http.StatusNoContent)
}
