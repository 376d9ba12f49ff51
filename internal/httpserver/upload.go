package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/service"
	"github.com/Skotchmaster/pharmacy/internal/transport"
	"github.com/Skotchmaster/pharmacy/internal/util"
)

type PrescriptionHTTP struct {
	Svc *service.PrescriptionService
}

func (h *PrescriptionHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "prescription.upload")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(l, "upload_prescription_failed", "file is required", err)
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(l, "upload_prescription_failed", "cannot read file", err)
	}
	defer f.Close()

	rx, err := h.Svc.Upload(ctx, userID, f, fh.Size, c.FormValue("notes"))
	if err != nil {
		return fail(l, "upload_prescription_failed", err, "cannot store prescription")
	}

	l.Info("upload_prescription_success", "prescription_id", rx.ID, "bytes", fh.Size)
	return c.JSON(http.StatusCreated, rx)
}

func (h *PrescriptionHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "prescription.list")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	p := pagination(c)
	total, items, err := h.Svc.List(ctx, userID, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_prescriptions_failed", err, "cannot list prescriptions")
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p.page, p.limit, total))
}

func (h *PrescriptionHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "prescription.get")

	userID, isAdmin, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, l, "get_prescription_failed", "id")
	if err != nil {
		return err
	}
	rx, err := h.Svc.Get(ctx, id, userID, isAdmin)
	if err != nil {
		return fail(l, "get_prescription_failed", err, "cannot get prescription")
	}
	return c.JSON(http.StatusOK, rx)
}

func (h *PrescriptionHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "prescription.delete")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, l, "delete_prescription_failed", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id, userID); err != nil {
		return fail(l, "delete_prescription_failed", err, "cannot delete prescription")
	}

	l.Info("delete_prescription_success", "prescription_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *PrescriptionHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "prescription.list_all")

	p := pagination(c)
	total, items, err := h.Svc.ListAll(ctx, c.QueryParam("status"), p.offset, p.limit)
	if err != nil {
		return fail(l, "list_all_prescriptions_failed", err, "cannot list prescriptions")
	}
	return c.JSON(http.StatusOK, util.NewPage(items, p.page, p.limit, total))
}

func (h *PrescriptionHTTP) Review(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "prescription.review")

	reviewerID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, l, "review_prescription_failed", "id")
	if err != nil {
		return err
	}
	var req transport.ReviewPrescriptionRequest
	if err := bind(c, l, "review_prescription_failed", &req); err != nil {
		return err
	}
	rx, err := h.Svc.Review(ctx, reviewerID, id, req.Status, req.Note)
	if err != nil {
		return fail(l, "review_prescription_failed", err, "cannot review prescription")
	}

	l.Info("review_prescription_success", "prescription_id", id, "rx_status", rx.Status)
	return c.JSON(http.StatusOK, rx)
}

type MediaHTTP struct {
	Svc *service.MediaService
}

func (h *MediaHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.upload")

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(l, "upload_image_failed", "file is required", err)
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(l, "upload_image_failed", "cannot read file", err)
	}
	defer f.Close()

	asset, err := h.Svc.UploadImage(ctx, f, fh.Size, c.FormValue("folder"))
	if err != nil {
		return fail(l, "upload_image_failed", err, "cannot upload image")
	}

	l.Info("upload_image_success", "public_id", asset.PublicID)
	return c.JSON(http.StatusCreated, asset)
}

func (h *MediaHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.delete")

	var req transport.DeleteUploadRequest
	if err := bind(c, l, "delete_image_failed", &req); err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, req.PublicID); err != nil {
		return fail(l, "delete_image_failed", err, "cannot delete image")
	}

	l.Info("delete_image_success", "public_id", req.PublicID)
	return c.NoContent(http.StatusNoContent)
}
