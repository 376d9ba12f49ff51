package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/service"
	"github.com/Skotchmaster/pharmacy/internal/transport"
	"github.com/Skotchmaster/pharmacy/internal/util"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Me(ctx, userID)
	if err != nil {
		return fail(l, "get_me_failed", err, "cannot load profile")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_me")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.UpdateProfileRequest
	if err := bind(c, l, "update_profile_failed", &req); err != nil {
		return err
	}

	user, err := h.Svc.UpdateProfile(ctx, userID, req)
	if err != nil {
		return fail(l, "update_profile_failed", err, "cannot update profile")
	}

	l.Info("update_profile_success")
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.change_password")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.ChangePasswordRequest
	if err := bind(c, l, "change_password_failed", &req); err != nil {
		return err
	}

	if err := h.Svc.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(l, "change_password_failed", err, "cannot change password")
	}

	l.Info("change_password_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	p := pagination(c)
	total, users, err := h.Svc.List(ctx, c.QueryParam("q"), p.offset, p.limit)
	if err != nil {
		return fail(l, "list_users_failed", err, "cannot list users")
	}
	return c.JSON(http.StatusOK, util.NewPage(users, p.page, p.limit, total))
}

func (h *UserHTTP) SetRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.set_role")

	actorID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, l, "set_role_failed", "id")
	if err != nil {
		return err
	}
	var req transport.SetRoleRequest
	if err := bind(c, l, "set_role_failed", &req); err != nil {
		return err
	}

	user, err := h.Svc.SetRole(ctx, actorID, id, req.Role)
	if err != nil {
		return fail(l, "set_role_failed", err, "cannot change role")
	}

	l.Info("set_role_success", "target_id", id, "role", req.Role)
	return c.JSON(http.StatusOK, user)
}
