package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/pharmacy/pkg/middleware/auth"

	"github.com/Skotchmaster/pharmacy/internal/util"
)

// bind decodes and validates the request body.
func bind(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		return badRequest(l, event, "invalid body", err)
	}
	if err := c.Validate(req); err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "validation failed", "error", err)
		return err
	}
	return nil
}

func paramUUID(c echo.Context, l *slog.Logger, event, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, badRequest(l, event, name+" is not a uuid", err)
	}
	return id, nil
}

// currentUser reads the identity placed in the context by the JWT middleware.
func currentUser(c echo.Context) (uuid.UUID, bool, error) {
	raw, _ := c.Get(middleware.CtxUserID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	return id, role == middleware.RoleAdmin, nil
}

type pageParams struct {
	page, offset, limit int
}

func pagination(c echo.Context) pageParams {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	p, offset, limit := util.Calculate(page, size)
	return pageParams{page: p, offset: offset, limit: limit}
}

func queryInt64(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
