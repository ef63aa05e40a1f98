package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/dojo-booking/internal/dto"
	"github.com/Eursukkul/dojo-booking/internal/middleware"
	"github.com/Eursukkul/dojo-booking/internal/service"
)

const defaultSubmissionLimit = 50

type AdminHandler struct {
	svc service.AdminService
}

func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// RegisterRoutes mounts the admin console API. Everything except login sits
// behind AdminAuth; loginMW wraps the login route only.
func (h *AdminHandler) RegisterRoutes(e *echo.Echo, loginMW ...echo.MiddlewareFunc) {
	admin := e.Group("/api/v1/admin")
	admin.POST("/login", h.Login, loginMW...)

	auth := middleware.AdminAuth(h.svc)
	admin.POST("/logout", h.Logout, auth)
	admin.GET("/bookings", h.Overview, auth)
	admin.GET("/submissions", h.Submissions, auth)
	admin.POST("/blocks", h.Block, auth)
	admin.DELETE("/blocks", h.Unblock, auth)
}

func (h *AdminHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

func (h *AdminHandler) Logout(c echo.Context) error {
	sess := middleware.AdminSession(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, service.ErrUnauthorized.Error())
	}
	if err := h.svc.Logout(c.Request().Context(), sess.Token); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) Overview(c echo.Context) error {
	overview, err := h.svc.Overview(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, overview)
}

func (h *AdminHandler) Submissions(c echo.Context) error {
	limit := defaultSubmissionLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	subs, err := h.svc.Submissions(c.Request().Context(), limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, subs)
}

// Block blocks a single slot, or the whole date when no time is given.
func (h *AdminHandler) Block(c echo.Context) error {
	var req dto.BlockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	var err error
	if req.Time == "" {
		err = h.svc.BlockDate(ctx, req.Date)
	} else {
		err = h.svc.BlockSlot(ctx, req.Date, req.Time)
	}
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.StatusResponse{Status: "blocked"})
}

func (h *AdminHandler) Unblock(c echo.Context) error {
	var req dto.BlockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	var err error
	if req.Time == "" {
		err = h.svc.UnblockDate(ctx, req.Date)
	} else {
		err = h.svc.UnblockSlot(ctx, req.Date, req.Time)
	}
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.StatusResponse{Status: "unblocked"})
}
