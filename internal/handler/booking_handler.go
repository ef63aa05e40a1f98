package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/dojo-booking/internal/dto"
	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/service"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// RegisterRoutes mounts the booking wizard. mw wraps the session-creating
// and submitting routes.
func (h *BookingHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	sessions := e.Group("/api/v1/sessions")
	sessions.POST("", h.StartSession, mw...)
	sessions.GET("/:id", h.GetSession)
	sessions.DELETE("/:id", h.CloseSession)
	sessions.PUT("/:id/service", h.SelectService)
	sessions.PUT("/:id/schedule", h.SelectSchedule)
	sessions.PUT("/:id/contact", h.UpdateContact)
	sessions.PUT("/:id/payment", h.SelectPayment)
	sessions.POST("/:id/next", h.Next)
	sessions.POST("/:id/back", h.Back)
	sessions.POST("/:id/submit", h.Submit, mw...)
}

func (h *BookingHandler) StartSession(c echo.Context) error {
	view, err := h.svc.Start(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *BookingHandler) GetSession(c echo.Context) error {
	view, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *BookingHandler) CloseSession(c echo.Context) error {
	if err := h.svc.Close(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) SelectService(c echo.Context) error {
	var req dto.SelectServiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.respond(c)(h.svc.SelectService(c.Request().Context(), c.Param("id"), req.Service))
}

func (h *BookingHandler) SelectSchedule(c echo.Context) error {
	var req dto.SelectScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.respond(c)(h.svc.SelectSchedule(c.Request().Context(), c.Param("id"), req.Date, req.Time))
}

func (h *BookingHandler) UpdateContact(c echo.Context) error {
	var req dto.ContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	in := service.ContactInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ParticipantName: req.ParticipantName,
		ParticipantAge:  req.ParticipantAge,
		Notes:           req.Notes,
	}
	return h.respond(c)(h.svc.UpdateContact(c.Request().Context(), c.Param("id"), in))
}

func (h *BookingHandler) SelectPayment(c echo.Context) error {
	var req dto.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.respond(c)(h.svc.SelectPayment(c.Request().Context(), c.Param("id"), req.PaymentMethod))
}

func (h *BookingHandler) Next(c echo.Context) error {
	return h.respond(c)(h.svc.Next(c.Request().Context(), c.Param("id")))
}

func (h *BookingHandler) Back(c echo.Context) error {
	return h.respond(c)(h.svc.Back(c.Request().Context(), c.Param("id")))
}

func (h *BookingHandler) Submit(c echo.Context) error {
	return h.respond(c)(h.svc.Submit(c.Request().Context(), c.Param("id"), models.TriggerManual))
}

func (h *BookingHandler) respond(c echo.Context) func(*service.SessionView, error) error {
	return func(view *service.SessionView, err error) error {
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(http.StatusOK, view)
	}
}
