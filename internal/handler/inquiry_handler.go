package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/dojo-booking/internal/dto"
	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/service"
)

type InquiryHandler struct {
	svc service.InquiryService
}

func NewInquiryHandler(svc service.InquiryService) *InquiryHandler {
	return &InquiryHandler{svc: svc}
}

func (h *InquiryHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.POST("/api/v1/inquiries", h.Send, mw...)
}

func (h *InquiryHandler) Send(c echo.Context) error {
	var inq models.Inquiry
	if err := c.Bind(&inq); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.svc.Send(c.Request().Context(), &inq); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusAccepted, dto.StatusResponse{Status: "sent"})
}
