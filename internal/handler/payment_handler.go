package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/dojo-booking/internal/dto"
	"github.com/Eursukkul/dojo-booking/internal/service"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.POST("/api/v1/sessions/:id/checkout", h.CreateCheckout, mw...)
	e.POST("/api/v1/payments/webhook", h.Webhook)
}

func (h *PaymentHandler) CreateCheckout(c echo.Context) error {
	res, err := h.svc.CreateCheckout(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Webhook receives Stripe events. Anything other than a transport failure on
// our side is acknowledged with 200 so Stripe stops redelivering.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read request body")
	}

	outcome, err := h.svc.HandleWebhook(c.Request().Context(), payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.StatusResponse{Status: string(outcome)})
}
