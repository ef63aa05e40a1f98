package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/dojo-booking/internal/dto"
	"github.com/Eursukkul/dojo-booking/internal/service"
)

// toHTTPError maps service errors onto HTTP statuses. Anything unrecognised
// is returned as is and rendered as a 500 by the error handler.
func toHTTPError(err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, dto.ErrorResponse{Message: verr.Message, Field: verr.Field})
	case errors.Is(err, service.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, service.ErrSessionNotFound.Error())
	case errors.Is(err, service.ErrSessionLocked),
		errors.Is(err, service.ErrDuplicateSubmission),
		errors.Is(err, service.ErrNotFinalStep),
		errors.Is(err, service.ErrAlreadyBlocked):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPaymentNotRequired), errors.Is(err, service.ErrInvalidWebhook):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrPaymentsDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrRemoteUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, service.ErrRemoteUnavailable.Error()).SetInternal(err)
	default:
		return err
	}
}
