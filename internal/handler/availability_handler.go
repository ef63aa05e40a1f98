package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/dojo-booking/internal/dto"
	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/service"
)

type AvailabilityHandler struct {
	slots service.SlotService
}

func NewAvailabilityHandler(slots service.SlotService) *AvailabilityHandler {
	return &AvailabilityHandler{slots: slots}
}

func (h *AvailabilityHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/services", h.ListServices)
	e.GET("/api/v1/availability", h.GetMonth)
	e.GET("/api/v1/availability/:date", h.GetDay)
}

func (h *AvailabilityHandler) ListServices(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.ToServiceResponses(models.Catalog))
}

func (h *AvailabilityHandler) GetDay(c echo.Context) error {
	day, err := h.slots.Day(c.Request().Context(), c.Param("date"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, day)
}

// GetMonth serves ?month=YYYY-MM, defaulting to the studio's current month.
func (h *AvailabilityHandler) GetMonth(c echo.Context) error {
	month := h.slots.Now()
	if m := c.QueryParam("month"); m != "" {
		parsed, err := time.Parse("2006-01", m)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "month must be YYYY-MM")
		}
		month = parsed
	}

	days, err := h.slots.Month(c.Request().Context(), month.Year(), month.Month())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, days)
}
