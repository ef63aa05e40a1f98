package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eursukkul/dojo-booking/internal/availability"
	"github.com/Eursukkul/dojo-booking/internal/dto"
	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/service"
)

func TestListServices(t *testing.T) {
	h := NewAvailabilityHandler(&mockSlotService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListServices(e.NewContext(req, rec)))

	var resp []dto.ServiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, len(models.Catalog))

	defaults := 0
	for _, s := range resp {
		if s.Default {
			defaults++
			assert.Equal(t, models.DefaultService, s.Name)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestGetDay(t *testing.T) {
	slots := &mockSlotService{
		dayFn: func(ctx context.Context, date string) (*service.DayAvailability, error) {
			return &service.DayAvailability{
				Date: date,
				Slots: []availability.Slot{
					{Time: "4:30 PM", Bookable: false, Reason: availability.ReasonBooked},
					{Time: "5:30 PM", Bookable: true},
				},
			}, nil
		},
	}
	h := NewAvailabilityHandler(slots)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability/2024-06-04", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("date")
	c.SetParamValues("2024-06-04")

	require.NoError(t, h.GetDay(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp service.DayAvailability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-06-04", resp.Date)
	require.Len(t, resp.Slots, 2)
	assert.False(t, resp.Slots[0].Bookable)
	assert.True(t, resp.Slots[1].Bookable)
}

func TestGetDay_InvalidDate(t *testing.T) {
	slots := &mockSlotService{
		dayFn: func(ctx context.Context, date string) (*service.DayAvailability, error) {
			return nil, &service.ValidationError{Field: "date", Message: "invalid date"}
		},
	}
	h := NewAvailabilityHandler(slots)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability/nope", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("date")
	c.SetParamValues("nope")

	he, ok := h.GetDay(c).(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
}

func TestGetMonth(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantYear  int
		wantMonth time.Month
		wantCode  int
	}{
		{name: "explicit month", query: "?month=2024-07", wantYear: 2024, wantMonth: time.July, wantCode: http.StatusOK},
		{name: "defaults to now", query: "", wantYear: 2024, wantMonth: time.June, wantCode: http.StatusOK},
		{name: "malformed", query: "?month=July", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotYear int
			var gotMonth time.Month
			slots := &mockSlotService{
				now: time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC),
				monthFn: func(ctx context.Context, year int, month time.Month) ([]availability.Day, error) {
					gotYear, gotMonth = year, month
					return []availability.Day{{Date: "2024-06-02", Status: availability.DayClosed}}, nil
				},
			}
			h := NewAvailabilityHandler(slots)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/availability"+tt.query, nil)
			rec := httptest.NewRecorder()
			err := h.GetMonth(e.NewContext(req, rec))

			if tt.wantCode != http.StatusOK {
				he, ok := err.(*echo.HTTPError)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, he.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, gotYear)
			assert.Equal(t, tt.wantMonth, gotMonth)
		})
	}
}
