package dto

import (
	"time"

	"github.com/Eursukkul/dojo-booking/internal/models"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ServiceResponse struct {
	Name                string `json:"name"`
	PriceCents          int64  `json:"price_cents"`
	RequiresParticipant bool   `json:"requires_participant"`
	Default             bool   `json:"default"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func ToServiceResponses(entries []models.CatalogEntry) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ServiceResponse{
			Name:                e.Name,
			PriceCents:          e.PriceCents,
			RequiresParticipant: e.RequiresParticipant,
			Default:             e.Name == models.DefaultService,
		})
	}
	return out
}
