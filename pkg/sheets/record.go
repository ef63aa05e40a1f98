package sheets

import (
	"fmt"
	"strings"

	"github.com/Eursukkul/dojo-booking/internal/models"
	"github.com/Eursukkul/dojo-booking/internal/schedule"
)

// Spreadsheet column headers drift between deployments; each field accepts
// every spelling seen in the sheet.
var aliases = map[string][]string{
	"service":         {"service", "Service"},
	"date":            {"date", "Date"},
	"time":            {"time", "Time"},
	"name":            {"name", "Name"},
	"email":           {"email", "Email"},
	"phone":           {"phone", "Phone"},
	"participantName": {"participantName", "Participant Name", "participant_name"},
	"participantAge":  {"participantAge", "Participant Age", "participant_age"},
	"notes":           {"notes", "Notes"},
	"paymentMethod":   {"paymentMethod", "Payment Method", "payment_method"},
}

func field(row map[string]any, name string) string {
	for _, key := range aliases[name] {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s != "" {
			return s
		}
	}
	return ""
}

// recordFromRow maps a raw sheet row onto a canonical record. Rows whose
// date cannot be read are rejected.
func recordFromRow(row map[string]any) (models.BookingRequest, bool) {
	rawDate := field(row, "date")
	if len(rawDate) >= len(schedule.DateLayout) {
		rawDate = rawDate[:len(schedule.DateLayout)]
	}
	d, err := schedule.ParseDate(rawDate)
	if err != nil {
		return models.BookingRequest{}, false
	}

	return models.BookingRequest{
		Service:         field(row, "service"),
		Date:            d.String(),
		Time:            schedule.Normalize(field(row, "time")),
		Name:            field(row, "name"),
		Email:           field(row, "email"),
		Phone:           field(row, "phone"),
		ParticipantName: field(row, "participantName"),
		ParticipantAge:  field(row, "participantAge"),
		Notes:           field(row, "notes"),
		PaymentMethod:   models.PaymentMethod(field(row, "paymentMethod")),
	}, true
}
