package models

// CatalogEntry is one bookable class offering.
type CatalogEntry struct {
	Name                string `json:"name"`
	PriceCents          int64  `json:"price_cents"`
	RequiresParticipant bool   `json:"requires_participant"`
}

const DefaultService = "Trial Lesson Special - $20"

var Catalog = []CatalogEntry{
	{Name: DefaultService, PriceCents: 2000},
	{Name: "Little Tigers (4-5 yrs)", RequiresParticipant: true},
	{Name: "Children's Class (6-12 yrs)", RequiresParticipant: true},
	{Name: "Adult Class (13+ yrs)"},
	{Name: "Family Class", RequiresParticipant: true},
}

func LookupService(name string) (CatalogEntry, bool) {
	for _, e := range Catalog {
		if e.Name == name {
			return e, true
		}
	}
	return CatalogEntry{}, false
}
