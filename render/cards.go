package render

import (
	"strings"

	"volmap/models"
)

// EmptyMessage replaces the card list when no organization matches.
const EmptyMessage = "No matching organizations found. Try adjusting your filters."

// Card is the list-view rendering of one organization.
type Card struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Subheading       string   `json:"subheading"`
	Website          string   `json:"website,omitempty"`
	VolunteerListing string   `json:"volunteer_listing,omitempty"`
	About            string   `json:"about"`
	Tags             []string `json:"tags"`
}

// Cards returns one card per row in table order.
func Cards(table *models.Table) []Card {
	records := table.Records()
	cards := make([]Card, 0, len(records))
	for _, o := range records {
		cards = append(cards, Card{
			ID:               o.ID,
			Name:             o.Organization,
			Subheading:       subheading(o),
			Website:          o.OrgURL,
			VolunteerListing: o.VolunteerListing,
			About:            o.About,
			Tags:             o.Tags(),
		})
	}
	return cards
}

// subheading is "city, county", dropping whichever part is missing.
func subheading(o *models.Organization) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{o.City, o.County} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
