package models

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Column names recognized in the source file. Matching is case-sensitive.
const (
	ColOrganization     = "Organization"
	ColAbout            = "About"
	ColRegion           = "Region"
	ColCounty           = "County"
	ColCity             = "City"
	ColLatitude         = "latitude"
	ColLongitude        = "longitude"
	ColOrgURL           = "OrgURL"
	ColVolunteerListing = "VolunteerListing"
	ColStewardship      = "Stewardship"
	ColEducation        = "Education"
	ColCitizenScience   = "Citizen Science"
)

// RequiredColumns must all be present in the header of a source file.
var RequiredColumns = []string{
	ColOrganization, ColAbout, ColRegion, ColCounty, ColCity,
	ColLatitude, ColLongitude, ColOrgURL, ColVolunteerListing,
	ColStewardship, ColEducation, ColCitizenScience,
}

// Flag is a tri-state focus-area value: a cell can be true, false or missing.
type Flag int8

const (
	FlagMissing Flag = iota
	FlagFalse
	FlagTrue
)

// IsTrue reports whether the flag is exactly true.
func (f Flag) IsTrue() bool { return f == FlagTrue }

func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case FlagTrue:
		return []byte("true"), nil
	case FlagFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch {
	case v == nil:
		*f = FlagMissing
	case *v:
		*f = FlagTrue
	default:
		*f = FlagFalse
	}
	return nil
}

// Organization is one row of the source table. Empty strings and nil
// coordinates stand for missing cells.
type Organization struct {
	ID               string   `json:"id"`
	Organization     string   `json:"organization,omitempty"`
	About            string   `json:"about,omitempty"`
	Region           string   `json:"region,omitempty"`
	County           string   `json:"county,omitempty"`
	City             string   `json:"city,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	OrgURL           string   `json:"org_url,omitempty"`
	VolunteerListing string   `json:"volunteer_listing_url,omitempty"`
	Stewardship      Flag     `json:"stewardship"`
	Education        Flag     `json:"education"`
	CitizenScience   Flag     `json:"citizen_science"`

	// Raw holds the source cells in header order; export writes them back verbatim.
	Raw []string `json:"-"`
}

// HasLocation reports whether both coordinates are present and finite.
func (o *Organization) HasLocation() bool {
	return finite(o.Latitude) && finite(o.Longitude)
}

func finite(f *float64) bool {
	return f != nil && !math.IsNaN(*f) && !math.IsInf(*f, 0)
}

// Location returns the record position as a GeoJSON point, or nil.
func (o *Organization) Location() *GeoPoint {
	if !o.HasLocation() {
		return nil
	}
	return &GeoPoint{Type: "Point", Coordinates: []float64{*o.Longitude, *o.Latitude}}
}

type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

var recordNamespace = uuid.MustParse("6f1c3c52-8d0e-4b8a-9f55-2f0b7f6c0a11")

// RecordID derives a stable ID from the row position and organization name,
// so reloading the same file yields the same IDs.
func RecordID(row int, name string) string {
	return uuid.NewSHA1(recordNamespace, []byte(fmt.Sprintf("%d:%s", row, name))).String()
}

// Bool returns the flag as a nullable bool for stores with a native boolean.
func (f Flag) Bool() *bool {
	if f == FlagMissing {
		return nil
	}
	b := f == FlagTrue
	return &b
}
