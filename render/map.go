// Package render turns a filtered organization table into the map view,
// the card view, the HTML page that hosts them, and the CSV export.
package render

import (
	"bytes"
	"html/template"

	"volmap/models"
)

type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Viewport is the fixed initial map position. The map is centered and
// zoomed first, then fitted to the SouthWest/NorthEast bounds.
type Viewport struct {
	Center    LatLng `json:"center" yaml:"center"`
	Zoom      int    `json:"zoom" yaml:"zoom"`
	SouthWest LatLng `json:"south_west" yaml:"south_west"`
	NorthEast LatLng `json:"north_east" yaml:"north_east"`
}

// DefaultViewport frames the state of Wisconsin.
var DefaultViewport = Viewport{
	Center:    LatLng{Lat: 44.5, Lng: -89.5},
	Zoom:      7,
	SouthWest: LatLng{Lat: 42.49, Lng: -92.89},
	NorthEast: LatLng{Lat: 47.31, Lng: -86.25},
}

const (
	markerIcon      = "leaf"
	markerIconColor = "darkgreen"
	popupMaxWidth   = 250
)

// Marker is one pin on the map.
type Marker struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	URL       string  `json:"url"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Popup     string  `json:"popup"`
	Icon      string  `json:"icon"`
	IconColor string  `json:"icon_color"`
	MaxWidth  int     `json:"max_width"`
}

var popupTmpl = template.Must(template.New("popup").Parse(
	`<div style="font-size: 14px;"><b>{{.Organization}}</b><br><i>{{.City}}</i><br><a href="{{.OrgURL}}" target="_blank">Visit Website</a></div>`))

// Mappable reports whether o has every field a marker needs.
func Mappable(o *models.Organization) bool {
	return o.HasLocation() && o.Organization != "" && o.City != "" && o.OrgURL != ""
}

// Markers returns one marker per mappable row, in table order.
func Markers(table *models.Table) []Marker {
	markers := []Marker{}
	for _, o := range table.Records() {
		if !Mappable(o) {
			continue
		}
		markers = append(markers, Marker{
			ID:        o.ID,
			Name:      o.Organization,
			City:      o.City,
			URL:       o.OrgURL,
			Lat:       *o.Latitude,
			Lng:       *o.Longitude,
			Popup:     PopupHTML(o),
			Icon:      markerIcon,
			IconColor: markerIconColor,
			MaxWidth:  popupMaxWidth,
		})
	}
	return markers
}

// PopupHTML renders the escaped popup body for o.
func PopupHTML(o *models.Organization) string {
	var buf bytes.Buffer
	if err := popupTmpl.Execute(&buf, o); err != nil {
		return template.HTMLEscapeString(o.Organization)
	}
	return buf.String()
}
