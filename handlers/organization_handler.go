package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"volmap/filter"
	"volmap/middleware"
	"volmap/models"
	"volmap/render"
	"volmap/services"
	"volmap/utils/errors"
)

const defaultRadiusKm = 25

type OrganizationHandler struct {
	orgService *services.OrganizationService
	viewport   render.Viewport
}

type OrganizationsResponse struct {
	Organizations []*models.Organization `json:"organizations"`
	Count         int                    `json:"count"`
	Criteria      filter.Criteria        `json:"criteria"`
}

type MarkersResponse struct {
	Markers  []render.Marker `json:"markers"`
	Count    int             `json:"count"`
	Viewport render.Viewport `json:"viewport"`
}

type NearbyResponse struct {
	Organizations []services.NearbyOrganization `json:"organizations"`
	Count         int                           `json:"count"`
	Lat           float64                       `json:"lat"`
	Lon           float64                       `json:"lon"`
	RadiusKm      float64                       `json:"radius_km"`
}

func NewOrganizationHandler(orgService *services.OrganizationService, viewport render.Viewport) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService, viewport: viewport}
}

func (h *OrganizationHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	criteria := filter.FromQuery(r.URL.Query())
	result := h.orgService.Filter(criteria)
	writeJSON(w, OrganizationsResponse{
		Organizations: result.Records(),
		Count:         result.Len(),
		Criteria:      criteria,
	})
}

func (h *OrganizationHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgService.Get(mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, org)
}

func (h *OrganizationHandler) GetMarkers(w http.ResponseWriter, r *http.Request) {
	markers := render.Markers(h.orgService.Filter(filter.FromQuery(r.URL.Query())))
	writeJSON(w, MarkersResponse{Markers: markers, Count: len(markers), Viewport: h.viewport})
}

func (h *OrganizationHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"options":     h.orgService.Options(),
		"focus_areas": focusAreaLabels(),
	})
}

func (h *OrganizationHandler) GetNearbyOrganizations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	radius := float64(defaultRadiusKm)
	if raw := q.Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.WriteError(w, errors.ErrInvalidInput)
			return
		}
	}

	orgs, err := h.orgService.FindNearby(r.Context(), lat, lon, radius, filter.FromQuery(q))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, NearbyResponse{
		Organizations: orgs,
		Count:         len(orgs),
		Lat:           lat,
		Lon:           lon,
		RadiusKm:      radius,
	})
}

func (h *OrganizationHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "healthy", "records": h.orgService.Table().Len()})
}

func focusAreaLabels() []string {
	labels := make([]string, 0, len(models.FocusAreas))
	for _, f := range models.FocusAreas {
		labels = append(labels, f.Label)
	}
	return labels
}

// writeJSON encodes v before touching w so an encoding failure still gets
// an error response instead of an empty 200.
func writeJSON(w http.ResponseWriter, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		middleware.WriteError(w, errors.Wrap(err, "ENCODE_ERROR", "Failed to encode response", http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = buf.WriteTo(w)
}
