package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"volmap/middleware"
	"volmap/render"
	"volmap/services"
)

// RouterConfig carries what the routes need besides the service.
type RouterConfig struct {
	AllowedOrigins []string
	Viewport       render.Viewport
	Logger         *zap.Logger
}

// NewRouter wires the page, the export and the JSON API onto one router.
func NewRouter(orgService *services.OrganizationService, renderer *render.Renderer, cfg RouterConfig) *mux.Router {
	browseHandler := NewBrowseHandler(orgService, renderer, cfg.Viewport, cfg.Logger)
	orgHandler := NewOrganizationHandler(orgService, cfg.Viewport)

	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.LoggingMiddleware(cfg.Logger))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.HandleFunc("/", browseHandler.Page).Methods(http.MethodGet)
	r.HandleFunc("/export", browseHandler.Export).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/healthz", orgHandler.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/organizations", orgHandler.ListOrganizations).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/organizations/{id}", orgHandler.GetOrganization).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/markers", orgHandler.GetMarkers).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/filters", orgHandler.GetFilterOptions).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/nearby", orgHandler.GetNearbyOrganizations).Methods(http.MethodGet, http.MethodOptions)

	return r
}
