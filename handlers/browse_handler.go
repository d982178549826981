package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"volmap/filter"
	"volmap/middleware"
	"volmap/render"
	"volmap/services"
	"volmap/utils/errors"
)

// BrowseHandler serves the interactive page and the CSV export.
type BrowseHandler struct {
	orgService *services.OrganizationService
	renderer   *render.Renderer
	viewport   render.Viewport
	logger     *zap.Logger
}

func NewBrowseHandler(orgService *services.OrganizationService, renderer *render.Renderer, viewport render.Viewport, logger *zap.Logger) *BrowseHandler {
	return &BrowseHandler{
		orgService: orgService,
		renderer:   renderer,
		viewport:   viewport,
		logger:     logger,
	}
}

// Page renders the sidebar, result count and the selected view.
func (h *BrowseHandler) Page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := filter.FromQuery(q)
	result := h.orgService.Filter(criteria)

	exportURL := "/export"
	if enc := criteria.Query().Encode(); enc != "" {
		exportURL += "?" + enc
	}
	page := render.NewPage(render.PageInput{
		Result:    result,
		Criteria:  criteria,
		Options:   h.orgService.Options(),
		Mode:      render.ParseMode(q.Get("view")),
		Viewport:  h.viewport,
		ExportURL: exportURL,
	})

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page); err != nil {
		middleware.WriteError(w, errors.Wrap(err, "RENDER_ERROR", "Failed to render page", http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Export streams the filtered rows as filtered_organizations.csv.
func (h *BrowseHandler) Export(w http.ResponseWriter, r *http.Request) {
	result := h.orgService.Filter(filter.FromQuery(r.URL.Query()))

	var buf bytes.Buffer
	if err := render.WriteCSV(&buf, result); err != nil {
		middleware.WriteError(w, errors.Wrap(err, "EXPORT_ERROR", "Failed to export organizations", http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", render.ExportContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.ExportFileName))
	_, _ = buf.WriteTo(w)
	h.logger.Debug("Exported organizations", zap.Int("rows", result.Len()))
}
