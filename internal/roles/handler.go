package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caveat-labs/caveat/internal/platform/httpx"
)

// Handler serves the role catalog over HTTP.
type Handler struct {
	logger  *slog.Logger
	catalog *Catalog
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, catalog *Catalog) *Handler {
	return &Handler{logger: logger, catalog: catalog}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listRoles)
	r.Get("/admin", h.listAdminRoles)
}

type roleResponse struct {
	Tag         string   `json:"tag"`
	DisplayName string   `json:"display_name"`
	Color       string   `json:"color"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, toResponses(h.catalog.All()))
}

func (h *Handler) listAdminRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, toResponses(h.catalog.AdminRoles()))
}

func toResponses(defs []Role) []roleResponse {
	out := make([]roleResponse, len(defs))
	for i, def := range defs {
		out[i] = roleResponse{
			Tag:         string(def.Tag),
			DisplayName: def.DisplayName,
			Color:       def.Color,
			Permissions: def.Permissions,
		}
	}
	return out
}
