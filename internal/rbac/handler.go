package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caveat-labs/caveat/internal/platform/httpx"
	"github.com/caveat-labs/caveat/internal/roles"
	"github.com/caveat-labs/caveat/internal/shared"
)

// Handler exposes permission resolution over HTTP for SPA consumers.
type Handler struct {
	logger *slog.Logger
	gate   *Gate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, gate *Gate) *Handler {
	return &Handler{logger: logger, gate: gate}
}

// MountRoutes registers authorization routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me/permissions", h.myPermissions)
	r.Post("/authz/check", h.check)
}

type permissionsResponse struct {
	Role        *string  `json:"role"`
	DisplayName string   `json:"display_name,omitempty"`
	Permissions []string `json:"permissions"`
	IsAdmin     bool     `json:"is_admin"`
	CanManage   struct {
		Users    bool `json:"users"`
		Disputes bool `json:"disputes"`
		Content  bool `json:"content"`
	} `json:"can_manage"`
}

func (h *Handler) myPermissions(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal.Anonymous() {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	role, err := h.gate.Role(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Warn("resolve permissions", slog.Any("error", err))
		w.Header().Set("Retry-After", "1")
		httpx.Problem(w, http.StatusServiceUnavailable, "Authorization Unavailable", "role lookup failed, retry shortly")
		return
	}

	resp := permissionsResponse{Permissions: []string{}}
	if role != nil {
		tag := string(role.Tag)
		resp.Role = &tag
		resp.DisplayName = role.DisplayName
		resp.Permissions = role.Permissions
	}
	resp.IsAdmin = IsAdmin(role)
	resp.CanManage.Users = CanManageUsers(role)
	resp.CanManage.Disputes = CanManageDisputes(role)
	resp.CanManage.Content = CanModerateContent(role)
	httpx.JSON(w, http.StatusOK, resp)
}

type checkRequest struct {
	Permission string   `json:"permission"`
	AnyOf      []string `json:"any_of"`
	AllOf      []string `json:"all_of"`
	Role       string   `json:"role"`
}

type checkResponse struct {
	Decision string `json:"decision"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal.Anonymous() {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req checkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	decision, err := h.gate.Evaluate(r.Context(), principal.UserID, Requirement{
		Permission: req.Permission,
		AnyOf:      req.AnyOf,
		AllOf:      req.AllOf,
		Role:       roles.Tag(req.Role),
	})
	if err != nil {
		h.logger.Warn("gate check", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, checkResponse{Decision: decision.String()})
}
