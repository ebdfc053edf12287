package profiles

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/caveat-labs/caveat/internal/platform/httpx"
	"github.com/caveat-labs/caveat/internal/rbac"
	"github.com/caveat-labs/caveat/internal/roles"
	"github.com/caveat-labs/caveat/internal/shared"
)

// Handler manages profile administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(shared.PermViewUsers, shared.PermManageUsers))
		r.Get("/", h.listProfiles)
		r.Get("/{userID}", h.getProfile)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll(shared.PermManageRoles))
		r.Put("/{userID}/role", h.changeRole)
	})
}

type profileResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      *string   `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toProfileResponse(p Profile) profileResponse {
	resp := profileResponse{
		UserID:    p.UserID.String(),
		Email:     p.Email,
		FullName:  p.FullName,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if tag, ok := RoleTagOf(p); ok {
		resp.Role = &tag
	}
	return resp
}

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	list, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list profiles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]profileResponse, len(list))
	for i, p := range list {
		out[i] = toProfileResponse(p)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	p, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProfileResponse(p))
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,lowercase"`
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req changeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	actor := shared.PrincipalFromContext(r.Context())
	if actor.Anonymous() {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	err = h.service.ChangeRole(r.Context(), actor.UserID, userID, roles.Tag(req.Role))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, shared.ErrUnknownRole), errors.Is(err, ErrEndUserRole):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Role", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	default:
		h.logger.Error("change role", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
