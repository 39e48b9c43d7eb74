// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the self-service account endpoints.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Route("/users/me", func(r chi.Router) {
		r.Get("/", h.GetMe)
		r.Put("/", h.UpdateMe)
		r.Delete("/", h.DeleteMe)
	})
}

// RegisterAdminRoutes mounts account management for administrators.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/", h.List)
		r.Get("/{userID}", h.Get)
		r.Put("/{userID}", h.Update)
		r.Put("/{userID}/role", h.UpdateRole)
		r.Delete("/{userID}", h.Delete)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	h.rename(w, r, middleware.GetUserID(r.Context()))
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	core.NoContent(w)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		PageParams: core.ParsePageParams(r),
		Search:     q.Get("search"),
		Role:       q.Get("role"),
	}

	users, total, err := h.service.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	core.Paginated(w, ToUserResponseList(users), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.rename(w, r, chi.URLParam(r, "userID"))
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.SetRole(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "userID"),
		req.Role,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Remove(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	core.NoContent(w)
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request, id string) {
	var req UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.Rename(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "insufficient permissions")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid user data")
	default:
		core.InternalServerError(w, err)
	}
}
