// AngelaMos | 2026
// handler.go

package activity

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/activities", func(r chi.Router) {
		r.Use(authenticator)

		r.Delete("/{activityID}", h.Delete)
	})
}

// JobRoutes serves a job's timeline. It expects to be mounted beneath a
// route that defines {jobID} and already authenticates.
func (h *Handler) JobRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListForJob(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "jobID"),
	)
	if err != nil {
		writeError(w, err, "job")
		return
	}

	core.OK(w, ToActivityResponseList(activities))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	a, err := h.service.Create(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "jobID"),
		req,
	)
	if err != nil {
		writeError(w, err, "job")
		return
	}

	core.Created(w, ToActivityResponse(a))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "activityID"),
	)
	if err != nil {
		writeError(w, err, "activity")
		return
	}

	core.NoContent(w)
}

func writeError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid activity")
	default:
		core.InternalServerError(w, err)
	}
}
