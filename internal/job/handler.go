// AngelaMos | 2026
// handler.go

package job

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

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

// RegisterRoutes mounts /jobs. exportGate guards the spreadsheet export and
// nested, when set, is mounted at /jobs/{jobID}/activities.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	exportGate func(http.Handler) http.Handler,
	nested func(chi.Router),
) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/stats", h.Stats)
		r.With(exportGate).Get("/export", h.Export)
		r.Get("/{jobID}", h.Get)
		r.Put("/{jobID}", h.Update)
		r.Delete("/{jobID}", h.Delete)
		r.Patch("/{jobID}/status", h.ChangeStatus)

		if nested != nil {
			r.Route("/{jobID}/activities", nested)
		}
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		PageParams: core.ParsePageParams(r),
		Search:     q.Get("search"),
		CompanyID:  q.Get("company_id"),
	}

	if raw := q.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			core.BadRequest(w, "unknown status "+strconv.Quote(raw))
			return
		}
		params.Status = status
	}

	jobs, total, err := h.service.List(
		r.Context(),
		middleware.GetUserID(r.Context()),
		params,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToJobResponseList(jobs), params.Page, params.PageSize, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	j, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToJobResponse(j))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.service.Get(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "jobID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToJobResponse(j))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	j, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "jobID"),
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToJobResponse(j))
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	j, err := h.service.ChangeStatus(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "jobID"),
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToJobResponse(j))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "jobID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Export(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", exportContentType)
	w.Header().Set("Content-Disposition",
		`attachment; filename="`+exportFilename(time.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "job")
	case errors.Is(err, core.ErrConflict):
		core.Conflict(w, "job was changed by another request")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid job data")
	default:
		core.InternalServerError(w, err)
	}
}
