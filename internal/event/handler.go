// AngelaMos | 2026
// handler.go

package event

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

// RegisterRoutes mounts /events. Every route sits behind calendarGate.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	calendarGate func(http.Handler) http.Handler,
) {
	r.Route("/events", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(calendarGate)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{eventID}", h.Get)
		r.Put("/{eventID}", h.Update)
		r.Delete("/{eventID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	events, total, err := h.service.List(
		r.Context(),
		middleware.GetUserID(r.Context()),
		params,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToEventResponseList(events), params.Page, params.PageSize, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	e, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToEventResponse(e))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "eventID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToEventResponse(e))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	e, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "eventID"),
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToEventResponse(e))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "eventID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func parseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	params := ListParams{
		PageParams: core.ParsePageParams(r),
		JobID:      q.Get("job_id"),
	}

	var err error
	if params.From, err = parseTime(q.Get("from")); err != nil {
		return params, errors.New("from must be an RFC 3339 timestamp")
	}
	if params.To, err = parseTime(q.Get("to")); err != nil {
		return params, errors.New("to must be an RFC 3339 timestamp")
	}

	if raw := q.Get("type"); raw != "" {
		t, err := ParseType(raw)
		if err != nil {
			return params, errors.New("unknown event type")
		}
		params.Type = t
	}

	if raw := q.Get("completed"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return params, errors.New("completed must be true or false")
		}
		params.Completed = &done
	}

	return params, nil
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "event")
	default:
		core.InternalServerError(w, err)
	}
}
