// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"io"
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

// RegisterRoutes mounts /auth. credentialLimit guards the endpoints that
// accept passwords or refresh tokens.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	credentialLimit func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.With(credentialLimit).Post("/login", h.Login)
		r.With(credentialLimit).Post("/register", h.Register)
		r.With(credentialLimit).Post("/refresh", h.Refresh)

		r.With(authenticator).Get("/me", h.GetMe)
		r.With(authenticator).Post("/logout", h.Logout)
		r.With(authenticator).Post("/logout-all", h.LogoutAll)
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req, clientOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req, clientOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	core.Created(w, resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken, clientOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, resp)
}

// Logout accepts an empty body; the refresh token is optional.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		core.BadRequest(w, "invalid request body")
		return
	}

	claims := middleware.GetClaims(r.Context())
	if err := h.service.Logout(r.Context(), claims, req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}
	core.NoContent(w)
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.LogoutAll(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	core.NoContent(w)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	me, err := h.service.GetCurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	core.OK(w, me)
}

func clientOf(r *http.Request) Client {
	return Client{UserAgent: r.UserAgent(), IP: middleware.ClientIP(r)}
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

var errorResponses = []struct {
	target error
	resp   func() *core.AppError
}{
	{ErrInvalidCredentials, func() *core.AppError {
		return core.UnauthorizedError("invalid email or password")
	}},
	{ErrEmailExists, func() *core.AppError {
		return core.ConflictError("email already registered")
	}},
	{ErrTokenReuse, func() *core.AppError {
		return core.NewAppError(http.StatusUnauthorized, "TOKEN_REUSE_DETECTED",
			"token reuse detected, all sessions revoked")
	}},
	{core.ErrTokenExpired, core.TokenExpiredError},
	{core.ErrTokenRevoked, core.TokenRevokedError},
	{core.ErrTokenInvalid, core.TokenInvalidError},
	{core.ErrForbidden, func() *core.AppError {
		return core.ForbiddenError("cannot revoke another user's token")
	}},
	{core.ErrUnauthorized, func() *core.AppError {
		return core.UnauthorizedError("authentication required")
	}},
	{core.ErrNotFound, func() *core.AppError {
		return core.NotFoundError("user")
	}},
}

func writeError(w http.ResponseWriter, err error) {
	for _, e := range errorResponses {
		if errors.Is(err, e.target) {
			core.JSONError(w, e.resp())
			return
		}
	}
	core.InternalServerError(w, err)
}
