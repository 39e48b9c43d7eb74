// AngelaMos | 2026
// handler.go

package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/middleware"
	"github.com/carterperez-dev/jobtracker/internal/pricing"
	"github.com/carterperez-dev/jobtracker/internal/usage"
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
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/subscription", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetSubscription)
		r.With(adminOnly).Post("/", h.UpdateSubscription)
		r.Post("/cancel", h.Cancel)
		r.Post("/check", h.Check)
		r.Get("/usage", h.GetUsage)
		r.Post("/usage", h.RecordUsage)
	})
}

func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	overview, err := h.service.GetSubscriptionWithUsage(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToOverviewResponse(overview))
}

// UpdateSubscription lets an admin assign any tier to any user.
func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	tier, err := pricing.ParseTier(req.Tier)
	if err != nil {
		core.BadRequest(w, "Invalid tier")
		return
	}

	sub, err := h.service.CreateOrUpdateSubscription(r.Context(), req.UserID, tier, Options{
		PaymentMethod:  PaymentMethod(req.PaymentMethod),
		DurationMonths: req.DurationMonths,
		AdminNotes:     req.AdminNotes,
		CreatedBy:      middleware.GetUserID(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid subscription duration or payment method")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OKWithMessage(w, "subscription updated", ToSubscriptionResponse(sub))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sub, err := h.service.CancelToFree(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "subscription")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKWithMessage(w, "subscription cancelled", ToSubscriptionResponse(sub))
}

// Check answers a gating question without recording anything. Denials are
// a normal 200 response carrying the reason.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	action, err := ParseAction(req.Action)
	if err != nil {
		core.BadRequest(w, "Invalid action")
		return
	}

	result, err := h.service.Check(r.Context(), middleware.GetUserID(r.Context()), action)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, result)
}

func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetUsage(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUsageResponse(stats))
}

func (h *Handler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	var req RecordUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	userID := middleware.GetUserID(r.Context())

	var (
		stats *usage.UsageStats
		err   error
	)
	switch req.Type {
	case UsageTypeJob:
		stats, err = h.service.RecordJobCreation(r.Context(), userID, req.Count)
	case UsageTypeChat:
		stats, err = h.consumeChat(r.Context(), userID, req.Count)
	default:
		core.BadRequest(w, "Invalid usage type")
		return
	}
	if appErr, ok := core.AsAppError(err); ok {
		core.JSONError(w, appErr)
		return
	}
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "count must not be negative")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKWithMessage(w, "usage recorded", ToUsageResponse(stats))
}

// consumeChat counts chat messages only when the plan allows all of them.
func (h *Handler) consumeChat(
	ctx context.Context,
	userID string,
	count int,
) (*usage.UsageStats, error) {
	result, err := h.service.ConsumeChatMessage(ctx, userID, count)
	if err != nil {
		return nil, err
	}
	if !result.Allowed {
		return nil, core.QuotaExceededError(result.Reason)
	}
	return h.service.GetUsage(ctx, userID)
}

// RequireFeature returns middleware that rejects requests from users whose
// plan lacks feature.
func RequireFeature(
	service *Service,
	feature pricing.Feature,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := service.CanUseFeature(
				r.Context(),
				middleware.GetUserID(r.Context()),
				feature,
			)
			if err != nil {
				core.InternalServerError(w, err)
				return
			}

			if !result.Allowed {
				core.JSONError(w, core.QuotaExceededError(result.Reason))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
