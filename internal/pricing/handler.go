// AngelaMos | 2026
// handler.go

package pricing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/pricing", h.ListTiers)
}

func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	core.OKWithMessage(w, "pricing tiers", GetAllPricingTiers())
}
