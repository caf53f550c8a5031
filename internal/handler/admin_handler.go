package handler

import (
	"encoding/json"
	"net/http"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/service"

	"github.com/go-chi/chi/v5"
)

// AdminHandler expone el mantenimiento de los artifacts del recomendador.
type AdminHandler struct {
	svc *service.RecommendService
}

func NewAdminHandler(s *service.RecommendService) *AdminHandler {
	return &AdminHandler{svc: s}
}

// MountAdminRoutes cuelga las rutas de mantenimiento bajo /admin/recommender.
func MountAdminRoutes(r chi.Router, h *AdminHandler) {
	r.Route("/admin/recommender", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Post("/rebuild", h.Rebuild)
	})
}

// @Summary Estado de los recomendadores y sus artifacts
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.RecommenderStatus
// @Router /admin/recommender/status [get]
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.svc.Status())
}

// @Summary Refit completo + reescritura de artifacts
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.RecommenderStatus
// @Router /admin/recommender/rebuild [post]
func (h *AdminHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	st, err := h.svc.Rebuild(r.Context())
	if err != nil {
		writeCoreError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(st)
}
