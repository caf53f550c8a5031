package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/recommender"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type RecommendHandler struct {
	svc *service.RecommendService
}

func NewRecommendHandler(s *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{svc: s}
}

// writeCoreError mapea los errores del core al status correcto.
func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommender.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, recommender.ErrData):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		// ErrState y cualquier otra cosa es bug de integración
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// @Summary Recomendaciones por contenido (overviews parecidos)
// @Tags recommend
// @Produce json
// @Param title query string true "título exacto de la película"
// @Param n query int false "cantidad de recomendaciones (máx 50)"
// @Success 200 {object} models.RecommendationResponse
// @Router /recommendations/content [get]
func (h *RecommendHandler) GetContentRecommendations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	title := r.URL.Query().Get("title")
	if title == "" {
		http.Error(w, "title es requerido", http.StatusBadRequest)
		return
	}
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))

	resp, err := h.svc.ContentRecommend(r.Context(), title, n)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	if resp.Reason != "" {
		w.WriteHeader(http.StatusNotFound)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// @Summary Recomendaciones colaborativas para un usuario
// @Tags recommend
// @Produce json
// @Param id path int true "userId"
// @Param k query int false "cantidad de recomendaciones (máx 50)"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} models.RecommendationResponse
// @Router /users/{id}/recommendations [get]
func (h *RecommendHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	k, _ := strconv.Atoi(r.URL.Query().Get("k"))
	refresh := r.URL.Query().Get("refresh") == "true"

	resp, err := h.svc.UserRecommend(r.Context(), service.RecRequest{
		UserID:  userID,
		K:       k,
		Refresh: refresh,
	})
	if err != nil {
		writeCoreError(w, err)
		return
	}
	if resp.Reason != "" {
		w.WriteHeader(http.StatusNotFound)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// @Summary Recomendaciones del usuario autenticado
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param k query int false "cantidad de recomendaciones"
// @Success 200 {object} models.RecommendationResponse
// @Router /me/recommendations [get]
func (h *RecommendHandler) GetMyRecommendations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := UserIDFromContext(r.Context())
	k, _ := strconv.Atoi(r.URL.Query().Get("k"))
	refresh := r.URL.Query().Get("refresh") == "true"

	resp, err := h.svc.UserRecommend(r.Context(), service.RecRequest{
		UserID:  userID,
		K:       k,
		Refresh: refresh,
	})
	if err != nil {
		writeCoreError(w, err)
		return
	}
	if resp.Reason != "" {
		w.WriteHeader(http.StatusNotFound)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// @Summary Historial de recomendaciones del usuario autenticado
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param limit query int false "cuántas entradas (máx 50)"
// @Success 200 {array} models.Recommendation
// @Router /me/recommendations/history [get]
func (h *RecommendHandler) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	h.writeHistory(w, r, UserIDFromContext(r.Context()), limit)
}

// @Summary Historial de recomendaciones de un usuario
// @Tags recommend
// @Security BearerAuth
// @Produce json
// @Param id path int true "userId"
// @Param limit query int false "cuántas entradas (máx 50)"
// @Success 200 {array} models.Recommendation
// @Router /users/{id}/recommendations/history [get]
func (h *RecommendHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	h.writeHistory(w, r, userID, limit)
}

func (h *RecommendHandler) writeHistory(w http.ResponseWriter, r *http.Request, userID, limit int) {
	recs, err := h.svc.History(r.Context(), userID, limit)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(recs)
}

// @Summary Usuarios más parecidos a uno dado
// @Tags recommend
// @Produce json
// @Param id path int true "userId"
// @Param n query int false "cantidad de vecinos"
// @Success 200 {array} int
// @Router /users/{id}/similar [get]
func (h *RecommendHandler) GetSimilarUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))

	users, err := h.svc.SimilarUsers(r.Context(), userID, n)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(users)
}

// @Summary Listar userIds con ratings (para selectores de la UI)
// @Tags users
// @Produce json
// @Success 200 {array} int
// @Router /users [get]
func (h *RecommendHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	users, err := h.svc.Users(r.Context())
	if err != nil {
		writeCoreError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(users)
}

// upgrader global (no afecta a swagger)
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Recomendaciones en tiempo real (WebSocket)
// @Tags recommend
// @Produce json
// @Param id path int true "userId"
// @Param k query int false "cantidad de recomendaciones (máx 50)"
// @Success 200 {object} map[string]interface{}
// @Router /users/{id}/ws/recommendations [get]
func (h *RecommendHandler) GetRecommendationsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "No se pudo abrir WebSocket", 400)
		return
	}
	defer conn.Close()

	userID, _ := strconv.Atoi(chi.URLParam(r, "id"))
	k, _ := strconv.Atoi(r.URL.Query().Get("k"))
	refresh := r.URL.Query().Get("refresh") == "true"

	conn.WriteJSON(map[string]any{
		"type": "start",
		"msg":  "Conexión WS abierta, iniciando cálculo…",
	})

	// Feedback de progreso por etapa del pipeline
	for _, stage := range []string{"load_data", "user_item_matrix", "user_similarity", "ranking"} {
		conn.WriteJSON(map[string]any{
			"type":  "progress",
			"stage": stage,
		})
	}

	resp, err := h.svc.UserRecommend(r.Context(), service.RecRequest{
		UserID:  userID,
		K:       k,
		Refresh: refresh,
	})
	if err != nil {
		conn.WriteJSON(map[string]any{
			"type":  "error",
			"error": err.Error(),
		})
		return
	}

	conn.WriteJSON(map[string]any{
		"type":        "recommendations",
		"userId":      userID,
		"items":       resp.Recommendations,
		"reason":      resp.Reason,
		"generatedAt": time.Now(),
	})
}
