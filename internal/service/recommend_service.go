package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/cache"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/models"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/recommender"
)

const (
	DefaultK = 10
	MaxK     = 50 // por seguridad, no deja pedir 1000 ítems

	MethodContent       = "content_based"
	MethodCollaborative = "collaborative_filtering"

	ReasonNotFound = "not_found"
)

// HistoryStore guarda y consulta el historial de recomendaciones
// servidas (Mongo).
type HistoryStore interface {
	Insert(ctx context.Context, rec *models.Recommendation) error
	FindByUser(ctx context.Context, userID int, limit int64) ([]models.Recommendation, error)
}

// FeedbackSink registra eventos de uso. Fire-and-forget: no bloquea,
// no falla el request.
type FeedbackSink interface {
	Record(event models.FeedbackEvent)
}

// RecommendService es la fachada sobre los dos recomendadores. Elige
// estrategia por request, arma el shape estable de salida y traduce los
// errores del core. Sin lógica algorítmica propia.
type RecommendService struct {
	catalog recommender.CatalogSource
	ratings recommender.RatingsSource
	store   *recommender.ArtifactStore

	history  HistoryStore // puede ser nil
	feedback FeedbackSink // puede ser nil

	// build-once por artifact: cada recomendador tiene su propio lock,
	// los lectores solo ven "sin construir" o "construido del todo".
	contentMu sync.Mutex
	content   *recommender.ContentRecommender

	collabMu sync.Mutex
	collab   *recommender.CollaborativeRecommender

	titleMu   sync.Mutex
	titleByID map[int]string
}

func NewRecommendService(
	catalog recommender.CatalogSource,
	ratings recommender.RatingsSource,
	store *recommender.ArtifactStore,
	history HistoryStore,
	feedback FeedbackSink,
) *RecommendService {
	return &RecommendService{
		catalog:  catalog,
		ratings:  ratings,
		store:    store,
		history:  history,
		feedback: feedback,
		content:  recommender.NewContentRecommender(),
		collab:   recommender.NewCollaborativeRecommender(),
	}
}

// clampK aplica defaults y límites al topN pedido por el cliente.
func clampK(k int) int {
	if k <= 0 {
		return DefaultK
	}
	if k > MaxK {
		return MaxK
	}
	return k
}

// ensureContent construye (o restaura de disco) la matriz de similitud
// de contenido, una sola vez por proceso.
func (s *RecommendService) ensureContent(ctx context.Context) error {
	s.contentMu.Lock()
	defer s.contentMu.Unlock()

	if s.content.Built() {
		return nil
	}

	if s.store != nil {
		var snap recommender.ContentSnapshot
		if s.store.Load(recommender.KeyContentSim, &snap) {
			if ok, err := s.content.Restore(ctx, &snap, s.catalog); err != nil {
				return err
			} else if ok {
				s.rememberTitles(ctx)
				return nil
			}
			log.Printf("[recommend] artifact %s obsoleto, recalculando", recommender.KeyContentSim)
		}
	}

	if err := s.content.Fit(ctx, s.catalog); err != nil {
		return err
	}
	s.saveContentArtifact()
	s.rememberTitles(ctx)
	return nil
}

func (s *RecommendService) saveContentArtifact() {
	if s.store == nil {
		return
	}
	if snap, err := s.content.Snapshot(); err == nil {
		_ = s.store.Save(recommender.KeyContentSim, snap) // no fatal, ya logueado
	}
}

// ensureCollab corre el pipeline colaborativo. LoadData y el pivot son
// baratos y se rehacen siempre; el O(U²) de similitud se restaura de
// disco cuando el padrón de usuarios/películas no cambió.
func (s *RecommendService) ensureCollab(ctx context.Context) error {
	s.collabMu.Lock()
	defer s.collabMu.Unlock()

	if s.collab.Built() {
		return nil
	}

	if err := s.collab.LoadData(ctx, s.ratings, s.catalog); err != nil {
		return err
	}
	if err := s.collab.BuildUserItemMatrix(); err != nil {
		return err
	}

	if s.store != nil {
		var snap recommender.UserSimSnapshot
		if s.store.Load(recommender.KeyUserSim, &snap) {
			if ok, err := s.collab.RestoreSimilarity(&snap); err != nil {
				return err
			} else if ok {
				return nil
			}
			log.Printf("[recommend] artifact %s obsoleto, recalculando", recommender.KeyUserSim)
		}
	}

	if err := s.collab.ComputeUserSimilarity(); err != nil {
		return err
	}
	s.saveCollabArtifacts()
	return nil
}

func (s *RecommendService) saveCollabArtifacts() {
	if s.store == nil {
		return
	}
	if snap, err := s.collab.UserItemSnapshot(); err == nil {
		_ = s.store.Save(recommender.KeyUserItem, snap)
	}
	if snap, err := s.collab.UserSimSnapshot(); err == nil {
		_ = s.store.Save(recommender.KeyUserSim, snap)
	}
}

// rememberTitles cachea movieId -> title para enriquecer los RecItem.
func (s *RecommendService) rememberTitles(ctx context.Context) {
	movies, err := s.catalog.Movies(ctx)
	if err != nil {
		return
	}
	byID := make(map[int]string, len(movies))
	for _, m := range movies {
		byID[m.MovieID] = m.Title
	}
	s.titleMu.Lock()
	s.titleByID = byID
	s.titleMu.Unlock()
}

func (s *RecommendService) titleOf(movieID int) string {
	s.titleMu.Lock()
	defer s.titleMu.Unlock()
	return s.titleByID[movieID]
}

// ====== content-based ======

// ContentRecommend devuelve las películas más parecidas a `title`.
// Un título desconocido no es un error del sistema: vuelve el shape
// estable con Reason = "not_found" y lista vacía.
func (s *RecommendService) ContentRecommend(ctx context.Context, title string, topN int) (*models.RecommendationResponse, error) {
	topN = clampK(topN)

	if err := s.ensureContent(ctx); err != nil {
		return nil, err
	}

	resp := &models.RecommendationResponse{
		SourceID: title,
		Method:   MethodContent,
		TopN:     topN,
	}

	items, err := s.content.RecommendItems(title, topN)
	if err != nil {
		if errors.Is(err, recommender.ErrNotFound) {
			resp.Recommendations = []models.RecItem{}
			resp.Reason = ReasonNotFound
			s.record(models.FeedbackEvent{Title: title, Method: MethodContent, TopN: topN, Reason: ReasonNotFound})
			return resp, nil
		}
		return nil, err
	}

	resp.Recommendations = items
	s.record(models.FeedbackEvent{Title: title, Method: MethodContent, TopN: topN, Served: len(items)})
	return resp, nil
}

// ====== collaborative ======

type RecRequest struct {
	UserID  int
	K       int
	Refresh bool
}

func cacheKey(req RecRequest) string {
	// Cachea por usuario + k (refresh solo decide si usar la cache)
	return fmt.Sprintf("rec:user:%d:k:%d", req.UserID, req.K)
}

// UserRecommend genera recomendaciones colaborativas para un usuario,
// con cache Redis de una hora e historial en Mongo (ambos no fatales).
func (s *RecommendService) UserRecommend(ctx context.Context, req RecRequest) (*models.RecommendationResponse, error) {
	req.K = clampK(req.K)

	resp := &models.RecommendationResponse{
		SourceID: req.UserID,
		Method:   MethodCollaborative,
		TopN:     req.K,
	}

	// 1) Cache Redis (solo si refresh = false)
	if !req.Refresh {
		var cached []models.RecItem
		if ok, err := cache.GetJSON(ctx, cacheKey(req), &cached); err == nil && ok {
			resp.Recommendations = cached
			return resp, nil
		}
	}

	// 2) Pipeline colaborativo (lazy, build-once)
	if err := s.ensureCollab(ctx); err != nil {
		return nil, err
	}

	items, err := s.collab.RecommendMovies(req.UserID, req.K)
	if err != nil {
		if errors.Is(err, recommender.ErrNotFound) {
			resp.Recommendations = []models.RecItem{}
			resp.Reason = ReasonNotFound
			s.record(models.FeedbackEvent{UserID: req.UserID, Method: MethodCollaborative, TopN: req.K, Reason: ReasonNotFound})
			return resp, nil
		}
		return nil, err
	}

	// join de títulos para presentación (si el catálogo ya está en memoria)
	s.titleMu.Lock()
	haveTitles := s.titleByID != nil
	s.titleMu.Unlock()
	if !haveTitles {
		s.rememberTitles(ctx)
	}
	for i := range items {
		items[i].Title = s.titleOf(items[i].MovieID)
	}
	resp.Recommendations = items

	// 3) Historial en Mongo (no rompemos la respuesta si falla)
	if s.history != nil {
		hist := &models.Recommendation{
			UserID: req.UserID,
			Method: MethodCollaborative,
			Params: map[string]any{
				"k":       req.K,
				"refresh": req.Refresh,
			},
			Items:     items,
			CreatedAt: time.Now(),
		}
		if err := s.history.Insert(ctx, hist); err != nil {
			log.Printf("[recommend] error guardando historial en Mongo: %v", err)
		}
	}

	// 4) Cache Redis (1 hora)
	if err := cache.SetJSON(ctx, cacheKey(req), items, 60*60); err != nil {
		log.Printf("[recommend] error cacheando en Redis: %v", err)
	}

	s.record(models.FeedbackEvent{UserID: req.UserID, Method: MethodCollaborative, TopN: req.K, Served: len(items)})
	return resp, nil
}

// History devuelve las últimas recomendaciones servidas a un usuario,
// más reciente primero.
func (s *RecommendService) History(ctx context.Context, userID, limit int) ([]models.Recommendation, error) {
	if s.history == nil {
		return []models.Recommendation{}, nil
	}
	return s.history.FindByUser(ctx, userID, int64(clampK(limit)))
}

// SimilarUsers expone el paso intermedio del CF: los usuarios más
// parecidos a uno dado.
func (s *RecommendService) SimilarUsers(ctx context.Context, userID, topN int) ([]int, error) {
	topN = clampK(topN)
	if err := s.ensureCollab(ctx); err != nil {
		return nil, err
	}
	return s.collab.SimilarUsers(userID, topN)
}

// Users lista los usuarios presentes en la matriz (para la UI).
func (s *RecommendService) Users(ctx context.Context) ([]int, error) {
	if err := s.ensureCollab(ctx); err != nil {
		return nil, err
	}
	return s.collab.UserIDs(), nil
}

func (s *RecommendService) record(ev models.FeedbackEvent) {
	if s.feedback != nil {
		s.feedback.Record(ev)
	}
}

// ====== admin: rebuild / status ======

type RecommenderStatus struct {
	ContentBuilt    bool            `json:"contentBuilt"`
	CollabBuilt     bool            `json:"collaborativeBuilt"`
	Artifacts       map[string]bool `json:"artifacts"`
	LastRebuildSecs float64         `json:"lastRebuildSeconds,omitempty"`
}

// Rebuild fuerza el refit completo de ambos recomendadores y reescribe
// los artifacts. Es la transición explícita Built -> Unbuilt -> Built.
func (s *RecommendService) Rebuild(ctx context.Context) (*RecommenderStatus, error) {
	start := time.Now()

	s.contentMu.Lock()
	err := s.content.Rebuild(ctx, s.catalog)
	if err == nil {
		s.saveContentArtifact()
	}
	s.contentMu.Unlock()
	if err != nil {
		return nil, err
	}
	s.rememberTitles(ctx)

	s.collabMu.Lock()
	err = s.collab.Rebuild(ctx, s.ratings, s.catalog)
	if err == nil {
		s.saveCollabArtifacts()
	}
	s.collabMu.Unlock()
	if err != nil {
		return nil, err
	}

	st := s.Status()
	st.LastRebuildSecs = time.Since(start).Seconds()
	return st, nil
}

func (s *RecommendService) Status() *RecommenderStatus {
	st := &RecommenderStatus{
		ContentBuilt: s.content.Built(),
		CollabBuilt:  s.collab.Built(),
		Artifacts:    map[string]bool{},
	}
	if s.store != nil {
		for _, key := range []string{recommender.KeyContentSim, recommender.KeyUserItem, recommender.KeyUserSim} {
			st.Artifacts[key] = s.store.Exists(key)
		}
	}
	return st
}
