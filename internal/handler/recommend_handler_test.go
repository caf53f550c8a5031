package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/models"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/recommender"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/service"
)

func handlerTestService() *service.RecommendService {
	catalog := recommender.SliceCatalog{
		{MovieID: 1, Title: "Toy Story", Overview: "woody cowboy doll toys adventure"},
		{MovieID: 2, Title: "Toy Story 2", Overview: "woody cowboy doll toys rescued"},
		{MovieID: 3, Title: "Alien", Overview: "spaceship creature deep space"},
	}
	ratings := recommender.SliceRatings{
		{UserID: 1, MovieID: 1, Rating: 5},
		{UserID: 2, MovieID: 1, Rating: 5},
		{UserID: 2, MovieID: 3, Rating: 4},
	}
	return service.NewRecommendService(catalog, ratings, nil, nil, nil)
}

func testRouter(t *testing.T) *chi.Mux {
	t.Helper()
	h := NewRecommendHandler(handlerTestService())

	r := chi.NewRouter()
	r.Get("/recommendations/content", h.GetContentRecommendations)
	r.Get("/users", h.ListUsers)
	r.Get("/users/{id}/recommendations", h.GetRecommendations)
	r.Get("/users/{id}/similar", h.GetSimilarUsers)
	return r
}

func doGet(t *testing.T, r http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", url, nil))
	return rec
}

func TestGetContentRecommendations(t *testing.T) {
	r := testRouter(t)

	rec := doGet(t, r, "/recommendations/content?title=Toy+Story&n=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, service.MethodContent, resp.Method)
	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, "Toy Story 2", resp.Recommendations[0].Title)
}

func TestGetContentRecommendationsMissingTitle(t *testing.T) {
	rec := doGet(t, testRouter(t), "/recommendations/content")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetContentRecommendationsUnknownTitle(t *testing.T) {
	rec := doGet(t, testRouter(t), "/recommendations/content?title=Nada")
	// shape estable con reason, pero status 404 para los clientes HTTP
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp models.RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, service.ReasonNotFound, resp.Reason)
	assert.Empty(t, resp.Recommendations)
}

func TestGetRecommendations(t *testing.T) {
	r := testRouter(t)

	rec := doGet(t, r, "/users/1/recommendations?k=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, service.MethodCollaborative, resp.Method)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Alien", resp.Recommendations[0].Title)
}

func TestGetRecommendationsUnknownUser(t *testing.T) {
	rec := doGet(t, testRouter(t), "/users/9999/recommendations")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMyRecommendationsUnknownUser(t *testing.T) {
	// usuario autenticado pero sin ratings en la matriz: mismo 404 con
	// reason que la variante por id
	h := NewRecommendHandler(handlerTestService())
	chain := JWTAuth(testSecret)(http.HandlerFunc(h.GetMyRecommendations))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me/recommendations", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 9999, RoleUser))
	chain.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp models.RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, service.ReasonNotFound, resp.Reason)
	assert.Empty(t, resp.Recommendations)
}

func TestGetMyRecommendationsKnownUser(t *testing.T) {
	h := NewRecommendHandler(handlerTestService())
	chain := JWTAuth(testSecret)(http.HandlerFunc(h.GetMyRecommendations))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me/recommendations?k=5", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 1, RoleUser))
	chain.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Alien", resp.Recommendations[0].Title)
}

func TestGetSimilarUsers(t *testing.T) {
	rec := doGet(t, testRouter(t), "/users/1/similar?n=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var users []int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Equal(t, []int{2}, users)
}

func TestListUsers(t *testing.T) {
	rec := doGet(t, testRouter(t), "/users")
	require.Equal(t, http.StatusOK, rec.Code)

	var users []int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Equal(t, []int{1, 2}, users)
}
