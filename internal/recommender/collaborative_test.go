package recommender

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/models"
)

func cfCatalog() SliceCatalog {
	return SliceCatalog{
		{MovieID: 101, Title: "Toy Story"},
		{MovieID: 102, Title: "Jumanji"},
		{MovieID: 103, Title: "Heat"},
		{MovieID: 104, Title: "Casino"},
	}
}

// tres usuarios: 1 y 2 casi idénticos, 3 disjunto de ambos.
func cfRatings() SliceRatings {
	return SliceRatings{
		{UserID: 1, MovieID: 101, Rating: 5},
		{UserID: 1, MovieID: 102, Rating: 3},
		{UserID: 2, MovieID: 101, Rating: 5},
		{UserID: 2, MovieID: 102, Rating: 3},
		{UserID: 2, MovieID: 103, Rating: 4},
		{UserID: 3, MovieID: 104, Rating: 2},
	}
}

func fitCollab(t *testing.T, ratings SliceRatings, catalog SliceCatalog) *CollaborativeRecommender {
	t.Helper()
	ctx := context.Background()
	r := NewCollaborativeRecommender()
	require.NoError(t, r.LoadData(ctx, ratings, catalog))
	require.NoError(t, r.BuildUserItemMatrix())
	require.NoError(t, r.ComputeUserSimilarity())
	return r
}

func TestCollabPipelineOrder(t *testing.T) {
	r := NewCollaborativeRecommender()

	assert.ErrorIs(t, r.BuildUserItemMatrix(), ErrState)
	assert.ErrorIs(t, r.ComputeUserSimilarity(), ErrState)

	_, err := r.SimilarUsers(1, 5)
	assert.ErrorIs(t, err, ErrState)
	_, err = r.RecommendMovies(1, 5)
	assert.ErrorIs(t, err, ErrState)

	require.NoError(t, r.LoadData(context.Background(), cfRatings(), cfCatalog()))
	assert.ErrorIs(t, r.ComputeUserSimilarity(), ErrState)
	require.NoError(t, r.BuildUserItemMatrix())
	require.NoError(t, r.ComputeUserSimilarity())
	assert.True(t, r.Built())
}

func TestCollabLoadDataFiltersToCatalog(t *testing.T) {
	ratings := append(cfRatings(),
		models.RatingDoc{UserID: 1, MovieID: 999, Rating: 5}) // fuera del catálogo

	r := fitCollab(t, ratings, cfCatalog())
	// el usuario 1 sigue con dos películas calificadas: 999 se descartó
	items, err := r.RecommendMovies(1, 10)
	require.NoError(t, err)
	for _, it := range items {
		assert.NotEqual(t, 999, it.MovieID)
	}
}

func TestCollabLoadDataAllFiltered(t *testing.T) {
	r := NewCollaborativeRecommender()
	ratings := SliceRatings{{UserID: 1, MovieID: 999, Rating: 5}}
	assert.ErrorIs(t, r.LoadData(context.Background(), ratings, cfCatalog()), ErrData)
}

func TestCollabUserSimilarity(t *testing.T) {
	r := fitCollab(t, cfRatings(), cfCatalog())

	sim := r.SimilarityMatrix()
	require.Equal(t, 3, sim.N)

	for i := 0; i < sim.N; i++ {
		assert.InDelta(t, 1.0, sim.At(i, i), 1e-9)
		for j := 0; j < sim.N; j++ {
			assert.InDelta(t, sim.At(i, j), sim.At(j, i), 1e-12)
		}
	}

	// usuarios 1 y 2 comparten ratings idénticos en 101 y 102
	assert.Greater(t, sim.At(0, 1), 0.8)
	// usuario 3 no comparte nada con nadie
	assert.Zero(t, sim.At(0, 2))
	assert.Zero(t, sim.At(1, 2))
}

func TestCollabSimilarUsers(t *testing.T) {
	r := fitCollab(t, cfRatings(), cfCatalog())

	// el más parecido al 1 es el 2; el 3 va después (sim 0)
	got, err := r.SimilarUsers(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got)

	got, err = r.SimilarUsers(1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, got) // nunca se incluye a sí mismo

	_, err = r.SimilarUsers(9999, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.SimilarUsers(1, 0)
	assert.ErrorIs(t, err, ErrData)
}

func TestCollabSimilarUsersTieBreak(t *testing.T) {
	// dos vecinos con exactamente el mismo vector: empate de similitud,
	// gana el userId menor
	ratings := SliceRatings{
		{UserID: 5, MovieID: 101, Rating: 4},
		{UserID: 7, MovieID: 101, Rating: 4},
		{UserID: 2, MovieID: 101, Rating: 4},
	}
	r := fitCollab(t, ratings, cfCatalog())

	got, err := r.SimilarUsers(5, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 7}, got)
}

func TestCollabRecommendMovies(t *testing.T) {
	r := fitCollab(t, cfRatings(), cfCatalog())

	items, err := r.RecommendMovies(1, 10)
	require.NoError(t, err)

	// lo único que el vecino 2 vio y el 1 no es Heat (103); Casino (104)
	// viene del usuario 3, con similitud 0, así que no aporta
	require.Len(t, items, 1)
	assert.Equal(t, 103, items[0].MovieID)
	assert.Greater(t, items[0].Score, 0.0)

	// jamás se recomienda lo ya calificado
	for _, it := range items {
		assert.NotContains(t, []int{101, 102}, it.MovieID)
	}

	_, err = r.RecommendMovies(9999, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCollabZeroRatingCountsAsRated(t *testing.T) {
	// el 0 explícito es un rating: excluye la película de las recomendaciones
	ratings := SliceRatings{
		{UserID: 10, MovieID: 101, Rating: 5},
		{UserID: 10, MovieID: 102, Rating: 0},
		{UserID: 11, MovieID: 101, Rating: 5},
		{UserID: 11, MovieID: 102, Rating: 4},
		{UserID: 11, MovieID: 103, Rating: 4},
	}
	r := fitCollab(t, ratings, cfCatalog())

	items, err := r.RecommendMovies(10, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 103, items[0].MovieID)
}

func TestCollabDuplicateRatingLastWins(t *testing.T) {
	ratings := SliceRatings{
		{UserID: 1, MovieID: 101, Rating: 1},
		{UserID: 1, MovieID: 101, Rating: 5}, // corrige el anterior
		{UserID: 2, MovieID: 101, Rating: 5},
		{UserID: 2, MovieID: 102, Rating: 3},
	}
	r := fitCollab(t, ratings, cfCatalog())

	// con rating 5 en 101, los usuarios 1 y 2 quedan muy alineados
	sim := r.SimilarityMatrix()
	assert.Greater(t, sim.At(0, 1), 0.8)
}

func TestCollabRecommendScoresNonIncreasing(t *testing.T) {
	ratings := SliceRatings{
		{UserID: 1, MovieID: 101, Rating: 5},
		{UserID: 2, MovieID: 101, Rating: 5},
		{UserID: 2, MovieID: 102, Rating: 5},
		{UserID: 2, MovieID: 103, Rating: 2},
		{UserID: 2, MovieID: 104, Rating: 4},
	}
	r := fitCollab(t, ratings, cfCatalog())

	items, err := r.RecommendMovies(1, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i].Score, items[i-1].Score)
	}
	// topN recorta
	short, err := r.RecommendMovies(1, 2)
	require.NoError(t, err)
	assert.Equal(t, items[:2], short)
}

func TestCollabUserIDsSorted(t *testing.T) {
	ratings := SliceRatings{
		{UserID: 30, MovieID: 101, Rating: 3},
		{UserID: 10, MovieID: 101, Rating: 3},
		{UserID: 20, MovieID: 101, Rating: 3},
	}
	r := fitCollab(t, ratings, cfCatalog())
	assert.Equal(t, []int{10, 20, 30}, r.UserIDs())
}

func TestCollabRestoreSimilarity(t *testing.T) {
	ctx := context.Background()
	a := fitCollab(t, cfRatings(), cfCatalog())

	snap, err := a.UserSimSnapshot()
	require.NoError(t, err)

	// restore requiere la matriz user-item ya construida
	b := NewCollaborativeRecommender()
	_, err = b.RestoreSimilarity(snap)
	assert.ErrorIs(t, err, ErrState)

	require.NoError(t, b.LoadData(ctx, cfRatings(), cfCatalog()))
	require.NoError(t, b.BuildUserItemMatrix())
	ok, err := b.RestoreSimilarity(snap)
	require.NoError(t, err)
	require.True(t, ok)

	want, err := a.RecommendMovies(1, 5)
	require.NoError(t, err)
	got, err := b.RecommendMovies(1, 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCollabRestoreStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	a := fitCollab(t, cfRatings(), cfCatalog())
	snap, err := a.UserSimSnapshot()
	require.NoError(t, err)

	// aparece un usuario nuevo: el padrón cambió, el snapshot no sirve
	ratings := append(cfRatings(), models.RatingDoc{UserID: 4, MovieID: 103, Rating: 1})
	b := NewCollaborativeRecommender()
	require.NoError(t, b.LoadData(ctx, ratings, cfCatalog()))
	require.NoError(t, b.BuildUserItemMatrix())

	ok, err := b.RestoreSimilarity(snap)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, b.Built())
}

func TestCollabRebuild(t *testing.T) {
	r := fitCollab(t, cfRatings(), cfCatalog())

	ratings := SliceRatings{
		{UserID: 8, MovieID: 101, Rating: 4},
		{UserID: 9, MovieID: 102, Rating: 4},
	}
	require.NoError(t, r.Rebuild(context.Background(), ratings, cfCatalog()))
	assert.Equal(t, []int{8, 9}, r.UserIDs())

	_, err := r.SimilarUsers(1, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
