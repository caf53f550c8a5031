package recommender

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/models"
)

// ContentRecommender recomienda películas parecidas por overview:
// TF-IDF sobre el texto + matriz de similitud coseno película×película.
//
// Máquina de estados explícita: Unbuilt -> (Fit) -> Built. Consultar en
// Unbuilt devuelve ErrState.
type ContentRecommender struct {
	movies     []models.MovieDoc
	titleIndex map[string]int // título -> índice; primer match gana
	vectorizer Vectorizer
	sim        *Matrix
	built      bool
}

func NewContentRecommender() *ContentRecommender {
	return &ContentRecommender{}
}

// Fit ejecuta el pipeline completo: preprocesa overviews, vectoriza y
// calcula la matriz de similitud. Determinístico: mismo catálogo, misma matriz.
func (r *ContentRecommender) Fit(ctx context.Context, catalog CatalogSource) error {
	movies, err := catalog.Movies(ctx)
	if err != nil {
		return err
	}
	if len(movies) == 0 {
		return fmt.Errorf("%w: catálogo vacío", ErrData)
	}

	// preprocess: overview faltante -> cadena vacía (ya lo es en Go),
	// el vectorizador se encarga de normalizar a minúsculas.
	docs := make([]string, len(movies))
	for i, m := range movies {
		docs[i] = m.Overview
	}

	vectors := r.vectorizer.FitTransform(docs)
	if r.vectorizer.VocabularySize() == 0 {
		return fmt.Errorf("%w: ningún overview con texto usable", ErrData)
	}

	n := len(movies)
	sim := NewMatrix(n)
	for i := 0; i < n; i++ {
		sim.Set(i, i, 1) // diagonal exacta, aunque el overview esté vacío
		for j := i + 1; j < n; j++ {
			s := sparseDot(vectors[i], vectors[j])
			sim.Set(i, j, s)
			sim.Set(j, i, s)
		}
	}

	r.movies = movies
	r.sim = sim
	r.titleIndex = buildTitleIndex(movies)
	r.built = true

	log.Printf("[content] fit: %d películas, vocabulario=%d",
		n, r.vectorizer.VocabularySize())
	return nil
}

// títulos duplicados: se queda el primero (política documentada del demo).
func buildTitleIndex(movies []models.MovieDoc) map[string]int {
	idx := make(map[string]int, len(movies))
	for i, m := range movies {
		if _, dup := idx[m.Title]; !dup {
			idx[m.Title] = i
		}
	}
	return idx
}

// RecommendItems devuelve las topN películas más parecidas a `title`,
// ordenadas por similitud descendente (empates: orden original del catálogo),
// excluyendo siempre la película consultada.
func (r *ContentRecommender) RecommendItems(title string, topN int) ([]models.RecItem, error) {
	if !r.built {
		return nil, fmt.Errorf("%w: content recommender sin fit", ErrState)
	}
	if topN < 1 {
		return nil, fmt.Errorf("%w: topN debe ser positivo (%d)", ErrData, topN)
	}

	idx, ok := r.titleIndex[title]
	if !ok {
		return nil, fmt.Errorf("%w: título %q no está en el catálogo", ErrNotFound, title)
	}

	row := r.sim.Row(idx)
	order := make([]int, 0, len(r.movies)-1)
	for i := range r.movies {
		if i != idx {
			order = append(order, i)
		}
	}
	// sort estable: a igual score queda el orden del catálogo
	sort.SliceStable(order, func(a, b int) bool {
		return row[order[a]] > row[order[b]]
	})

	if topN > len(order) {
		topN = len(order)
	}
	items := make([]models.RecItem, 0, topN)
	for _, i := range order[:topN] {
		items = append(items, models.RecItem{
			MovieID: r.movies[i].MovieID,
			Title:   r.movies[i].Title,
			Score:   row[i],
		})
	}
	return items, nil
}

// Recommend es la superficie clásica del demo: solo los títulos.
func (r *ContentRecommender) Recommend(title string, topN int) ([]string, error) {
	items, err := r.RecommendItems(title, topN)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	return titles, nil
}

// SimilarityMatrix expone la matriz (solo lectura razonable: tests/reportes).
func (r *ContentRecommender) SimilarityMatrix() *Matrix {
	return r.sim
}

func (r *ContentRecommender) Built() bool {
	return r.built
}

// Rebuild vuelve al estado Unbuilt y re-ejecuta Fit desde cero.
func (r *ContentRecommender) Rebuild(ctx context.Context, catalog CatalogSource) error {
	r.built = false
	r.sim = nil
	r.titleIndex = nil
	r.movies = nil
	return r.Fit(ctx, catalog)
}

// ====== snapshot para el ArtifactStore (warm start entre procesos) ======

// ContentSnapshot es lo que se persiste en disco: títulos (para validar
// que el catálogo no cambió) + matriz de similitud.
type ContentSnapshot struct {
	MovieIDs []int
	Titles   []string
	Sim      *Matrix
}

func (r *ContentRecommender) Snapshot() (*ContentSnapshot, error) {
	if !r.built {
		return nil, fmt.Errorf("%w: nada que persistir antes de Fit", ErrState)
	}
	snap := &ContentSnapshot{Sim: r.sim}
	for _, m := range r.movies {
		snap.MovieIDs = append(snap.MovieIDs, m.MovieID)
		snap.Titles = append(snap.Titles, m.Title)
	}
	return snap, nil
}

// Restore recrea el estado Built desde un snapshot, validando que el
// catálogo actual sea el mismo con el que se calculó la matriz.
// Devuelve false si el snapshot quedó obsoleto (hay que recalcular).
func (r *ContentRecommender) Restore(ctx context.Context, snap *ContentSnapshot, catalog CatalogSource) (bool, error) {
	movies, err := catalog.Movies(ctx)
	if err != nil {
		return false, err
	}
	if snap == nil || snap.Sim == nil || len(movies) != len(snap.MovieIDs) {
		return false, nil
	}
	for i, m := range movies {
		if m.MovieID != snap.MovieIDs[i] || m.Title != snap.Titles[i] {
			return false, nil
		}
	}

	r.movies = movies
	r.sim = snap.Sim
	r.titleIndex = buildTitleIndex(movies)
	r.built = true
	log.Printf("[content] restaurado desde artifact: %d películas", len(movies))
	return true, nil
}
