package recommender

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/models"
)

// similarUserPool: cuántos vecinos se consideran al agregar ratings.
// Más ancho que el topN típico para que quede de dónde filtrar.
const similarUserPool = 20

// CollaborativeRecommender: filtrado colaborativo user-based.
// Pipeline en tres pasos explícitos (cada uno valida el anterior):
//
//	LoadData -> BuildUserItemMatrix -> ComputeUserSimilarity
//
// La matriz user-item es dispersa: la ausencia de rating se representa
// con la ausencia de la key, no con un 0 (un 0 explícito sí se guarda).
type CollaborativeRecommender struct {
	ratings []models.RatingDoc // ya filtrados al catálogo

	userIDs   []int // orden ascendente
	itemIDs   []int
	userIndex map[int]int
	itemIndex map[int]int
	rows      []map[int]float64 // fila por usuario: itemIdx -> rating

	sim *Matrix
}

func NewCollaborativeRecommender() *CollaborativeRecommender {
	return &CollaborativeRecommender{}
}

// LoadData lee ratings y catálogo, y descarta los ratings de películas
// que no están en el catálogo (invariante: solo la intersección).
func (r *CollaborativeRecommender) LoadData(ctx context.Context, ratings RatingsSource, catalog CatalogSource) error {
	all, err := ratings.Ratings(ctx)
	if err != nil {
		return err
	}
	movies, err := catalog.Movies(ctx)
	if err != nil {
		return err
	}

	known := make(map[int]bool, len(movies))
	for _, m := range movies {
		known[m.MovieID] = true
	}

	filtered := make([]models.RatingDoc, 0, len(all))
	for _, rt := range all {
		if known[rt.MovieID] {
			filtered = append(filtered, rt)
		}
	}

	log.Printf("[collab] cargados %d de %d ratings (catálogo: %d películas)",
		len(filtered), len(all), len(movies))

	if len(filtered) == 0 {
		return fmt.Errorf("%w: 0 ratings tras filtrar por catálogo", ErrData)
	}

	r.ratings = filtered
	// invalida todo lo derivado
	r.rows = nil
	r.sim = nil
	return nil
}

// BuildUserItemMatrix pivotea los ratings a filas dispersas por usuario.
// IDs de usuario y película quedan ordenados ascendente (determinístico).
func (r *CollaborativeRecommender) BuildUserItemMatrix() error {
	if r.ratings == nil {
		return fmt.Errorf("%w: BuildUserItemMatrix antes de LoadData", ErrState)
	}

	userSet := map[int]bool{}
	itemSet := map[int]bool{}
	for _, rt := range r.ratings {
		userSet[rt.UserID] = true
		itemSet[rt.MovieID] = true
	}

	r.userIDs = sortedKeys(userSet)
	r.itemIDs = sortedKeys(itemSet)
	r.userIndex = indexOf(r.userIDs)
	r.itemIndex = indexOf(r.itemIDs)

	r.rows = make([]map[int]float64, len(r.userIDs))
	for i := range r.rows {
		r.rows[i] = map[int]float64{}
	}
	for _, rt := range r.ratings {
		u := r.userIndex[rt.UserID]
		it := r.itemIndex[rt.MovieID]
		r.rows[u][it] = rt.Rating // (user,movie) duplicado: gana el último
	}

	r.sim = nil
	log.Printf("[collab] matriz user-item %dx%d (nnz=%d)",
		len(r.userIDs), len(r.itemIDs), len(r.ratings))
	return nil
}

// ComputeUserSimilarity: coseno entre todas las filas de usuario.
// Diagonal = 1 exacta; usuarios con vector nulo dan similitud 0.
func (r *CollaborativeRecommender) ComputeUserSimilarity() error {
	if r.rows == nil {
		return fmt.Errorf("%w: ComputeUserSimilarity antes de BuildUserItemMatrix", ErrState)
	}

	n := len(r.rows)
	norms := make([]float64, n)
	for i, row := range r.rows {
		var s float64
		for _, v := range row {
			s += v * v
		}
		norms[i] = math.Sqrt(s)
	}

	sim := NewMatrix(n)
	for i := 0; i < n; i++ {
		sim.Set(i, i, 1)
		for j := i + 1; j < n; j++ {
			s := cosineSparse(r.rows[i], r.rows[j], norms[i], norms[j])
			sim.Set(i, j, s)
			sim.Set(j, i, s)
		}
	}
	r.sim = sim
	log.Printf("[collab] matriz de similitud user-user %dx%d lista", n, n)
	return nil
}

func cosineSparse(a, b map[int]float64, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for i, v := range a {
		if w, ok := b[i]; ok {
			dot += v * w
		}
	}
	return dot / (na * nb)
}

// SimilarUsers devuelve los topN usuarios más parecidos a userID,
// similitud descendente, empates por userId ascendente, sin incluirse a sí mismo.
func (r *CollaborativeRecommender) SimilarUsers(userID, topN int) ([]int, error) {
	if r.sim == nil {
		return nil, fmt.Errorf("%w: similitud no calculada", ErrState)
	}
	if topN < 1 {
		return nil, fmt.Errorf("%w: topN debe ser positivo (%d)", ErrData, topN)
	}

	uIdx, ok := r.userIndex[userID]
	if !ok {
		return nil, fmt.Errorf("%w: usuario %d no está en la matriz", ErrNotFound, userID)
	}

	row := r.sim.Row(uIdx)
	cands := make([]int, 0, len(r.userIDs)-1)
	for i := range r.userIDs {
		if i != uIdx {
			cands = append(cands, i)
		}
	}
	sort.Slice(cands, func(a, b int) bool {
		if row[cands[a]] != row[cands[b]] {
			return row[cands[a]] > row[cands[b]]
		}
		return r.userIDs[cands[a]] < r.userIDs[cands[b]]
	})

	if topN > len(cands) {
		topN = len(cands)
	}
	out := make([]int, topN)
	for i, c := range cands[:topN] {
		out[i] = r.userIDs[c]
	}
	return out, nil
}

// RecommendMovies agrega los ratings de los vecinos más parecidos:
// score(película) = sum(sim(u,v) * rating(v, película)). Se excluye todo
// lo que el usuario ya calificó (incluido un 0 explícito). Puede devolver
// menos de topN si no hay candidatos suficientes, eso no es error.
func (r *CollaborativeRecommender) RecommendMovies(userID, topN int) ([]models.RecItem, error) {
	if r.sim == nil {
		return nil, fmt.Errorf("%w: similitud no calculada", ErrState)
	}
	if topN < 1 {
		return nil, fmt.Errorf("%w: topN debe ser positivo (%d)", ErrData, topN)
	}

	uIdx, ok := r.userIndex[userID]
	if !ok {
		return nil, fmt.Errorf("%w: usuario %d no está en la matriz", ErrNotFound, userID)
	}

	neighbors, err := r.SimilarUsers(userID, similarUserPool)
	if err != nil {
		return nil, err
	}

	rated := r.rows[uIdx]
	simRow := r.sim.Row(uIdx)

	scores := map[int]float64{}
	for _, vID := range neighbors {
		vIdx := r.userIndex[vID]
		w := simRow[vIdx]
		if w <= 0 {
			continue
		}
		for itemIdx, rating := range r.rows[vIdx] {
			if _, ya := rated[itemIdx]; ya {
				continue
			}
			scores[itemIdx] += w * rating
		}
	}

	items := make([]models.RecItem, 0, len(scores))
	for itemIdx, score := range scores {
		items = append(items, models.RecItem{MovieID: r.itemIDs[itemIdx], Score: score})
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].Score != items[b].Score {
			return items[a].Score > items[b].Score
		}
		return items[a].MovieID < items[b].MovieID
	})

	if topN < len(items) {
		items = items[:topN]
	}
	return items, nil
}

// UserIDs expone los usuarios de la matriz (para /users y reportes).
func (r *CollaborativeRecommender) UserIDs() []int {
	return r.userIDs
}

func (r *CollaborativeRecommender) Built() bool {
	return r.sim != nil
}

// SimilarityMatrix para tests/reportes.
func (r *CollaborativeRecommender) SimilarityMatrix() *Matrix {
	return r.sim
}

// Rebuild re-ejecuta el pipeline completo desde las fuentes.
func (r *CollaborativeRecommender) Rebuild(ctx context.Context, ratings RatingsSource, catalog CatalogSource) error {
	r.ratings = nil
	r.rows = nil
	r.sim = nil
	if err := r.LoadData(ctx, ratings, catalog); err != nil {
		return err
	}
	if err := r.BuildUserItemMatrix(); err != nil {
		return err
	}
	return r.ComputeUserSimilarity()
}

// ====== snapshots para el ArtifactStore ======

// UserItemSnapshot persiste la matriz dispersa user-item.
type UserItemSnapshot struct {
	UserIDs []int
	ItemIDs []int
	Rows    []map[int]float64
}

// UserSimSnapshot persiste la matriz de similitud junto con los usuarios
// con los que se calculó, para poder invalidarla si el padrón cambió.
type UserSimSnapshot struct {
	UserIDs []int
	ItemIDs []int
	Sim     *Matrix
}

func (r *CollaborativeRecommender) UserItemSnapshot() (*UserItemSnapshot, error) {
	if r.rows == nil {
		return nil, fmt.Errorf("%w: matriz user-item no construida", ErrState)
	}
	return &UserItemSnapshot{UserIDs: r.userIDs, ItemIDs: r.itemIDs, Rows: r.rows}, nil
}

func (r *CollaborativeRecommender) UserSimSnapshot() (*UserSimSnapshot, error) {
	if r.sim == nil {
		return nil, fmt.Errorf("%w: similitud no calculada", ErrState)
	}
	return &UserSimSnapshot{UserIDs: r.userIDs, ItemIDs: r.itemIDs, Sim: r.sim}, nil
}

// RestoreSimilarity intenta reusar una matriz de similitud persistida.
// Requiere LoadData + BuildUserItemMatrix ya ejecutados (esos pasos son
// baratos; lo caro es el O(U²) que el snapshot evita). Devuelve false si
// el snapshot no corresponde al padrón actual de usuarios/películas.
func (r *CollaborativeRecommender) RestoreSimilarity(snap *UserSimSnapshot) (bool, error) {
	if r.rows == nil {
		return false, fmt.Errorf("%w: RestoreSimilarity antes de BuildUserItemMatrix", ErrState)
	}
	if snap == nil || snap.Sim == nil {
		return false, nil
	}
	if !equalInts(snap.UserIDs, r.userIDs) || !equalInts(snap.ItemIDs, r.itemIDs) {
		return false, nil
	}
	r.sim = snap.Sim
	log.Printf("[collab] similitud restaurada desde artifact (%d usuarios)", len(r.userIDs))
	return true, nil
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func indexOf(ids []int) map[int]int {
	idx := make(map[int]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return idx
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
