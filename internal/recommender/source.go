package recommender

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/models"
)

// Fuentes de datos del core. Los repos de Mongo y los CSV del dataset
// implementan las mismas interfaces; el core no sabe de dónde vienen.
type CatalogSource interface {
	Movies(ctx context.Context) ([]models.MovieDoc, error)
}

type RatingsSource interface {
	Ratings(ctx context.Context) ([]models.RatingDoc, error)
}

// ---------- in-memory (tests y adapters) ----------

type SliceCatalog []models.MovieDoc

func (s SliceCatalog) Movies(_ context.Context) ([]models.MovieDoc, error) {
	return s, nil
}

type SliceRatings []models.RatingDoc

func (s SliceRatings) Ratings(_ context.Context) ([]models.RatingDoc, error) {
	return s, nil
}

// ---------- CSV (shapes de enriched_movies.csv y ratings.csv) ----------

type CSVCatalog struct {
	Path string
}

func (c CSVCatalog) Movies(_ context.Context) ([]models.MovieDoc, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: abriendo catálogo %s: %v", ErrData, c.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: catálogo %s sin header: %v", ErrData, c.Path, err)
	}
	col := columnIndex(header)

	var out []models.MovieDoc
	skipped := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: leyendo catálogo %s: %v", ErrData, c.Path, err)
		}

		// un movieId ilegible descarta la fila: inventar una película con
		// id 0 contamina ambos recomendadores
		id, err := parseID(field(rec, col, "movieId"))
		if err != nil {
			skipped++
			continue
		}

		m := models.MovieDoc{
			MovieID:     id,
			Title:       field(rec, col, "title"),
			Overview:    field(rec, col, "overview"),
			Popularity:  atof(field(rec, col, "popularity")),
			VoteAverage: atof(field(rec, col, "vote_average")),
			ReleaseDate: field(rec, col, "release_date"),
		}
		if g := field(rec, col, "genres"); g != "" {
			m.Genres = strings.Split(g, "|")
		}
		out = append(out, m)
	}
	if skipped > 0 {
		log.Printf("[csv] %d filas de %s descartadas por movieId ilegible", skipped, c.Path)
	}
	return out, nil
}

type CSVRatings struct {
	Path string
}

func (c CSVRatings) Ratings(_ context.Context) ([]models.RatingDoc, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: abriendo ratings %s: %v", ErrData, c.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: ratings %s sin header: %v", ErrData, c.Path, err)
	}
	col := columnIndex(header)

	var out []models.RatingDoc
	skipped := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: leyendo ratings %s: %v", ErrData, c.Path, err)
		}

		// ids ilegibles descartan la fila entera en vez de fabricar un
		// rating del usuario/película 0
		userID, uErr := parseID(field(rec, col, "userId"))
		movieID, mErr := parseID(field(rec, col, "movieId"))
		if uErr != nil || mErr != nil {
			skipped++
			continue
		}

		out = append(out, models.RatingDoc{
			UserID:    userID,
			MovieID:   movieID,
			Rating:    atof(field(rec, col, "rating")),
			Timestamp: int64(atoi(field(rec, col, "timestamp"))),
		})
	}
	if skipped > 0 {
		log.Printf("[csv] %d filas de %s descartadas por ids ilegibles", skipped, c.Path)
	}
	return out, nil
}

// helpers de parseo (columnas pueden venir en otro orden; los ids son
// estrictos, los campos numéricos de presentación son tolerantes)

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	return col
}

func field(rec []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseID(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func atoi(s string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return v
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}
