package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/config"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/db"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/recommender"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/repository"
)

// builder precalcula las matrices de similitud y las deja en disco para
// que el API las cargue al vuelo en vez de recalcular en el primer request.
//
//	go run ./cmd/builder --source=csv --movies data/processed_demo/enriched_movies.csv \
//	    --ratings data/processed_demo/ratings.csv --artifacts artifacts/
func main() {
	cfg := config.Load()

	source := flag.String("source", "csv", "origen de datos: csv | mongo")
	movies := flag.String("movies", cfg.MoviesCSV, "ruta del CSV de películas")
	ratings := flag.String("ratings", cfg.RatingsCSV, "ruta del CSV de ratings")
	artifacts := flag.String("artifacts", cfg.ArtifactsDir, "directorio de artifacts")
	flag.Parse()

	var catalog recommender.CatalogSource
	var ratingsSrc recommender.RatingsSource

	switch *source {
	case "csv":
		catalog = recommender.CSVCatalog{Path: *movies}
		ratingsSrc = recommender.CSVRatings{Path: *ratings}
	case "mongo":
		db.InitMongo(cfg)
		catalog = repository.NewMovieRepository()
		ratingsSrc = repository.NewRatingRepository()
	default:
		log.Fatalf("[builder] source desconocido: %q (usa csv o mongo)", *source)
	}

	store := recommender.NewArtifactStore(*artifacts)
	ctx := context.Background()

	start := time.Now()

	// content-based
	content := recommender.NewContentRecommender()
	if err := content.Fit(ctx, catalog); err != nil {
		log.Fatalf("[builder] fit content: %v", err)
	}
	snap, err := content.Snapshot()
	if err != nil {
		log.Fatalf("[builder] snapshot content: %v", err)
	}
	if err := store.Save(recommender.KeyContentSim, snap); err != nil {
		log.Fatalf("[builder] guardando %s: %v", recommender.KeyContentSim, err)
	}
	log.Printf("[builder] matriz de similitud por contenido lista (%d películas)", len(snap.MovieIDs))

	// collaborative
	collab := recommender.NewCollaborativeRecommender()
	if err := collab.LoadData(ctx, ratingsSrc, catalog); err != nil {
		log.Fatalf("[builder] cargando ratings: %v", err)
	}
	if err := collab.BuildUserItemMatrix(); err != nil {
		log.Fatalf("[builder] matriz usuario-item: %v", err)
	}
	if err := collab.ComputeUserSimilarity(); err != nil {
		log.Fatalf("[builder] similitud usuario-usuario: %v", err)
	}
	uiSnap, err := collab.UserItemSnapshot()
	if err != nil {
		log.Fatalf("[builder] snapshot usuario-item: %v", err)
	}
	if err := store.Save(recommender.KeyUserItem, uiSnap); err != nil {
		log.Fatalf("[builder] guardando %s: %v", recommender.KeyUserItem, err)
	}
	simSnap, err := collab.UserSimSnapshot()
	if err != nil {
		log.Fatalf("[builder] snapshot similitud: %v", err)
	}
	if err := store.Save(recommender.KeyUserSim, simSnap); err != nil {
		log.Fatalf("[builder] guardando %s: %v", recommender.KeyUserSim, err)
	}
	log.Printf("[builder] matriz de similitud de usuarios lista (%d usuarios)", len(uiSnap.UserIDs))

	log.Printf("[builder] artifacts en %s (%.1fs)", *artifacts, time.Since(start).Seconds())
}
