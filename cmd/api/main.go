package main

import (
	"log"
	"net/http"

	_ "github.com/alexmatiasas/Personalized-Recommendation-System/docs" // swagger docs

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/cache"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/config"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/db"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/handler"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/recommender"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/repository"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Personalized Recommendation System API
// @version 1.0
// @description API del demo de recomendaciones (content-based + collaborative, Mongo, Redis)
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	// Mongo y Redis
	db.InitMongo(cfg)
	cache.InitRedis(cfg)

	// repos
	userRepo := repository.NewUserRepository()
	movieRepo := repository.NewMovieRepository()
	ratingRepo := repository.NewRatingRepository()
	recRepo := repository.NewRecommendationRepository()
	feedbackRepo := repository.NewFeedbackRepository()

	// artifacts precalculados (matrices de similitud) en disco
	store := recommender.NewArtifactStore(cfg.ArtifactsDir)

	// services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	movieSvc := service.NewMovieService(movieRepo)
	ratingSvc := service.NewRatingService(ratingRepo, movieRepo)
	// fachada sobre los dos recomendadores; los repos de Mongo son las
	// fuentes de catálogo y ratings del core
	recSvc := service.NewRecommendService(movieRepo, ratingRepo, store, recRepo, feedbackRepo)

	// handlers
	authH := handler.NewAuthHandler(authSvc)
	movieH := handler.NewMovieHandler(movieSvc)
	ratingH := handler.NewRatingHandler(ratingSvc)
	recH := handler.NewRecommendHandler(recSvc)
	adminH := handler.NewAdminHandler(recSvc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// =============
	// Rutas públicas
	// =============
	r.Get("/health", handler.Health)

	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)

	// Catálogo (público)
	r.Get("/movies", movieH.List)
	r.Get("/movies/search", movieH.Search)
	r.Get("/movies/top", movieH.Top)
	r.Get("/movies/{id}", movieH.GetMovie)

	// Recomendaciones por contenido y listado de usuarios (público, como
	// en el demo original: la UI los usa sin login)
	r.Get("/recommendations/content", recH.GetContentRecommendations)
	r.Get("/users", recH.ListUsers)

	// ===========================
	// Rutas protegidas con JWT
	// ===========================
	authMw := handler.JWTAuth(cfg.JWTSecret)

	r.Group(func(r chi.Router) {
		r.Use(authMw)

		// ---- Endpoints /me (USER normal) ----
		r.Route("/me", func(r chi.Router) {
			r.Get("/", authH.Me)
			r.Get("/ratings", ratingH.GetMyRatings)
			r.Post("/ratings", ratingH.PostMyRating)
			r.Get("/recommendations", recH.GetMyRecommendations)
			r.Get("/recommendations/history", recH.GetMyHistory)
		})

		// ---- Endpoints solo ADMIN ----
		r.Group(func(r chi.Router) {
			r.Use(handler.AdminOnly())

			// ratings y recomendaciones de cualquier usuario
			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/ratings", ratingH.GetRatings)
				r.Post("/ratings", ratingH.PostRating)

				r.Get("/similar", recH.GetSimilarUsers)

				// HTTP normal
				r.Get("/recommendations", recH.GetRecommendations)
				r.Get("/recommendations/history", recH.GetHistory)

				// WebSocket
				r.Get("/ws/recommendations", recH.GetRecommendationsWS)
			})

			// --- mantenimiento de matrices/artifacts ---
			handler.MountAdminRoutes(r, adminH)
		})
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log.Printf("HTTP escuchando en :%s", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, r))
}
