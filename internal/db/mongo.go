package db

import (
	"context"
	"log"
	"time"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Timeout corto a propósito: sin Mongo no hay catálogo ni ratings, así
// que mejor morir en el arranque que a mitad de un request.
const connectTimeout = 10 * time.Second

var database *mongo.Database

func InitMongo(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetAppName("recommendation-api")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Fatalf("[mongo] conexión fallida: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("[mongo] sin respuesta al ping: %v", err)
	}

	database = client.Database(cfg.MongoDB)
	log.Printf("[mongo] conectado, DB=%s", cfg.MongoDB)
}

// DB devuelve la base activa; los repositorios cuelgan sus colecciones de acá.
func DB() *mongo.Database {
	return database
}
