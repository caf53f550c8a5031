package repository

import (
	"context"
	"log"
	"time"

	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/db"
	"github.com/alexmatiasas/Personalized-Recommendation-System/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// FeedbackRepository guarda eventos de uso en Mongo. Contrato
// fire-and-forget: Record nunca bloquea ni devuelve error al caller.
type FeedbackRepository struct {
	col *mongo.Collection
}

func NewFeedbackRepository() *FeedbackRepository {
	return &FeedbackRepository{col: db.DB().Collection("feedback")}
}

// Record inserta en background con su propio timeout. Si falla, solo log.
func (r *FeedbackRepository) Record(event models.FeedbackEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if _, err := r.col.InsertOne(ctx, event); err != nil {
			log.Printf("[feedback] no se pudo registrar evento: %v", err)
		}
	}()
}
