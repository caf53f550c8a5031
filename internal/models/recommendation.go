package models

import "time"

type RecItem struct {
	MovieID int     `bson:"movieId" json:"movieId"`
	Score   float64 `bson:"score"  json:"score"`
	Title   string  `bson:"title,omitempty" json:"title,omitempty"`
}

// Recommendation es el historial que se guarda en Mongo por cada request servido.
type Recommendation struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    int       `bson:"userId"        json:"userId"`
	Method    string    `bson:"method"        json:"method"` // content_based | collaborative_filtering
	Params    any       `bson:"params"        json:"params"`
	Items     []RecItem `bson:"items"         json:"items"`
	CreatedAt time.Time `bson:"createdAt"     json:"createdAt"`
}

// ====== Shape estable que devuelve la API (§ service façade) ======

// RecommendationResponse envuelve cualquier lista de recomendaciones.
// Cuando Reason != "" la lista viene vacía y el caller sabe por qué.
type RecommendationResponse struct {
	SourceID        any       `json:"sourceId"`
	Method          string    `json:"method"`
	TopN            int       `json:"topN"`
	Recommendations []RecItem `json:"recommendations"`
	Reason          string    `json:"reason,omitempty"` // e.g. "not_found"
}
