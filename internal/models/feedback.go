package models

import "time"

// FeedbackEvent se registra fire-and-forget cada vez que servimos recomendaciones.
// Nunca debe bloquear ni romper el request.
type FeedbackEvent struct {
	UserID    int       `bson:"userId,omitempty" json:"userId,omitempty"`
	Title     string    `bson:"title,omitempty"  json:"title,omitempty"`
	Method    string    `bson:"method"           json:"method"`
	TopN      int       `bson:"topN"             json:"topN"`
	Served    int       `bson:"served"           json:"served"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt time.Time `bson:"createdAt"        json:"createdAt"`
}
