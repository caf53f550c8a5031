package models

// RatingStats resume los ratings acumulados de una película.
type RatingStats struct {
	Average     float64 `json:"average" bson:"average"`
	Count       int     `json:"count" bson:"count"`
	LastRatedAt string  `json:"lastRatedAt,omitempty" bson:"lastRatedAt,omitempty"`
}

// MovieDoc es el catálogo enriquecido (mismo shape que enriched_movies).
type MovieDoc struct {
	MovieID     int          `json:"movieId" bson:"movieId"`
	Title       string       `json:"title" bson:"title"`
	Genres      []string     `json:"genres" bson:"genres"`
	Overview    string       `json:"overview,omitempty" bson:"overview,omitempty"`
	Popularity  float64      `json:"popularity,omitempty" bson:"popularity,omitempty"`
	VoteAverage float64      `json:"voteAverage,omitempty" bson:"voteAverage,omitempty"`
	ReleaseDate string       `json:"releaseDate,omitempty" bson:"releaseDate,omitempty"`
	PosterURL   string       `json:"posterUrl,omitempty" bson:"posterUrl,omitempty"`
	RatingStats *RatingStats `json:"ratingStats,omitempty" bson:"ratingStats,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
