package recommender

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVCatalog(t *testing.T) {
	path := writeCSV(t, "movies.csv",
		"movieId,title,overview,popularity,vote_average,release_date,genres\n"+
			"1,Toy Story,\"Led by Woody, the toys live happily\",21.9,7.7,1995-10-30,Animation|Comedy|Family\n"+
			"2,Jumanji,A magical board game,17.0,6.9,1995-12-15,Adventure|Fantasy\n")

	movies, err := CSVCatalog{Path: path}.Movies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)

	assert.Equal(t, 1, movies[0].MovieID)
	assert.Equal(t, "Toy Story", movies[0].Title)
	assert.Equal(t, "Led by Woody, the toys live happily", movies[0].Overview)
	assert.InDelta(t, 21.9, movies[0].Popularity, 1e-9)
	assert.InDelta(t, 7.7, movies[0].VoteAverage, 1e-9)
	assert.Equal(t, "1995-10-30", movies[0].ReleaseDate)
	assert.Equal(t, []string{"Animation", "Comedy", "Family"}, movies[0].Genres)
}

func TestCSVCatalogColumnOrder(t *testing.T) {
	// las columnas se resuelven por header, no por posición
	path := writeCSV(t, "movies.csv",
		"title,movieId,genres\nHeat,949,Action|Crime\n")

	movies, err := CSVCatalog{Path: path}.Movies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, 949, movies[0].MovieID)
	assert.Equal(t, "Heat", movies[0].Title)
	assert.Empty(t, movies[0].Overview)
}

func TestCSVCatalogSkipsMalformedIDs(t *testing.T) {
	path := writeCSV(t, "movies.csv",
		"movieId,title\n"+
			"abc,Basura\n"+
			",Sin ID\n"+
			"7,Válida\n")

	movies, err := CSVCatalog{Path: path}.Movies(context.Background())
	require.NoError(t, err)
	// las filas con movieId ilegible se descartan, no aparecen con id 0
	require.Len(t, movies, 1)
	assert.Equal(t, 7, movies[0].MovieID)
	assert.Equal(t, "Válida", movies[0].Title)
}

func TestCSVCatalogMissingFile(t *testing.T) {
	_, err := CSVCatalog{Path: "/no/existe.csv"}.Movies(context.Background())
	assert.ErrorIs(t, err, ErrData)
}

func TestCSVRatings(t *testing.T) {
	path := writeCSV(t, "ratings.csv",
		"userId,movieId,rating,timestamp\n1,31,2.5,1260759144\n7,1,4.0,851866703\n")

	ratings, err := CSVRatings{Path: path}.Ratings(context.Background())
	require.NoError(t, err)
	require.Len(t, ratings, 2)

	assert.Equal(t, 1, ratings[0].UserID)
	assert.Equal(t, 31, ratings[0].MovieID)
	assert.InDelta(t, 2.5, ratings[0].Rating, 1e-9)
	assert.Equal(t, int64(1260759144), ratings[0].Timestamp)
}

func TestCSVRatingsSkipsMalformedIDs(t *testing.T) {
	path := writeCSV(t, "ratings.csv",
		"userId,movieId,rating,timestamp\n"+
			"x,1,5,0\n"+
			"1,y,5,0\n"+
			"2,3,4.5,100\n")

	ratings, err := CSVRatings{Path: path}.Ratings(context.Background())
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 2, ratings[0].UserID)
	assert.Equal(t, 3, ratings[0].MovieID)
	assert.InDelta(t, 4.5, ratings[0].Rating, 1e-9)
}

func TestCSVRatingsEmptyFile(t *testing.T) {
	_, err := CSVRatings{Path: writeCSV(t, "ratings.csv", "")}.Ratings(context.Background())
	assert.ErrorIs(t, err, ErrData)
}

func TestCSVSourcesFeedRecommenders(t *testing.T) {
	moviesPath := writeCSV(t, "movies.csv",
		"movieId,title,overview\n"+
			"1,Toy Story,woody cowboy doll toys adventure\n"+
			"2,Toy Story 2,woody cowboy doll toys rescued\n"+
			"3,Alien,spaceship creature deep space\n")
	ratingsPath := writeCSV(t, "ratings.csv",
		"userId,movieId,rating,timestamp\n1,1,5,0\n2,1,5,0\n2,3,4,0\n")

	ctx := context.Background()
	catalog := CSVCatalog{Path: moviesPath}
	ratings := CSVRatings{Path: ratingsPath}

	content := NewContentRecommender()
	require.NoError(t, content.Fit(ctx, catalog))
	titles, err := content.Recommend("Toy Story", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Toy Story 2"}, titles)

	collab := NewCollaborativeRecommender()
	require.NoError(t, collab.Rebuild(ctx, ratings, catalog))
	items, err := collab.RecommendMovies(1, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].MovieID)
}
