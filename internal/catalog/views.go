package catalog

import (
	"time"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
)

type DirectorView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	BirthYear   *int    `json:"birth_year"`
	Description *string `json:"description"`
}

type GenreView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// MovieDetail is the full view of one movie. AverageRating is null until the
// movie has been rated.
type MovieDetail struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Director      DirectorView `json:"director"`
	ReleaseYear   int          `json:"release_year"`
	Cast          *string      `json:"cast"`
	Genres        []GenreView  `json:"genres"`
	AverageRating *float64     `json:"average_rating"`
	RatingsCount  int64        `json:"ratings_count"`
}

// MovieListItem is the list view of a movie; genres are reduced to names.
type MovieListItem struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	ReleaseYear   int          `json:"release_year"`
	Director      DirectorView `json:"director"`
	Genres        []string     `json:"genres"`
	AverageRating *float64     `json:"average_rating"`
	RatingsCount  int64        `json:"ratings_count"`
}

type PaginatedMovies struct {
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalItems int64           `json:"total_items"`
	Items      []MovieListItem `json:"items"`
}

type RatingView struct {
	RatingID  int64     `json:"rating_id"`
	MovieID   int64     `json:"movie_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

func toDirectorView(d domain.Director) DirectorView {
	return DirectorView{
		ID:          d.ID,
		Name:        d.Name,
		BirthYear:   d.BirthYear,
		Description: d.Description,
	}
}

func toMovieDetail(movie domain.Movie, stats domain.RatingStats) MovieDetail {
	genres := make([]GenreView, 0, len(movie.Genres))
	for _, g := range movie.Genres {
		genres = append(genres, GenreView{ID: g.ID, Name: g.Name, Description: g.Description})
	}
	return MovieDetail{
		ID:            movie.ID,
		Title:         movie.Title,
		Director:      toDirectorView(movie.Director),
		ReleaseYear:   movie.ReleaseYear,
		Cast:          movie.Cast,
		Genres:        genres,
		AverageRating: stats.Average,
		RatingsCount:  stats.Count,
	}
}

func toMovieListItem(movie domain.Movie, stats domain.RatingStats) MovieListItem {
	return MovieListItem{
		ID:            movie.ID,
		Title:         movie.Title,
		ReleaseYear:   movie.ReleaseYear,
		Director:      toDirectorView(movie.Director),
		Genres:        movie.GenreNames(),
		AverageRating: stats.Average,
		RatingsCount:  stats.Count,
	}
}

func toRatingView(r domain.Rating) RatingView {
	return RatingView{
		RatingID:  r.ID,
		MovieID:   r.MovieID,
		Score:     r.Score,
		CreatedAt: r.CreatedAt,
	}
}
