package domain

import "time"

// Director owns a collection of movies. Directors are managed outside this
// service; the catalog only checks that they exist.
type Director struct {
	ID          int64
	Name        string
	BirthYear   *int
	Description *string
}

// Genre is linked to movies through the movie_genres bridge table. The JSON
// tags match the object built by the movie queries' json_agg.
type Genre struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Movie is the aggregate root: deleting it removes its ratings and genre links.
type Movie struct {
	ID          int64
	Title       string
	DirectorID  int64
	Director    Director
	ReleaseYear int
	Cast        *string
	Genres      []Genre
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GenreNames returns the names of the movie's genres in stored order.
func (m Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}
