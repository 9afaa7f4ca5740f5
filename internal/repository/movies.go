package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	db DBTX
}

// movieSelect loads a movie with its director and genre set in a single
// round trip. Callers append WHERE and must GROUP BY m.id, d.id.
const movieSelect = `
    SELECT m.id,
           m.title,
           m.director_id,
           m.release_year,
           m."cast",
           m.created_at,
           m.updated_at,
           d.id,
           d.name,
           d.birth_year,
           d.description,
           COALESCE(
               json_agg(
                   json_build_object('id', g.id, 'name', g.name, 'description', g.description)
                   ORDER BY g.id
               ) FILTER (WHERE g.id IS NOT NULL),
               '[]'::json
           ) AS genres
    FROM movies m
    JOIN directors d ON d.id = m.director_id
    LEFT JOIN movie_genres mg ON mg.movie_id = m.id
    LEFT JOIN genres g ON g.id = mg.genre_id
`

const movieGroupBy = ` GROUP BY m.id, d.id`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	Title       string
	DirectorID  int64
	ReleaseYear int
	Cast        *string
}

// MovieUpdateParams carries a partial update; nil fields keep their stored value.
type MovieUpdateParams struct {
	Title       *string
	DirectorID  *int64
	ReleaseYear *int
	Cast        *string
}

// MovieListFilters encapsulates search and pagination options.
type MovieListFilters struct {
	Title       *string
	ReleaseYear *int
	Genre       *string
	Page        int
	PageSize    int
}

// Offset returns the number of rows skipped before the requested page. It
// saturates at math.MaxInt64 instead of overflowing.
func (f MovieListFilters) Offset() int64 {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	page, size := int64(f.Page-1), int64(f.PageSize)
	if page > math.MaxInt64/size {
		return math.MaxInt64
	}
	return page * size
}

// MovieListResult returns one page of movies and the size of the full matching set.
type MovieListResult struct {
	Items []domain.Movie
	Total int64
}

// Find fetches a movie with its director and genres.
func (r *MoviesRepository) Find(ctx context.Context, id int64) (domain.Movie, error) {
	query := movieSelect + ` WHERE m.id = $1` + movieGroupBy
	movie, err := scanMovie(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, fmt.Errorf("find movie %d: %w", id, err)
	}
	return movie, nil
}

// Exists reports whether a movie row with id is present.
func (r *MoviesRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("movie exists: %w", err)
	}
	return exists, nil
}

// Insert persists a new movie row and returns it with its generated id and
// timestamps. Director and genres are not loaded.
func (r *MoviesRepository) Insert(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	const query = `
        INSERT INTO movies (title, director_id, release_year, "cast")
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at
    `

	movie := domain.Movie{
		Title:       params.Title,
		DirectorID:  params.DirectorID,
		ReleaseYear: params.ReleaseYear,
		Cast:        params.Cast,
		Genres:      []domain.Genre{},
	}
	err := r.db.QueryRow(ctx, query, params.Title, params.DirectorID, params.ReleaseYear, params.Cast).
		Scan(&movie.ID, &movie.CreatedAt, &movie.UpdatedAt)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("insert movie: %w", err)
	}
	return movie, nil
}

// Update applies the non-nil fields of params and always refreshes updated_at.
func (r *MoviesRepository) Update(ctx context.Context, id int64, params MovieUpdateParams) (time.Time, error) {
	const query = `
        UPDATE movies
        SET title = COALESCE($2, title),
            director_id = COALESCE($3, director_id),
            release_year = COALESCE($4, release_year),
            "cast" = COALESCE($5, "cast"),
            updated_at = now()
        WHERE id = $1
        RETURNING updated_at
    `

	var updatedAt time.Time
	err := r.db.QueryRow(ctx, query, id, params.Title, params.DirectorID, params.ReleaseYear, params.Cast).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("update movie %d: %w", id, err)
	}
	return updatedAt, nil
}

// Delete removes the movie row. Ratings and genre links go with it through
// ON DELETE CASCADE.
func (r *MoviesRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movie %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceGenres swaps the movie's whole genre set for genreIDs. An empty
// slice clears it. Run it in the transaction that validated genreIDs.
func (r *MoviesRepository) ReplaceGenres(ctx context.Context, movieID int64, genreIDs []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM movie_genres WHERE movie_id = $1`, movieID); err != nil {
		return fmt.Errorf("clear movie genres: %w", err)
	}
	if len(genreIDs) == 0 {
		return nil
	}

	const insert = `
        INSERT INTO movie_genres (movie_id, genre_id)
        SELECT $1, genre_id FROM unnest($2::bigint[]) AS genre_id
        ON CONFLICT DO NOTHING
    `
	if _, err := r.db.Exec(ctx, insert, movieID, genreIDs); err != nil {
		return fmt.Errorf("insert movie genres: %w", err)
	}
	return nil
}

// List returns one page of movies matching filters, ordered by id, plus the
// total number of matching movies.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) (MovieListResult, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Title != nil && strings.TrimSpace(*filters.Title) != "" {
		where = append(where, fmt.Sprintf("m.title ILIKE %s", arg(containsPattern(strings.TrimSpace(*filters.Title)))))
	}
	if filters.ReleaseYear != nil {
		where = append(where, fmt.Sprintf("m.release_year = %s", arg(*filters.ReleaseYear)))
	}
	if filters.Genre != nil && strings.TrimSpace(*filters.Genre) != "" {
		where = append(where, fmt.Sprintf(`EXISTS (
            SELECT 1
            FROM movie_genres fmg
            JOIN genres fg ON fg.id = fmg.genre_id
            WHERE fmg.movie_id = m.id AND fg.name ILIKE %s
        )`, arg(containsPattern(strings.TrimSpace(*filters.Genre)))))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM movies m" + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return MovieListResult{}, fmt.Errorf("count movies: %w", err)
	}
	if filters.Offset() >= total {
		return MovieListResult{Items: []domain.Movie{}, Total: total}, nil
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(movieSelect)
	queryBuilder.WriteString(whereClause)
	queryBuilder.WriteString(movieGroupBy)
	queryBuilder.WriteString(" ORDER BY m.id ASC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %s OFFSET %s", arg(filters.PageSize), arg(filters.Offset())))

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return MovieListResult{}, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Movie, 0, filters.PageSize)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return MovieListResult{}, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return MovieListResult{}, err
	}

	return MovieListResult{Items: items, Total: total}, nil
}

// Count returns the number of stored movies.
func (r *MoviesRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, "movies")
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie      domain.Movie
		genresJSON []byte
	)

	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.DirectorID,
		&movie.ReleaseYear,
		&movie.Cast,
		&movie.CreatedAt,
		&movie.UpdatedAt,
		&movie.Director.ID,
		&movie.Director.Name,
		&movie.Director.BirthYear,
		&movie.Director.Description,
		&genresJSON,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	movie.Genres = []domain.Genre{}
	if len(genresJSON) > 0 {
		if err := json.Unmarshal(genresJSON, &movie.Genres); err != nil {
			return domain.Movie{}, fmt.Errorf("decode movie genres: %w", err)
		}
	}
	return movie, nil
}
