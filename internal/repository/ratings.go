package repository

import (
	"context"
	"fmt"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
)

// RatingsRepository provides helpers for movie ratings.
type RatingsRepository struct {
	db DBTX
}

// Insert appends a rating. A missing movie surfaces as ErrNotFound.
func (r *RatingsRepository) Insert(ctx context.Context, movieID int64, score int) (domain.Rating, error) {
	const query = `
        INSERT INTO movie_ratings (movie_id, score)
        VALUES ($1, $2)
        RETURNING id, movie_id, score, created_at
    `

	var rating domain.Rating
	err := r.db.QueryRow(ctx, query, movieID, score).Scan(
		&rating.ID,
		&rating.MovieID,
		&rating.Score,
		&rating.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, fmt.Errorf("insert rating: %w", err)
	}
	return rating, nil
}

// Stats returns the average and count of a movie's ratings. The average is
// nil when the movie has no ratings.
func (r *RatingsRepository) Stats(ctx context.Context, movieID int64) (domain.RatingStats, error) {
	const query = `
        SELECT AVG(score)::float8, COUNT(*)
        FROM movie_ratings
        WHERE movie_id = $1
    `

	var stats domain.RatingStats
	if err := r.db.QueryRow(ctx, query, movieID).Scan(&stats.Average, &stats.Count); err != nil {
		return domain.RatingStats{}, fmt.Errorf("aggregate ratings: %w", err)
	}
	return stats, nil
}

// StatsForMovies aggregates ratings for several movies with one grouped
// query. Movies without ratings are absent from the map.
func (r *RatingsRepository) StatsForMovies(ctx context.Context, movieIDs []int64) (map[int64]domain.RatingStats, error) {
	result := make(map[int64]domain.RatingStats, len(movieIDs))
	if len(movieIDs) == 0 {
		return result, nil
	}

	const query = `
        SELECT movie_id, AVG(score)::float8, COUNT(*)
        FROM movie_ratings
        WHERE movie_id = ANY($1)
        GROUP BY movie_id
    `
	rows, err := r.db.Query(ctx, query, movieIDs)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			movieID int64
			stats   domain.RatingStats
		)
		if err := rows.Scan(&movieID, &stats.Average, &stats.Count); err != nil {
			return nil, err
		}
		result[movieID] = stats
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of stored ratings.
func (r *RatingsRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, "movie_ratings")
}
