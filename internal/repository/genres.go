package repository

import (
	"context"
	"fmt"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
)

// GenresRepository provides lookups for genres.
type GenresRepository struct {
	db DBTX
}

// FindByIDs returns the genres among ids that exist, ordered by id. Callers
// detect missing ids by comparing lengths.
func (r *GenresRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Genre, error) {
	if len(ids) == 0 {
		return []domain.Genre{}, nil
	}

	const query = `
        SELECT id, name, description
        FROM genres
        WHERE id = ANY($1)
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("find genres: %w", err)
	}
	defer rows.Close()

	genres := make([]domain.Genre, 0, len(ids))
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return genres, nil
}

// Count returns the number of stored genres.
func (r *GenresRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, "genres")
}
