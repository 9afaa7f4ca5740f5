package repository

import (
	"context"
	"fmt"
)

// DirectorsRepository provides lookups for directors. Directors are created
// outside this service.
type DirectorsRepository struct {
	db DBTX
}

// Exists reports whether a director with id is present.
func (r *DirectorsRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM directors WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("director exists: %w", err)
	}
	return exists, nil
}

// Count returns the number of stored directors.
func (r *DirectorsRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, "directors")
}
