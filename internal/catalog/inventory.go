package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Inventory is the number of stored rows per catalog table.
type Inventory struct {
	Movies    int64 `json:"movies"`
	Directors int64 `json:"directors"`
	Genres    int64 `json:"genres"`
	Ratings   int64 `json:"ratings"`
}

// Inventory counts every catalog table concurrently.
func (s *Service) Inventory(ctx context.Context) (Inventory, error) {
	var inv Inventory
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		inv.Movies, err = s.repo.Movies.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		inv.Directors, err = s.repo.Directors.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		inv.Genres, err = s.repo.Genres.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		inv.Ratings, err = s.repo.Ratings.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Inventory{}, err
	}
	return inv, nil
}
