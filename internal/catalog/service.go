// Package catalog holds the movie catalog use cases: reference validation,
// transactional writes and assembly of the response views.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-catalog/internal/apperr"
	"github.com/Clark-Hu/movie-catalog/internal/domain"
	"github.com/Clark-Hu/movie-catalog/internal/repository"
)

var (
	errMovieNotFound    = apperr.NotFound("Movie not found")
	errDirectorNotFound = apperr.BadRequest("director_id does not exist")
	errGenreNotFound    = apperr.BadRequest("One or more genre_ids do not exist")
)

// Service implements the catalog operations on top of a Repository.
type Service struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewService(repo *repository.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("catalog")}
}

// GetMovieDetail returns the movie with its director, genres and rating stats.
func (s *Service) GetMovieDetail(ctx context.Context, id int64) (MovieDetail, error) {
	return movieDetail(ctx, s.repo, id)
}

// CreateMovie validates the director and genre references, then inserts the
// movie and links its genres in one transaction.
func (s *Service) CreateMovie(ctx context.Context, in MovieInput) (MovieDetail, error) {
	if err := Validate(in); err != nil {
		return MovieDetail{}, err
	}
	genreIDs := dedupeIDs(in.GenreIDs)

	var detail MovieDetail
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := checkDirector(ctx, tx, *in.DirectorID); err != nil {
			return err
		}
		if err := checkGenres(ctx, tx, genreIDs); err != nil {
			return err
		}

		movie, err := tx.Movies.Insert(ctx, repository.MovieCreateParams{
			Title:       in.Title,
			DirectorID:  *in.DirectorID,
			ReleaseYear: *in.ReleaseYear,
			Cast:        in.Cast,
		})
		if err != nil {
			return err
		}
		if err := tx.Movies.ReplaceGenres(ctx, movie.ID, genreIDs); err != nil {
			return err
		}

		detail, err = movieDetail(ctx, tx, movie.ID)
		return err
	})
	if err != nil {
		return MovieDetail{}, err
	}

	s.logger.Info("movie created", zap.Int64("movie_id", detail.ID), zap.Int("genres", len(genreIDs)))
	return detail, nil
}

// UpdateMovie applies the fields present in in. When any check fails nothing
// is written.
func (s *Service) UpdateMovie(ctx context.Context, id int64, in MovieUpdateInput) (MovieDetail, error) {
	if err := Validate(in); err != nil {
		return MovieDetail{}, err
	}

	var detail MovieDetail
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		exists, err := tx.Movies.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return errMovieNotFound
		}

		if in.DirectorID != nil {
			if err := checkDirector(ctx, tx, *in.DirectorID); err != nil {
				return err
			}
		}
		var genreIDs []int64
		if in.GenreIDs != nil {
			genreIDs = dedupeIDs(*in.GenreIDs)
			if err := checkGenres(ctx, tx, genreIDs); err != nil {
				return err
			}
		}

		_, err = tx.Movies.Update(ctx, id, repository.MovieUpdateParams{
			Title:       in.Title,
			DirectorID:  in.DirectorID,
			ReleaseYear: in.ReleaseYear,
			Cast:        in.Cast,
		})
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errMovieNotFound
			}
			return err
		}
		if in.GenreIDs != nil {
			if err := tx.Movies.ReplaceGenres(ctx, id, genreIDs); err != nil {
				return err
			}
		}

		detail, err = movieDetail(ctx, tx, id)
		return err
	})
	if err != nil {
		return MovieDetail{}, err
	}

	s.logger.Info("movie updated", zap.Int64("movie_id", id), zap.Bool("genres_replaced", in.GenreIDs != nil))
	return detail, nil
}

// DeleteMovie removes the movie together with its ratings and genre links.
func (s *Service) DeleteMovie(ctx context.Context, id int64) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Movies.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errMovieNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("movie deleted", zap.Int64("movie_id", id))
	return nil
}

// ListMovies returns one page of movies matching q with their rating stats.
func (s *Service) ListMovies(ctx context.Context, q ListQuery) (PaginatedMovies, error) {
	if err := validateListQuery(q); err != nil {
		return PaginatedMovies{}, err
	}

	result, err := s.repo.Movies.List(ctx, repository.MovieListFilters{
		Title:       q.Title,
		ReleaseYear: q.ReleaseYear,
		Genre:       q.Genre,
		Page:        q.Page,
		PageSize:    q.PageSize,
	})
	if err != nil {
		return PaginatedMovies{}, err
	}

	ids := make([]int64, 0, len(result.Items))
	for _, m := range result.Items {
		ids = append(ids, m.ID)
	}
	stats, err := s.repo.Ratings.StatsForMovies(ctx, ids)
	if err != nil {
		return PaginatedMovies{}, err
	}

	items := make([]MovieListItem, 0, len(result.Items))
	for _, m := range result.Items {
		items = append(items, toMovieListItem(m, stats[m.ID]))
	}

	return PaginatedMovies{
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalItems: result.Total,
		Items:      items,
	}, nil
}

// CreateRating appends a rating to an existing movie.
func (s *Service) CreateRating(ctx context.Context, movieID int64, score int) (RatingView, error) {
	if score < domain.MinScore || score > domain.MaxScore {
		return RatingView{}, apperr.Unprocessable(fmt.Sprintf("score must be between %d and %d", domain.MinScore, domain.MaxScore))
	}

	var rating domain.Rating
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		exists, err := tx.Movies.Exists(ctx, movieID)
		if err != nil {
			return err
		}
		if !exists {
			return errMovieNotFound
		}

		rating, err = tx.Ratings.Insert(ctx, movieID, score)
		if errors.Is(err, repository.ErrNotFound) {
			return errMovieNotFound
		}
		return err
	})
	if err != nil {
		return RatingView{}, err
	}

	s.logger.Debug("rating created", zap.Int64("movie_id", movieID), zap.Int64("rating_id", rating.ID))
	return toRatingView(rating), nil
}

func movieDetail(ctx context.Context, repo *repository.Repository, id int64) (MovieDetail, error) {
	movie, err := repo.Movies.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return MovieDetail{}, errMovieNotFound
		}
		return MovieDetail{}, err
	}
	stats, err := repo.Ratings.Stats(ctx, id)
	if err != nil {
		return MovieDetail{}, err
	}
	return toMovieDetail(movie, stats), nil
}

func checkDirector(ctx context.Context, repo *repository.Repository, id int64) error {
	exists, err := repo.Directors.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return errDirectorNotFound
	}
	return nil
}

// checkGenres expects ids to be de-duplicated.
func checkGenres(ctx context.Context, repo *repository.Repository, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := repo.Genres.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return errGenreNotFound
	}
	return nil
}

// dedupeIDs drops repeated ids, keeping first-seen order.
func dedupeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
