package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
	"github.com/Clark-Hu/movie-catalog/internal/testutil"
)

type testEnv struct {
	*testutil.Postgres
	ctx        context.Context
	repository *Repository
}

func newTestEnv(tb testing.TB) *testEnv {
	tb.Helper()
	pg := testutil.NewPostgres(tb)
	return &testEnv{Postgres: pg, ctx: pg.Ctx, repository: NewWithDB(pg.Pool)}
}

func mustCreateMovie(tb testing.TB, env *testEnv, title string, directorID int64, year int, genreIDs ...int64) domain.Movie {
	tb.Helper()
	movie, err := env.repository.Movies.Insert(env.ctx, MovieCreateParams{
		Title:       title,
		DirectorID:  directorID,
		ReleaseYear: year,
	})
	if err != nil {
		tb.Fatalf("create movie %q: %v", title, err)
	}
	if err := env.repository.Movies.ReplaceGenres(env.ctx, movie.ID, genreIDs); err != nil {
		tb.Fatalf("link genres for %q: %v", title, err)
	}
	return movie
}

func mustRate(tb testing.TB, env *testEnv, movieID int64, scores ...int) {
	tb.Helper()
	for _, score := range scores {
		if _, err := env.repository.Ratings.Insert(env.ctx, movieID, score); err != nil {
			tb.Fatalf("rate movie %d: %v", movieID, err)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func TestMoviesRepository_InsertFindUpdate(t *testing.T) {
	env := newTestEnv(t)

	directorID := env.SeedDirector(t, "Christopher Nolan")
	otherDirector := env.SeedDirector(t, "Denis Villeneuve")
	scifi := env.SeedGenre(t, "Sci-Fi")
	drama := env.SeedGenre(t, "Drama")

	created, err := env.repository.Movies.Insert(env.ctx, MovieCreateParams{
		Title:       "Interstellar",
		DirectorID:  directorID,
		ReleaseYear: 2014,
		Cast:        ptr("Matthew McConaughey"),
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())

	require.NoError(t, env.repository.Movies.ReplaceGenres(env.ctx, created.ID, []int64{drama, scifi}))

	found, err := env.repository.Movies.Find(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Interstellar", found.Title)
	assert.Equal(t, directorID, found.Director.ID)
	assert.Equal(t, "Christopher Nolan", found.Director.Name)
	require.NotNil(t, found.Cast)
	assert.Equal(t, "Matthew McConaughey", *found.Cast)
	assert.Equal(t, []string{"Sci-Fi", "Drama"}, found.GenreNames())

	updatedAt, err := env.repository.Movies.Update(env.ctx, created.ID, MovieUpdateParams{
		DirectorID: ptr(otherDirector),
	})
	require.NoError(t, err)
	assert.False(t, updatedAt.Before(found.UpdatedAt))

	found, err = env.repository.Movies.Find(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Denis Villeneuve", found.Director.Name)
	assert.Equal(t, "Interstellar", found.Title, "absent fields keep their value")
	assert.Equal(t, 2014, found.ReleaseYear)
	require.NotNil(t, found.Cast)

	_, err = env.repository.Movies.Find(env.ctx, 999_999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.repository.Movies.Update(env.ctx, 999_999, MovieUpdateParams{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoviesRepository_FindWithoutGenres(t *testing.T) {
	env := newTestEnv(t)

	directorID := env.SeedDirector(t, "Greta Gerwig")
	movie := mustCreateMovie(t, env, "Lady Bird", directorID, 2017)

	found, err := env.repository.Movies.Find(env.ctx, movie.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.Genres)
	assert.Empty(t, found.Genres)
	assert.Nil(t, found.Cast)
}

func TestMoviesRepository_ReplaceGenres(t *testing.T) {
	env := newTestEnv(t)

	directorID := env.SeedDirector(t, "Bong Joon-ho")
	drama := env.SeedGenre(t, "Drama")
	thriller := env.SeedGenre(t, "Thriller")
	comedy := env.SeedGenre(t, "Comedy")
	movie := mustCreateMovie(t, env, "Parasite", directorID, 2019, drama, thriller)

	require.NoError(t, env.repository.Movies.ReplaceGenres(env.ctx, movie.ID, []int64{comedy, comedy}))
	found, err := env.repository.Movies.Find(env.ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Comedy"}, found.GenreNames())

	require.NoError(t, env.repository.Movies.ReplaceGenres(env.ctx, movie.ID, nil))
	links := env.CountWhere(t, `SELECT COUNT(*) FROM movie_genres WHERE movie_id = $1`, movie.ID)
	assert.Zero(t, links)
}

func TestMoviesRepository_ListFiltersAndPagination(t *testing.T) {
	env := newTestEnv(t)

	directorID := env.SeedDirector(t, "Various")
	drama := env.SeedGenre(t, "Drama")
	comedy := env.SeedGenre(t, "Comedy")

	godfather := mustCreateMovie(t, env, "The Godfather", directorID, 1972, drama)
	mustCreateMovie(t, env, "Airplane!", directorID, 1980, comedy)
	dramedy := mustCreateMovie(t, env, "The Godfather Part II", directorID, 1974, drama, comedy)
	mustCreateMovie(t, env, "100% Wolf", directorID, 2020)

	t.Run("no filters orders by id", func(t *testing.T) {
		result, err := env.repository.Movies.List(env.ctx, MovieListFilters{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 4, result.Total)
		require.Len(t, result.Items, 4)
		for i := 1; i < len(result.Items); i++ {
			assert.Less(t, result.Items[i-1].ID, result.Items[i].ID)
		}
	})

	t.Run("pages do not overlap and total ignores page", func(t *testing.T) {
		seen := map[int64]bool{}
		for page := 1; page <= 3; page++ {
			result, err := env.repository.Movies.List(env.ctx, MovieListFilters{Page: page, PageSize: 2})
			require.NoError(t, err)
			assert.EqualValues(t, 4, result.Total)
			assert.LessOrEqual(t, len(result.Items), 2)
			for _, m := range result.Items {
				assert.False(t, seen[m.ID], "movie %d returned twice", m.ID)
				seen[m.ID] = true
			}
		}
		assert.Len(t, seen, 4)
	})

	t.Run("title is case-insensitive substring", func(t *testing.T) {
		result, err := env.repository.Movies.List(env.ctx, MovieListFilters{Title: ptr("GODFATHER"), Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, result.Total)
	})

	t.Run("genre matches any linked genre", func(t *testing.T) {
		result, err := env.repository.Movies.List(env.ctx, MovieListFilters{Genre: ptr("dra"), Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, result.Items, 2)
		assert.Equal(t, godfather.ID, result.Items[0].ID)
		assert.Equal(t, dramedy.ID, result.Items[1].ID)
		assert.Equal(t, []string{"Drama", "Comedy"}, result.Items[1].GenreNames(), "genre filter must not trim the genre list")
	})

	t.Run("filters combine with AND", func(t *testing.T) {
		result, err := env.repository.Movies.List(env.ctx, MovieListFilters{
			Title:       ptr("godfather"),
			ReleaseYear: ptr(1974),
			Genre:       ptr("comedy"),
			Page:        1,
			PageSize:    10,
		})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, dramedy.ID, result.Items[0].ID)
	})

	t.Run("like metacharacters match literally", func(t *testing.T) {
		result, err := env.repository.Movies.List(env.ctx, MovieListFilters{Title: ptr("100%"), Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, result.Total)

		result, err = env.repository.Movies.List(env.ctx, MovieListFilters{Title: ptr("%"), Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, result.Total)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		result, err := env.repository.Movies.List(env.ctx, MovieListFilters{Page: 5, PageSize: 10})
		require.NoError(t, err)
		assert.Empty(t, result.Items)
		assert.EqualValues(t, 4, result.Total)
	})

	t.Run("huge page does not overflow the offset", func(t *testing.T) {
		result, err := env.repository.Movies.List(env.ctx, MovieListFilters{Page: math.MaxInt, PageSize: 10})
		require.NoError(t, err)
		assert.NotNil(t, result.Items)
		assert.Empty(t, result.Items)
		assert.EqualValues(t, 4, result.Total)
	})
}

func TestMoviesRepository_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)

	directorID := env.SeedDirector(t, "Hayao Miyazaki")
	genreID := env.SeedGenre(t, "Animation")
	movie := mustCreateMovie(t, env, "Spirited Away", directorID, 2001, genreID)
	mustRate(t, env, movie.ID, 9, 10)

	require.NoError(t, env.repository.Movies.Delete(env.ctx, movie.ID))

	assert.Zero(t, env.CountWhere(t, `SELECT COUNT(*) FROM movie_ratings WHERE movie_id = $1`, movie.ID))
	assert.Zero(t, env.CountWhere(t, `SELECT COUNT(*) FROM movie_genres WHERE movie_id = $1`, movie.ID))
	assert.EqualValues(t, 1, env.CountWhere(t, `SELECT COUNT(*) FROM genres WHERE id = $1`, genreID))

	assert.ErrorIs(t, env.repository.Movies.Delete(env.ctx, movie.ID), ErrNotFound)
}

func TestDirectorsAndGenresRepository(t *testing.T) {
	env := newTestEnv(t)

	directorID := env.SeedDirector(t, "Agnès Varda")
	exists, err := env.repository.Directors.Exists(env.ctx, directorID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = env.repository.Directors.Exists(env.ctx, directorID+100)
	require.NoError(t, err)
	assert.False(t, exists)

	a := env.SeedGenre(t, "Documentary")
	b := env.SeedGenre(t, "Drama")
	genres, err := env.repository.Genres.FindByIDs(env.ctx, []int64{b, a, 12345})
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Documentary", genres[0].Name)

	genres, err = env.repository.Genres.FindByIDs(env.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, genres)
}

func TestRatingsRepository_InsertAndStats(t *testing.T) {
	env := newTestEnv(t)

	directorID := env.SeedDirector(t, "Akira Kurosawa")
	movie := mustCreateMovie(t, env, "Ran", directorID, 1985)
	unrated := mustCreateMovie(t, env, "Dreams", directorID, 1990)

	stats, err := env.repository.Ratings.Stats(env.ctx, movie.ID)
	require.NoError(t, err)
	assert.Nil(t, stats.Average, "average is absent, not zero, without ratings")
	assert.Zero(t, stats.Count)

	mustRate(t, env, movie.ID, 4, 6, 8)

	stats, err = env.repository.Ratings.Stats(env.ctx, movie.ID)
	require.NoError(t, err)
	require.NotNil(t, stats.Average)
	assert.InDelta(t, 6.0, *stats.Average, 1e-9)
	assert.EqualValues(t, 3, stats.Count)

	batch, err := env.repository.Ratings.StatsForMovies(env.ctx, []int64{movie.ID, unrated.ID})
	require.NoError(t, err)
	assert.Equal(t, stats.Count, batch[movie.ID].Count)
	assert.InDelta(t, *stats.Average, *batch[movie.ID].Average, 1e-9)
	_, ok := batch[unrated.ID]
	assert.False(t, ok)

	rating, err := env.repository.Ratings.Insert(env.ctx, movie.ID, 10)
	require.NoError(t, err)
	assert.NotZero(t, rating.ID)
	assert.Equal(t, movie.ID, rating.MovieID)
	assert.False(t, rating.CreatedAt.IsZero())
}

func TestRatingsRepository_RejectsBadScoreAndMissingMovie(t *testing.T) {
	env := newTestEnv(t)

	directorID := env.SeedDirector(t, "Sofia Coppola")
	movie := mustCreateMovie(t, env, "Lost in Translation", directorID, 2003)

	for _, score := range []int{0, 11} {
		_, err := env.repository.Ratings.Insert(env.ctx, movie.ID, score)
		require.Error(t, err, "score %d must violate the check constraint", score)
		assert.False(t, errors.Is(err, ErrNotFound))
	}

	_, err := env.repository.Ratings.Insert(env.ctx, 424242, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRatingsRepository_ConcurrentInserts(t *testing.T) {
	env := newTestEnv(t)

	directorID := env.SeedDirector(t, "Wong Kar-wai")
	movie := mustCreateMovie(t, env, "In the Mood for Love", directorID, 2000)

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			if _, err := env.repository.Ratings.Insert(env.ctx, movie.ID, score); err != nil {
				t.Errorf("insert rating %d: %v", score, err)
			}
		}(i%10 + 1)
	}
	wg.Wait()

	stats, err := env.repository.Ratings.Stats(env.ctx, movie.ID)
	require.NoError(t, err)
	assert.EqualValues(t, workers, stats.Count)
	require.NotNil(t, stats.Average)
	assert.InDelta(t, 5.5, *stats.Average, 1e-9)
}

func TestRepository_InTxRollsBack(t *testing.T) {
	env := newTestEnv(t)

	directorID := env.SeedDirector(t, "Jane Campion")
	sentinel := errors.New("abort")

	err := env.repository.InTx(env.ctx, func(tx *Repository) error {
		if _, err := tx.Movies.Insert(env.ctx, MovieCreateParams{Title: "The Piano", DirectorID: directorID, ReleaseYear: 1993}); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	count, err := env.repository.Movies.Count(env.ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func BenchmarkMoviesRepositoryList(b *testing.B) {
	env := newTestEnv(b)

	directorID := env.SeedDirector(b, "Bench")
	genreID := env.SeedGenre(b, "Drama")
	for i := 0; i < 200; i++ {
		mustCreateMovie(b, env, fmt.Sprintf("Bench Movie %d", i), directorID, 2000+i%20, genreID)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := env.repository.Movies.List(env.ctx, MovieListFilters{Genre: ptr("dra"), Page: 3, PageSize: 20})
		if err != nil {
			b.Fatalf("list: %v", err)
		}
	}
}

func BenchmarkRatingsRepositoryInsert(b *testing.B) {
	env := newTestEnv(b)

	directorID := env.SeedDirector(b, "Bench")
	movie := mustCreateMovie(b, env, "Bench Movie", directorID, 2020)
	for i := 0; i < b.N; i++ {
		if _, err := env.repository.Ratings.Insert(env.ctx, movie.ID, i%10+1); err != nil {
			b.Fatalf("insert: %v", err)
		}
	}
}
