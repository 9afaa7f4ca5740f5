package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-catalog/internal/catalog"
	"github.com/Clark-Hu/movie-catalog/internal/logger"
	"github.com/Clark-Hu/movie-catalog/internal/repository"
	"github.com/Clark-Hu/movie-catalog/internal/store"
)

type expectations struct {
	Movies       int64
	MinDirectors int64
}

func main() {
	var (
		dbURL        = flag.String("db-url", os.Getenv("DB_URL"), "postgres connection string (defaults to $DB_URL)")
		movies       = flag.Int64("movies", 1000, "exact number of movies expected")
		minDirectors = flag.Int64("min-directors", 1000, "directors must exceed this count")
		timeout      = flag.Duration("timeout", 30*time.Second, "overall timeout")
	)
	flag.Parse()

	log, err := logger.New("movies-seedcheck", "development", "warn", "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *dbURL == "" {
		log.Fatal("db url is required: pass -db-url or set DB_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	st, err := store.New(ctx, *dbURL, store.Options{MaxConns: 4, Logger: log})
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer st.Close()

	inv, err := catalog.NewService(repository.New(st), log).Inventory(ctx)
	if err != nil {
		log.Error("count catalog tables", zap.Error(err))
		st.Close()
		os.Exit(1)
	}

	if !report(os.Stdout, inv, expectations{Movies: *movies, MinDirectors: *minDirectors}) {
		st.Close()
		os.Exit(1)
	}
}

// report prints the seeding outcome and reports whether it met want.
func report(w io.Writer, inv catalog.Inventory, want expectations) bool {
	if inv.Movies == want.Movies && inv.Directors > want.MinDirectors {
		fmt.Fprintln(w, "Seeding successful")
		fmt.Fprintf(w, "   - Movies loaded: %d\n", inv.Movies)
		fmt.Fprintf(w, "   - Directors loaded: %d\n", inv.Directors)
		fmt.Fprintf(w, "   - Genres loaded: %d\n", inv.Genres)
		fmt.Fprintf(w, "   - Ratings loaded: %d\n", inv.Ratings)
		return true
	}

	fmt.Fprintln(w, "Seeding failed")
	fmt.Fprintf(w, "   - Expected %d movies, found %d\n", want.Movies, inv.Movies)
	fmt.Fprintf(w, "   - Expected > %d directors, found %d\n", want.MinDirectors, inv.Directors)
	return false
}
