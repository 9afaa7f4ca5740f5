package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-catalog/internal/logger"
	"github.com/Clark-Hu/movie-catalog/internal/store"
)

func main() {
	var (
		dbURL    = flag.String("db-url", os.Getenv("DB_URL"), "postgres connection string (defaults to $DB_URL)")
		down     = flag.Bool("down", false, "drop the schema instead of applying it")
		timeout  = flag.Duration("timeout", 30*time.Second, "overall timeout")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	log, err := logger.New("movies-migrate", "development", *logLevel, "console")
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

	st, err := store.New(ctx, *dbURL, store.Options{MaxConns: 1, Logger: log})
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer st.Close()

	if *down {
		err = st.Rollback(ctx)
	} else {
		err = st.Migrate(ctx)
	}
	if err != nil {
		log.Error("migration failed", zap.Bool("down", *down), zap.Error(err))
		st.Close()
		os.Exit(1)
	}
	log.Info("migration complete", zap.Bool("down", *down))
}
