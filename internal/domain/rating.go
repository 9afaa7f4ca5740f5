package domain

import "time"

const (
	MinScore = 1
	MaxScore = 10

	MinReleaseYear = 1888
	MaxReleaseYear = 2100
)

// Rating is a single append-only score for a movie.
type Rating struct {
	ID        int64
	MovieID   int64
	Score     int
	CreatedAt time.Time
}

// RatingStats aggregates all ratings of a movie. Average is nil when Count is 0.
type RatingStats struct {
	Average *float64
	Count   int64
}
