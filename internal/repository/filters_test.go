package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "dra", want: "%dra%"},
		{in: "100%", want: `%100\%%`},
		{in: "snake_case", want: `%snake\_case%`},
		{in: `back\slash`, want: `%back\\slash%`},
		{in: "", want: "%%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, containsPattern(tt.in), "input %q", tt.in)
	}
}

func TestMovieListFiltersOffset(t *testing.T) {
	assert.EqualValues(t, 0, MovieListFilters{Page: 1, PageSize: 10}.Offset())
	assert.EqualValues(t, 20, MovieListFilters{Page: 3, PageSize: 10}.Offset())
	assert.EqualValues(t, 0, MovieListFilters{Page: 0, PageSize: 10}.Offset())
	assert.EqualValues(t, int64(math.MaxInt64), MovieListFilters{Page: math.MaxInt, PageSize: 10}.Offset())
	assert.EqualValues(t, int64(math.MaxInt64-1), MovieListFilters{Page: math.MaxInt, PageSize: 1}.Offset())
}
