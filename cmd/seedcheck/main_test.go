package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Clark-Hu/movie-catalog/internal/catalog"
)

func TestReport(t *testing.T) {
	want := expectations{Movies: 1000, MinDirectors: 1000}

	tests := []struct {
		name    string
		inv     catalog.Inventory
		ok      bool
		snippet string
	}{
		{name: "seeded", inv: catalog.Inventory{Movies: 1000, Directors: 1001, Genres: 20, Ratings: 5000}, ok: true, snippet: "Ratings loaded: 5000"},
		{name: "too few movies", inv: catalog.Inventory{Movies: 999, Directors: 1500}, ok: false, snippet: "Expected 1000 movies, found 999"},
		{name: "directors not above minimum", inv: catalog.Inventory{Movies: 1000, Directors: 1000}, ok: false, snippet: "Expected > 1000 directors, found 1000"},
		{name: "empty", inv: catalog.Inventory{}, ok: false, snippet: "Seeding failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.ok, report(&buf, tt.inv, want))
			assert.Contains(t, buf.String(), tt.snippet)
		})
	}
}
