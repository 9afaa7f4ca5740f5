package httpserver

import (
	"net/http"

	"github.com/Clark-Hu/movie-catalog/internal/catalog"
)

func (s *Server) handleCreateRating(w http.ResponseWriter, r *http.Request) {
	movieID, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req catalog.RatingInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := catalog.Validate(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	rating, err := s.catalog.CreateRating(r.Context(), movieID, *req.Score)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusCreated, rating)
}
