package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-catalog/internal/apperr"
	"github.com/Clark-Hu/movie-catalog/internal/catalog"
)

const maxRequestBody = 1 << 20 // 1 MiB

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

type successResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

type failureResponse struct {
	Status string       `json:"status"`
	Error  errorPayload `json:"error"`
}

type errorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	query, err := buildListQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page, err := s.catalog.ListMovies(r.Context(), query)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusOK, page)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	detail, err := s.catalog.GetMovieDetail(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusOK, detail)
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req catalog.MovieInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	detail, err := s.catalog.CreateMovie(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/movies/%d", s.cfg.APIBasePath, detail.ID))
	s.respondSuccess(w, http.StatusCreated, detail)
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req catalog.MovieUpdateInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	detail, err := s.catalog.UpdateMovie(r.Context(), id, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSuccess(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.catalog.DeleteMovie(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildListQuery parses listing parameters, applying the default page and
// page size. Range checks are left to the catalog.
func buildListQuery(values url.Values) (catalog.ListQuery, error) {
	query := catalog.ListQuery{
		Page:     catalog.DefaultPage,
		PageSize: catalog.DefaultPageSize,
	}

	var err error
	if query.Page, err = intParam(values, "page", query.Page); err != nil {
		return query, err
	}
	if query.PageSize, err = intParam(values, "page_size", query.PageSize); err != nil {
		return query, err
	}
	if val := strings.TrimSpace(values.Get("release_year")); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil {
			return query, apperr.Unprocessable("release_year must be an integer")
		}
		query.ReleaseYear = &year
	}
	if query.Title, err = textParam(values, "title"); err != nil {
		return query, err
	}
	if query.Genre, err = textParam(values, "genre"); err != nil {
		return query, err
	}
	return query, nil
}

// textParam returns the trimmed value of a text filter, or nil when it is empty.
func textParam(values url.Values, name string) (*string, error) {
	val := strings.TrimSpace(values.Get(name))
	if val == "" {
		return nil, nil
	}
	if !catalog.ValidText(val) {
		return nil, apperr.Unprocessable(fmt.Sprintf("%s must be valid UTF-8 without NUL characters", name))
	}
	return &val, nil
}

func intParam(values url.Values, name string, fallback int) (int, error) {
	val := strings.TrimSpace(values.Get(name))
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, apperr.Unprocessable(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

func movieIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Unprocessable("id must be an integer")
	}
	return id, nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	if err := writeJSON(w, status, payload); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondSuccess(w http.ResponseWriter, status int, data interface{}) {
	s.respondJSON(w, status, successResponse{Status: statusSuccess, Data: data})
}

func (s *Server) respondFailure(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, failureResponse{
		Status: statusFailure,
		Error:  errorPayload{Code: status, Message: message},
	})
}

// respondError maps err onto its status code. Unclassified errors are logged
// and reported without detail.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Code(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	s.respondFailure(w, status, apperr.Message(err))
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError), errors.Is(err, io.ErrUnexpectedEOF):
		s.respondFailure(w, http.StatusUnprocessableEntity, "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondFailure(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondFailure(w, http.StatusUnprocessableEntity, "Request body cannot be empty")
	case errors.As(err, &maxBytesError):
		s.respondFailure(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		s.respondFailure(w, http.StatusUnprocessableEntity, fmt.Sprintf("Unknown field %s", field))
	default:
		s.respondFailure(w, http.StatusUnprocessableEntity, "Unable to parse request body")
	}
}
