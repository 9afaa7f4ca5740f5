package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("Movie not found"), http.StatusNotFound},
		{"bad request", BadRequest("director_id does not exist"), http.StatusBadRequest},
		{"unprocessable", Unprocessable("page must be >= 1"), http.StatusUnprocessableEntity},
		{"internal", Internal("failed", errors.New("db down")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("service: %w", NotFound("Movie not found")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestMessageHidesInternalDetails(t *testing.T) {
	assert.Equal(t, "Movie not found", Message(NotFound("Movie not found")))
	assert.Equal(t, "internal server error", Message(errors.New("password=hunter2")))
	assert.Equal(t, "internal server error", Message(Internal("list movies", errors.New("conn reset"))))
}

func TestPredicatesAndUnwrap(t *testing.T) {
	cause := errors.New("conn reset")
	err := Wrap(KindBadRequest, "bad", cause)

	assert.True(t, IsBadRequest(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsUnprocessable(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "BAD_REQUEST: bad: conn reset", err.Error())
	assert.Equal(t, KindInternal, KindOf(cause))
}
