package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/Clark-Hu/movie-catalog/internal/apperr"
	"github.com/Clark-Hu/movie-catalog/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MovieInput is the payload for creating a movie.
type MovieInput struct {
	Title       string  `json:"title" validate:"required,max=255,pgtext"`
	DirectorID  *int64  `json:"director_id" validate:"required"`
	ReleaseYear *int    `json:"release_year" validate:"required,min=1888,max=2100"`
	Cast        *string `json:"cast" validate:"omitnil,pgtext"`
	GenreIDs    []int64 `json:"genre_ids"`
}

// MovieUpdateInput is a partial update. A nil field is left untouched; a
// non-nil GenreIDs replaces the genre set, even when empty.
type MovieUpdateInput struct {
	Title       *string  `json:"title" validate:"omitnil,min=1,max=255,pgtext"`
	DirectorID  *int64   `json:"director_id"`
	ReleaseYear *int     `json:"release_year" validate:"omitnil,min=1888,max=2100"`
	Cast        *string  `json:"cast" validate:"omitnil,pgtext"`
	GenreIDs    *[]int64 `json:"genre_ids"`
}

type RatingInput struct {
	Score *int `json:"score" validate:"required,min=1,max=10"`
}

// ListQuery selects one page of the movie listing. Nil filters are ignored.
type ListQuery struct {
	Page        int
	PageSize    int
	Title       *string
	ReleaseYear *int
	Genre       *string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("pgtext", func(fl validator.FieldLevel) bool {
		return ValidText(fl.Field().String())
	})
	return v
}

// ValidText reports whether s can be stored in a Postgres text column:
// valid UTF-8 with no NUL bytes.
func ValidText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// Validate checks v against its validate tags. The first failing field is
// reported as an Unprocessable error naming that field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Internal("validation failed", err)
	}
	return apperr.Unprocessable(fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not be empty", field)
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "pgtext":
		return fmt.Sprintf("%s must be valid UTF-8 without NUL characters", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func validateListQuery(q ListQuery) error {
	if q.Page < 1 {
		return apperr.Unprocessable("page must be at least 1")
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return apperr.Unprocessable(fmt.Sprintf("page_size must be between 1 and %d", MaxPageSize))
	}
	if q.ReleaseYear != nil && !validYear(*q.ReleaseYear) {
		return apperr.Unprocessable(fmt.Sprintf("release_year must be between %d and %d", domain.MinReleaseYear, domain.MaxReleaseYear))
	}
	if q.Title != nil && !ValidText(*q.Title) {
		return apperr.Unprocessable("title must be valid UTF-8 without NUL characters")
	}
	if q.Genre != nil && !ValidText(*q.Genre) {
		return apperr.Unprocessable("genre must be valid UTF-8 without NUL characters")
	}
	return nil
}

func validYear(year int) bool {
	return year >= domain.MinReleaseYear && year <= domain.MaxReleaseYear
}
