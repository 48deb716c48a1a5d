package movie

import (
	"strings"
	"unicode/utf8"

	"movieapi/errs"
)

// MinGenreLength is the minimum number of characters in a genre.
const MinGenreLength = 2

var (
	ErrInvalidTitle    = errs.Errorf(errs.EUNPROCESSABLE, "movie: title must not be empty")
	ErrInvalidPlaytime = errs.Errorf(errs.EUNPROCESSABLE, "movie: playtime must be greater than 0")
	ErrInvalidGenre    = errs.Errorf(errs.EUNPROCESSABLE, "movie: genre must be at least 2 characters")
	ErrMovieNotFound   = errs.Errorf(errs.ENOTFOUND, "movie: not found")
)

type Movie struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Playtime int    `json:"playtime"`
	Genre    string `json:"genre"`
}

// Validate checks the caller supplied fields. ID is owned by the store and
// is not checked here.
func (m Movie) Validate() error {
	if m.Title == "" {
		return ErrInvalidTitle
	}

	if m.Playtime <= 0 {
		return ErrInvalidPlaytime
	}

	if utf8.RuneCountInString(m.Genre) < MinGenreLength {
		return ErrInvalidGenre
	}

	return nil
}

// Filter narrows a listing by case-insensitive substring match.
// Empty fields are ignored.
type Filter struct {
	Title string
	Genre string
}

func (f Filter) IsEmpty() bool {
	return f.Title == "" && f.Genre == ""
}

func (f Filter) Match(m Movie) bool {
	if f.Title != "" && !containsFold(m.Title, f.Title) {
		return false
	}
	if f.Genre != "" && !containsFold(m.Genre, f.Genre) {
		return false
	}
	return true
}

// Apply returns the movies matching f in their original order. When f is
// set but nothing matches, the whole input is returned instead.
func (f Filter) Apply(movies []Movie) []Movie {
	if f.IsEmpty() {
		return movies
	}

	matched := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if f.Match(m) {
			matched = append(matched, m)
		}
	}

	if len(matched) == 0 {
		return movies
	}
	return matched
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
