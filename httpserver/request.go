package httpserver

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"movieapi/movie"
)

// MovieRequest is the body of POST /movies and PUT /movies/{id}.
type MovieRequest struct {
	Title    string `json:"title" validate:"required" example:"Dune"`
	Playtime int    `json:"playtime" validate:"gt=0" example:"155"`
	Genre    string `json:"genre" validate:"required,min=2" example:"Sci-Fi"`
}

// UnmarshalJSON accepts playtime as an integer, an integral number such as
// 155.0, or a string holding an integer. Anything else is a
// *json.UnmarshalTypeError naming the field.
func (r *MovieRequest) UnmarshalJSON(data []byte) error {
	var body struct {
		Title    string          `json:"title"`
		Playtime json.RawMessage `json:"playtime"`
		Genre    string          `json:"genre"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}

	playtime, err := parsePlaytime(body.Playtime)
	if err != nil {
		return err
	}

	*r = MovieRequest{Title: body.Title, Playtime: playtime, Genre: body.Genre}
	return nil
}

func parsePlaytime(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
			return int(f), nil
		}
		return 0, playtimeTypeError("number " + string(raw))
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
		return 0, playtimeTypeError("string")
	}

	return 0, playtimeTypeError(string(raw))
}

func playtimeTypeError(value string) *json.UnmarshalTypeError {
	return &json.UnmarshalTypeError{
		Value: value,
		Type:  reflect.TypeOf(0),
		Field: "playtime",
	}
}

func (r MovieRequest) ToMovie() movie.Movie {
	return movie.Movie{
		Title:    r.Title,
		Playtime: r.Playtime,
		Genre:    r.Genre,
	}
}
