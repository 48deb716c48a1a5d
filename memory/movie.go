package memory

import (
	"context"
	"slices"
	"sync"

	"movieapi/movie"
)

// MovieRepository implements movie.Repository on top of an ordered slice.
// Ids come from a counter that only moves forward, so deleted ids are never
// handed out again.
type MovieRepository struct {
	mu     sync.Mutex
	movies []movie.Movie
	lastID int
}

// NewMovieRepository creates an empty movie repository
func NewMovieRepository() *MovieRepository {
	return &MovieRepository{movies: []movie.Movie{}}
}

// CreateMovie assigns the next id and appends the movie
func (r *MovieRepository) CreateMovie(_ context.Context, m movie.Movie) (movie.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	m.ID = r.lastID
	r.movies = append(r.movies, m)
	return m, nil
}

// AllMovies returns a copy of the collection in insertion order
func (r *MovieRepository) AllMovies(_ context.Context) ([]movie.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.movies), nil
}

func (r *MovieRepository) GetByID(_ context.Context, id int) (movie.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	return r.movies[i], nil
}

// ReplaceMovie overwrites the stored movie with the same id, keeping its position
func (r *MovieRepository) ReplaceMovie(_ context.Context, m movie.Movie) (movie.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(m.ID)
	if i < 0 {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	r.movies[i] = m
	return m, nil
}

// DeleteMovie removes the movie and returns what was stored
func (r *MovieRepository) DeleteMovie(_ context.Context, id int) (movie.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	removed := r.movies[i]
	r.movies = slices.Delete(r.movies, i, i+1)
	return removed, nil
}

// Len reports the number of stored movies
func (r *MovieRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.movies)
}

// indexOf must be called with mu held.
func (r *MovieRepository) indexOf(id int) int {
	return slices.IndexFunc(r.movies, func(m movie.Movie) bool {
		return m.ID == id
	})
}
