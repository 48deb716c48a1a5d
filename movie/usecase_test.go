package movie_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"movieapi/movie"
)

type MockMovieRepository struct {
	mock.Mock
}

func (m *MockMovieRepository) CreateMovie(ctx context.Context, mv movie.Movie) (movie.Movie, error) {
	args := m.Called(ctx, mv)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieRepository) AllMovies(ctx context.Context) ([]movie.Movie, error) {
	args := m.Called(ctx)
	return args.Get(0).([]movie.Movie), args.Error(1)
}

func (m *MockMovieRepository) GetByID(ctx context.Context, id int) (movie.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieRepository) ReplaceMovie(ctx context.Context, mv movie.Movie) (movie.Movie, error) {
	args := m.Called(ctx, mv)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieRepository) DeleteMovie(ctx context.Context, id int) (movie.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(movie.Movie), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, e movie.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func eventOf(t movie.EventType, mv movie.Movie) interface{} {
	return mock.MatchedBy(func(e movie.Event) bool {
		return e.Type == t && e.Movie == mv && !e.OccurredAt.IsZero()
	})
}

func TestCreateMovie(t *testing.T) {
	t.Run("should create movie and publish event", func(t *testing.T) {
		r := new(MockMovieRepository)
		p := new(MockEventPublisher)
		uc := movie.NewUsecase(r, p)
		input := movie.Movie{Title: "Dune", Playtime: 155, Genre: "Sci-Fi"}
		created := movie.Movie{ID: 1, Title: "Dune", Playtime: 155, Genre: "Sci-Fi"}
		r.On("CreateMovie", mock.Anything, input).Return(created, nil).Once()
		p.On("Publish", mock.Anything, eventOf(movie.EventCreated, created)).Return(nil).Once()

		result, err := uc.CreateMovie(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, created, result)
		r.AssertExpectations(t)
		p.AssertExpectations(t)
	})

	t.Run("should fail on non positive playtime without touching the store", func(t *testing.T) {
		r := new(MockMovieRepository)
		p := new(MockEventPublisher)
		uc := movie.NewUsecase(r, p)

		for _, playtime := range []int{0, -1, -155} {
			_, err := uc.CreateMovie(context.Background(), movie.Movie{Title: "Dune", Playtime: playtime, Genre: "Sci-Fi"})
			assert.Equal(t, movie.ErrInvalidPlaytime, err)
		}

		r.AssertNotCalled(t, "CreateMovie", mock.Anything, mock.Anything)
		p.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("should fail on empty title", func(t *testing.T) {
		r := new(MockMovieRepository)
		uc := movie.NewUsecase(r, nil)

		_, err := uc.CreateMovie(context.Background(), movie.Movie{Playtime: 100, Genre: "Drama"})

		assert.Equal(t, movie.ErrInvalidTitle, err)
		r.AssertNotCalled(t, "CreateMovie", mock.Anything, mock.Anything)
	})

	t.Run("should fail on short genre", func(t *testing.T) {
		r := new(MockMovieRepository)
		uc := movie.NewUsecase(r, nil)

		_, err := uc.CreateMovie(context.Background(), movie.Movie{Title: "Up", Playtime: 96, Genre: "A"})

		assert.Equal(t, movie.ErrInvalidGenre, err)
		r.AssertNotCalled(t, "CreateMovie", mock.Anything, mock.Anything)
	})

	t.Run("should ignore publisher failures", func(t *testing.T) {
		r := new(MockMovieRepository)
		p := new(MockEventPublisher)
		uc := movie.NewUsecase(r, p)
		input := movie.Movie{Title: "Up", Playtime: 96, Genre: "Animation"}
		created := movie.Movie{ID: 2, Title: "Up", Playtime: 96, Genre: "Animation"}
		r.On("CreateMovie", mock.Anything, input).Return(created, nil).Once()
		p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		result, err := uc.CreateMovie(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, created, result)
		p.AssertExpectations(t)
	})
}

func TestListMovies(t *testing.T) {
	movies := []movie.Movie{
		{ID: 1, Title: "Dune", Playtime: 155, Genre: "Sci-Fi"},
		{ID: 2, Title: "Up", Playtime: 96, Genre: "Animation"},
	}

	t.Run("should return filtered movies", func(t *testing.T) {
		r := new(MockMovieRepository)
		uc := movie.NewUsecase(r, nil)
		r.On("AllMovies", mock.Anything).Return(movies, nil).Once()

		result, err := uc.ListMovies(context.Background(), movie.Filter{Genre: "anim"})

		require.NoError(t, err)
		assert.Equal(t, movies[1:], result)
		r.AssertExpectations(t)
	})

	t.Run("should fall back to all movies when nothing matches", func(t *testing.T) {
		r := new(MockMovieRepository)
		uc := movie.NewUsecase(r, nil)
		r.On("AllMovies", mock.Anything).Return(movies, nil).Once()

		result, err := uc.ListMovies(context.Background(), movie.Filter{Genre: "zz"})

		require.NoError(t, err)
		assert.Equal(t, movies, result)
	})

	t.Run("should propagate repository errors", func(t *testing.T) {
		r := new(MockMovieRepository)
		uc := movie.NewUsecase(r, nil)
		r.On("AllMovies", mock.Anything).Return([]movie.Movie(nil), errors.New("boom")).Once()

		_, err := uc.ListMovies(context.Background(), movie.Filter{})

		assert.EqualError(t, err, "boom")
	})
}

func TestGetMovie(t *testing.T) {
	r := new(MockMovieRepository)
	uc := movie.NewUsecase(r, nil)
	up := movie.Movie{ID: 2, Title: "Up", Playtime: 96, Genre: "Animation"}
	r.On("GetByID", mock.Anything, 2).Return(up, nil).Once()
	r.On("GetByID", mock.Anything, 7).Return(movie.Movie{}, movie.ErrMovieNotFound).Once()

	t.Run("should return the movie", func(t *testing.T) {
		result, err := uc.GetMovie(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, up, result)
	})

	t.Run("should return not found", func(t *testing.T) {
		_, err := uc.GetMovie(context.Background(), 7)

		assert.Equal(t, movie.ErrMovieNotFound, err)
	})

	r.AssertExpectations(t)
}

func TestUpdateMovie(t *testing.T) {
	t.Run("should replace fields and keep the id", func(t *testing.T) {
		r := new(MockMovieRepository)
		p := new(MockEventPublisher)
		uc := movie.NewUsecase(r, p)
		replacement := movie.Movie{ID: 1, Title: "Dune: Part One", Playtime: 156, Genre: "Science Fiction"}
		r.On("ReplaceMovie", mock.Anything, replacement).Return(replacement, nil).Once()
		p.On("Publish", mock.Anything, eventOf(movie.EventUpdated, replacement)).Return(nil).Once()

		result, err := uc.UpdateMovie(context.Background(), 1, movie.Movie{ID: 99, Title: "Dune: Part One", Playtime: 156, Genre: "Science Fiction"})

		require.NoError(t, err)
		assert.Equal(t, replacement, result)
		r.AssertExpectations(t)
		p.AssertExpectations(t)
	})

	t.Run("should validate before looking up the movie", func(t *testing.T) {
		r := new(MockMovieRepository)
		uc := movie.NewUsecase(r, nil)

		_, err := uc.UpdateMovie(context.Background(), 1, movie.Movie{Title: "Dune", Playtime: 0, Genre: "Sci-Fi"})

		assert.Equal(t, movie.ErrInvalidPlaytime, err)
		r.AssertNotCalled(t, "ReplaceMovie", mock.Anything, mock.Anything)
	})

	t.Run("should not publish when the movie is missing", func(t *testing.T) {
		r := new(MockMovieRepository)
		p := new(MockEventPublisher)
		uc := movie.NewUsecase(r, p)
		r.On("ReplaceMovie", mock.Anything, mock.Anything).Return(movie.Movie{}, movie.ErrMovieNotFound).Once()

		_, err := uc.UpdateMovie(context.Background(), 5, movie.Movie{Title: "Dune", Playtime: 155, Genre: "Sci-Fi"})

		assert.Equal(t, movie.ErrMovieNotFound, err)
		p.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestDeleteMovie(t *testing.T) {
	t.Run("should delete and publish the removed movie", func(t *testing.T) {
		r := new(MockMovieRepository)
		p := new(MockEventPublisher)
		uc := movie.NewUsecase(r, p)
		dune := movie.Movie{ID: 1, Title: "Dune", Playtime: 155, Genre: "Sci-Fi"}
		r.On("DeleteMovie", mock.Anything, 1).Return(dune, nil).Once()
		p.On("Publish", mock.Anything, eventOf(movie.EventDeleted, dune)).Return(nil).Once()

		err := uc.DeleteMovie(context.Background(), 1)

		require.NoError(t, err)
		r.AssertExpectations(t)
		p.AssertExpectations(t)
	})

	t.Run("should return not found", func(t *testing.T) {
		r := new(MockMovieRepository)
		p := new(MockEventPublisher)
		uc := movie.NewUsecase(r, p)
		r.On("DeleteMovie", mock.Anything, 3).Return(movie.Movie{}, movie.ErrMovieNotFound).Once()

		err := uc.DeleteMovie(context.Background(), 3)

		assert.Equal(t, movie.ErrMovieNotFound, err)
		p.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}
