package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"movieapi/errs"
	"movieapi/movie"
)

var (
	errInvalidBody    = errs.Errorf(errs.EINVALID, "invalid request body")
	errInvalidMovieID = errs.Errorf(errs.EUNPROCESSABLE, "id must be a positive integer")
)

func (s *Server) RegisterMovieRoutes(g *echo.Group) {
	g.POST("", s.handleCreateMovie)
	g.GET("", s.handleListMovies)
	g.GET("/:id", s.handleGetMovie)
	g.PUT("/:id", s.handleUpdateMovie)
	g.DELETE("/:id", s.handleDeleteMovie)
}

// handleCreateMovie godoc
// @Summary Create Movie
// @Description Register a new movie and return it with its assigned id
// @Tags movies
// @Accept json
// @Produce json
// @Param movie body MovieRequest true "Movie Data"
// @Success 201 {object} movie.Movie
// @Failure 400 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /movies [post]
func (s *Server) handleCreateMovie(c echo.Context) error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}

	req, err := bindMovieRequest(c)
	if err != nil {
		return err
	}

	created, err := s.MovieService.CreateMovie(c.Request().Context(), req.ToMovie())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// handleListMovies godoc
// @Summary List Movies
// @Description List movies, optionally filtered by title and genre (case-insensitive substring).
// @Description When a filter matches nothing the full list is returned.
// @Tags movies
// @Produce json
// @Param title query string false "Title contains"
// @Param genre query string false "Genre contains"
// @Param User-Agent header string false "Client user agent, logged with the session_id cookie"
// @Success 200 {array} movie.Movie
// @Router /movies [get]
func (s *Server) handleListMovies(c echo.Context) error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}

	s.Logger.Infow("list movies",
		"user_agent", c.Request().UserAgent(),
		"session_id", sessionID(c),
		"request_id", requestID(c),
	)

	movies, err := s.MovieService.ListMovies(c.Request().Context(), movie.Filter{
		Title: c.QueryParam("title"),
		Genre: c.QueryParam("genre"),
	})
	if err != nil {
		return err
	}
	if movies == nil {
		movies = []movie.Movie{}
	}

	return c.JSON(http.StatusOK, movies)
}

// handleGetMovie godoc
// @Summary Get Movie
// @Description Get a movie by id
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} movie.Movie
// @Failure 404 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /movies/{id} [get]
func (s *Server) handleGetMovie(c echo.Context) error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}

	id, err := movieID(c)
	if err != nil {
		return err
	}

	m, err := s.MovieService.GetMovie(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, m)
}

// handleUpdateMovie godoc
// @Summary Update Movie
// @Description Replace every field of a movie, keeping its id
// @Tags movies
// @Accept json
// @Produce json
// @Param id path int true "Movie ID"
// @Param movie body MovieRequest true "Movie Data"
// @Success 200 {object} movie.Movie
// @Failure 404 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /movies/{id} [put]
func (s *Server) handleUpdateMovie(c echo.Context) error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}

	id, err := movieID(c)
	if err != nil {
		return err
	}

	req, err := bindMovieRequest(c)
	if err != nil {
		return err
	}

	updated, err := s.MovieService.UpdateMovie(c.Request().Context(), id, req.ToMovie())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// handleDeleteMovie godoc
// @Summary Delete Movie
// @Description Delete a movie by id
// @Tags movies
// @Param id path int true "Movie ID"
// @Success 204
// @Failure 404 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /movies/{id} [delete]
func (s *Server) handleDeleteMovie(c echo.Context) error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}

	id, err := movieID(c)
	if err != nil {
		return err
	}

	if err := s.MovieService.DeleteMovie(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func bindMovieRequest(c echo.Context) (MovieRequest, error) {
	var req MovieRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return MovieRequest{}, errs.Errorf(errs.EUNPROCESSABLE, "validation error: %s failed on type", field)
		}
		return MovieRequest{}, errInvalidBody
	}
	if err := c.Validate(&req); err != nil {
		return MovieRequest{}, err
	}
	return req, nil
}

func movieID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errInvalidMovieID
	}
	return id, nil
}

// sessionID returns the session_id cookie, or "" when the client sent none.
func sessionID(c echo.Context) string {
	cookie, err := c.Cookie("session_id")
	if err != nil {
		return ""
	}
	return cookie.Value
}
