package httpserver

import (
	"fmt"

	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"movieapi/movie"
	"movieapi/pkg/config"
)

type Options func(s *Server) error

func WithConfig(cfg *config.Config) Options {
	return func(s *Server) error {
		s.Config = cfg
		s.AllowOrigins = cfg.Origins()
		if cfg.Port > 0 {
			s.Addr = fmt.Sprintf(":%d", cfg.Port)
		}
		return nil
	}
}

func WithLogger(l *zap.SugaredLogger) Options {
	return func(s *Server) error {
		s.Logger = l
		return nil
	}
}

func WithMovieService(svc movie.Service) Options {
	return func(s *Server) error {
		s.MovieService = svc
		return nil
	}
}

func WithRateLimiterStore(store middleware.RateLimiterStore) Options {
	return func(s *Server) error {
		s.RateLimiterStore = store
		return nil
	}
}
