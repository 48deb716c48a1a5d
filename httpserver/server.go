package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"movieapi/errs"
	"movieapi/movie"
	"movieapi/pkg/config"
	"movieapi/pkg/logger"
	"movieapi/pkg/sentry"
)

type Server struct {
	// Router is the Echo router instance
	Router *echo.Echo

	// Addr represents the address the server will listen on
	Addr string

	// Allowed origins for CORS
	AllowOrigins []string

	Config *config.Config
	Logger *zap.SugaredLogger

	// Registry collects the server's Prometheus metrics, served on /metrics
	Registry *prometheus.Registry

	// RateLimiterStore overrides the in-memory limiter, e.g. with Redis
	RateLimiterStore middleware.RateLimiterStore

	MovieService movie.Service
}

func New(options ...Options) (*Server, error) {
	s := Server{
		Router:   echo.New(),
		Addr:     ":8080",
		Config:   config.Empty,
		Logger:   logger.NOOPLogger,
		Registry: prometheus.NewRegistry(),
	}

	for _, fn := range options {
		if err := fn(&s); err != nil {
			return nil, err
		}
	}

	s.Router.HideBanner = true
	s.Router.HTTPErrorHandler = s.handleError
	s.Router.Validator = NewValidator()

	metrics, err := newHTTPMetrics(s.Registry)
	if err != nil {
		return nil, err
	}

	s.RegisterGlobalMiddlewares(metrics)
	s.RegisterHealthRoutes()
	s.RegisterMetricsRoutes()
	s.RegisterSwaggerRoutes()
	s.RegisterMovieRoutes(s.Router.Group("/movies"))

	return &s, nil
}

func (s *Server) RegisterGlobalMiddlewares(metrics *httpMetrics) {
	s.Router.Use(middleware.Recover())
	s.Router.Use(middleware.Secure())
	s.Router.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.Router.Use(middleware.Gzip())
	s.Router.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	s.Router.Use(s.requestLogger())
	s.Router.Use(metrics.middleware())

	if store := s.rateLimiterStore(); store != nil {
		s.Router.Use(middleware.RateLimiter(store))
	}

	// CORS
	if len(s.AllowOrigins) > 0 {
		s.Router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.AllowOrigins,
		}))
	}
}

func (s *Server) Start() error {
	return s.Router.Start(s.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Router.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// rateLimiterStore returns nil when rate limiting is switched off.
func (s *Server) rateLimiterStore() middleware.RateLimiterStore {
	if s.RateLimiterStore != nil {
		return s.RateLimiterStore
	}
	if s.Config.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiterMemoryStore(rate.Limit(s.Config.RateLimitRPS))
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			s.Logger.Infow("request", fields...)
			return nil
		},
	})
}

// handleError maps application errors to appropriate HTTP status codes
func (s *Server) handleError(err error, c echo.Context) {
	// Don't write response if already committed
	if c.Response().Committed {
		return
	}

	status, message := statusAndMessage(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Errorw(err.Error(), "request_id", requestID(c))
		sentry.WithContext(c).
			WithTags(map[string]string{"route": c.Path(), "method": c.Request().Method}).
			Error(err)
	}

	if err := writeError(c, status, message, err); err != nil {
		s.Logger.Errorw("write error response failed", "error", err)
	}
}

func statusAndMessage(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}

	switch errs.ErrorCode(err) {
	case errs.EINVALID:
		return http.StatusBadRequest, errs.ErrorMessage(err)
	case errs.EUNPROCESSABLE:
		return http.StatusUnprocessableEntity, errs.ErrorMessage(err)
	case errs.ENOTFOUND:
		return http.StatusNotFound, errs.ErrorMessage(err)
	case errs.ENOTIMPLEMENTED:
		return http.StatusNotImplemented, errs.ErrorMessage(err)
	}
	return http.StatusInternalServerError, "Internal server error"
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
