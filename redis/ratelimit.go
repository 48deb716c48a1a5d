package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(opts Options) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// RateLimiterStore implements echo's middleware.RateLimiterStore with a
// fixed window counter per identifier, shared by every server instance that
// points at the same Redis. It fails open: when Redis cannot be reached the
// request is allowed.
type RateLimiterStore struct {
	client  *goredis.Client
	logger  *zap.SugaredLogger
	limit   int64
	window  time.Duration
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

// NewRateLimiterStore allows limit requests per identifier per window.
func NewRateLimiterStore(client *goredis.Client, logger *zap.SugaredLogger, limit int, window time.Duration) *RateLimiterStore {
	return &RateLimiterStore{
		client:  client,
		logger:  logger,
		limit:   int64(limit),
		window:  window,
		prefix:  "movieapi:rl",
		timeout: 200 * time.Millisecond,
		now:     time.Now,
	}
}

func (s *RateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.key(identifier, s.now())
	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warnw("rate limiter store unavailable", "error", err, "identifier", identifier)
		return true, nil
	}

	return count.Val() <= s.limit, nil
}

// key buckets identifier into the window containing t.
func (s *RateLimiterStore) key(identifier string, t time.Time) string {
	bucket := t.UnixNano() / int64(s.window)
	return fmt.Sprintf("%s:%s:%d", s.prefix, identifier, bucket)
}
