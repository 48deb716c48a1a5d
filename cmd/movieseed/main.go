package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"movieapi/httpserver"
	"movieapi/movie"
	"movieapi/pkg/config"
	"movieapi/pkg/logger"
)

const defaultAPIURL = "http://localhost:8080"

func main() {
	var (
		csvPath string
		apiURL  string
		limit   int
	)

	flag.StringVar(&csvPath, "csv", "", "Path to a title,playtime,genre csv file")
	flag.StringVar(&apiURL, "url", defaultAPIURL, "Base URL of the movie API")
	flag.IntVar(&limit, "limit", 0, "Limit number of rows to import (0 = all)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.S().Fatalw("load config failed", "error", err)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		zap.S().Fatalw("init logger failed", "error", err)
	}
	defer func() { _ = log.Sync() }()

	if csvPath == "" {
		log.Fatal("-csv is required")
	}

	file, err := os.Open(csvPath)
	if err != nil {
		log.Fatalw("open csv failed", "error", err)
	}
	defer file.Close()

	s := &seeder{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    strings.TrimRight(apiURL, "/") + "/movies",
		logger: log,
	}
	count, err := s.importMovies(context.Background(), file, limit)
	if err != nil {
		log.Fatalw("import failed", "rows", count, "error", err)
	}

	log.Infow("import completed", "rows", count)
}

type seeder struct {
	client *http.Client
	url    string
	logger *zap.SugaredLogger
}

// importMovies posts every usable row of r and returns how many were created.
// Rows the API rejects are logged and skipped.
func (s *seeder) importMovies(ctx context.Context, r io.Reader, limit int) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cols, isHeader := parseMovieCSVHeader(first)
	pending := [][]string{}
	if !isHeader {
		pending = append(pending, first)
	}

	count := 0
	for limit <= 0 || count < limit {
		var record []string
		if len(pending) > 0 {
			record, pending = pending[0], pending[1:]
		} else {
			record, err = reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return count, err
			}
		}

		req, ok := parseMovieRecord(record, cols)
		if !ok {
			s.logger.Warnw("skipping malformed row", "row", record)
			continue
		}

		created, err := s.postMovie(ctx, req)
		if err != nil {
			return count, err
		}
		if created {
			count++
		}
	}

	return count, nil
}

func (s *seeder) postMovie(ctx context.Context, m httpserver.MovieRequest) (bool, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusCreated:
		var created movie.Movie
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return false, fmt.Errorf("decode created movie: %w", err)
		}
		s.logger.Infow("movie created", "id", created.ID, "title", created.Title)
		return true, nil
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.logger.Warnw("movie rejected", "title", m.Title, "status", resp.StatusCode, "response", string(msg))
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status: %s", resp.Status)
	}
}

type movieColumns struct {
	title, playtime, genre int
}

var defaultColumns = movieColumns{title: 0, playtime: 1, genre: 2}

// parseMovieCSVHeader reports whether row is a header and, if so, where the
// columns are. Without a header the title,playtime,genre order is assumed.
func parseMovieCSVHeader(row []string) (movieColumns, bool) {
	cols := movieColumns{title: -1, playtime: -1, genre: -1}
	for i, name := range row {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			cols.title = i
		case "playtime":
			cols.playtime = i
		case "genre":
			cols.genre = i
		}
	}
	if cols.title == -1 || cols.playtime == -1 || cols.genre == -1 {
		return defaultColumns, false
	}
	return cols, true
}

func parseMovieRecord(record []string, cols movieColumns) (httpserver.MovieRequest, bool) {
	if cols.title >= len(record) || cols.playtime >= len(record) || cols.genre >= len(record) {
		return httpserver.MovieRequest{}, false
	}

	playtime, err := strconv.Atoi(strings.TrimSpace(record[cols.playtime]))
	if err != nil {
		return httpserver.MovieRequest{}, false
	}
	return httpserver.MovieRequest{
		Title:    strings.TrimSpace(record[cols.title]),
		Playtime: playtime,
		Genre:    strings.TrimSpace(record[cols.genre]),
	}, true
}
