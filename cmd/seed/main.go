// Command seed loads a JSON array of movies into the catalog collection.
//
//	go run ./cmd/seed -file data/movies.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/Bilal-32/movie-api/internal/config"
	"github.com/Bilal-32/movie-api/internal/database"
	"github.com/Bilal-32/movie-api/internal/logging"
	"github.com/Bilal-32/movie-api/internal/model"
	"github.com/Bilal-32/movie-api/internal/repository"
)

func main() {
	file := flag.String("file", "data/movies.json", "path to a JSON array of movies")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})

	raw, err := os.ReadFile(*file)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *file).Msg("read seed file")
	}
	var movies []model.Movie
	if err := json.Unmarshal(raw, &movies); err != nil {
		logging.Fatal().Err(err).Str("file", *file).Msg("decode seed file")
	}

	client, err := database.Open(cfg.ConnectionURI)
	if err != nil {
		logging.Fatal().Err(err).Msg("connect mongo")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer func() { _ = client.Disconnect(ctx) }()

	db := client.Database(cfg.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logging.Error().Err(err).Msg("ensure indexes")
		return
	}
	n, err := repository.NewMovieRepo(db).InsertMany(ctx, movies)
	if err != nil {
		logging.Error().Err(err).Msg("insert movies")
		return
	}
	logging.Info().Int("inserted", n).Str("db", cfg.DBName).Msg("seed complete")
}
