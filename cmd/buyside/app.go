package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/buyside/internal/anthropic"
	"github.com/JonMunkholm/buyside/internal/config"
	"github.com/JonMunkholm/buyside/internal/core"
)

// app holds the loaded service and the resources it owns.
type app struct {
	service *core.Service
	pool    *pgxpool.Pool
}

// newApp connects to Postgres when a pg: source is configured, builds the
// summarizer when an API key is set, and loads the datasets.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	data := cfg.Data
	sources := append(append([]string{}, data.FactbookSources...), data.PipelineSources...)
	sources = append(sources, data.MappingSource)

	var db core.Querier
	if core.UsesPostgres(sources...) {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		db = pool
	}

	var summarizer core.Summarizer
	if cfg.Summary.SummaryEnabled() {
		client := anthropic.NewClient(cfg.Summary.APIKey)
		summarizer = core.NewClaudeSummarizer(client, cfg.Summary.Model, int64(cfg.Summary.MaxTokens))
		slog.Info("AI summaries enabled", "model", cfg.Summary.Model)
	}

	service, err := core.NewService(ctx, core.NewSourceLoader(data, db), summarizer, core.ServiceConfigFrom(cfg))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.service = service

	return a, nil
}

// openPool parses and configures a connection pool, then verifies it.
func openPool(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(dbCfg.MaxConns)
	poolConfig.MinConns = int32(dbCfg.MinConns)
	poolConfig.MaxConnLifetime = dbCfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("connected to database", "max_conns", dbCfg.MaxConns)
	return pool, nil
}

// Close releases the database pool, if any.
func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
