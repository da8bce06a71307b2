package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vmunix/culler/internal/config"
	"github.com/vmunix/culler/internal/events"
	"github.com/vmunix/culler/internal/library"
	"github.com/vmunix/culler/internal/migrations"
)

// app holds everything a command needs once the config is loaded.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	store  *library.Store
	lib    *library.FSLibrary
	events *events.EventLog
	bus    *events.Bus
	logger *slog.Logger
}

// openApp loads the config, opens and migrates the database and wires the
// library and event bus. Logs go to logOut.
func openApp(flags *rootFlags, logOut io.Writer) (*app, error) {
	path := flags.configPath
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return nil, fmt.Errorf("%w (run 'culler init' to create one)", err)
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) && len(cfgErr.FieldErrors("library.root")) > 0 {
			return nil, fmt.Errorf("config: %w\n(set library.root in %s or export CULLER_LIBRARY)", err, path)
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	level := cfg.Log.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
	for _, w := range cfg.Warnings() {
		logger.Warn("config warning", "detail", w)
	}

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	store := library.NewStore(db)
	eventLog := events.NewEventLog(db)
	return &app{
		cfg:    cfg,
		db:     db,
		store:  store,
		lib:    library.NewFSLibrary(cfg.Library.Root, store, logger.With("component", "library"), library.WithPurge(cfg.Library.Purge)),
		events: eventLog,
		bus:    events.NewBus(eventLog, logger.With("component", "bus")),
		logger: logger,
	}, nil
}

func openDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := migrations.Apply(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (a *app) Close() error {
	_ = a.bus.Close()
	return a.db.Close()
}
