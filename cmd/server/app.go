package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ganot/interview-etl/internal/config"
	"github.com/ganot/interview-etl/internal/domain/construct"
	"github.com/ganot/interview-etl/internal/domain/job"
	"github.com/ganot/interview-etl/internal/domain/workspace"
	"github.com/ganot/interview-etl/internal/exportsink"
	"github.com/ganot/interview-etl/internal/sqlite"
	"golang.org/x/text/language"
)

// app holds the wired services shared by every command.
type app struct {
	cfg        config.Config
	logger     *slog.Logger
	db         *sqlite.DB
	sink       exportsink.Sink
	constructs *construct.Service
	jobs       *job.Service
	workspaces *workspace.Service

	closeLog func()
}

// newApp loads configuration and opens storage. Logs go to logWriter unless a
// log file is configured.
func newApp(ctx context.Context, logWriter io.Writer, configure func(*config.Config)) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if configure != nil {
		configure(&cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, closeLog := newLogger(logWriter, cfg.Log.Level, cfg.Log.Path)
	a := &app{cfg: cfg, logger: logger, closeLog: closeLog}

	if err := ensureDir(cfg.DB.Path); err != nil {
		a.Close()
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.Open(ctx, cfg.DB.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db

	sink, err := exportsink.Open(ctx, exportsink.Config{
		Driver: exportsink.Driver(cfg.Export.Driver),
		FSRoot: cfg.Export.FSRoot,
		S3: exportsink.S3Config{
			Bucket:          cfg.Export.S3.Bucket,
			Region:          cfg.Export.S3.Region,
			Endpoint:        cfg.Export.S3.Endpoint,
			Prefix:          cfg.Export.S3.Prefix,
			PathStyle:       cfg.Export.S3.PathStyle,
			AccessKeyID:     cfg.Export.S3.AccessKeyID,
			SecretAccessKey: cfg.Export.S3.SecretAccessKey,
		},
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open export sink: %w", err)
	}
	a.sink = sink

	locale, err := language.Parse(cfg.Table.Locale)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid locale %q: %w", cfg.Table.Locale, err)
	}

	a.constructs = construct.NewService(sqlite.NewConstructRepository(db), logger)
	a.jobs = job.NewService(sqlite.NewJobRepository(db), logger)
	a.workspaces = workspace.NewService(a.constructs, a.jobs, sink, workspace.Options{
		Locale:        locale,
		DefaultSchema: cfg.Table.DefaultSchema,
		URLExpiry:     cfg.Export.URLExpiry,
	}, logger)

	if path := cfg.Table.ConstructsFile; path != "" {
		n, err := a.constructs.Import(ctx, path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("import constructs: %w", err)
		}
		logger.Info("constructs imported", "path", path, "created", n)
	}

	logger.Debug("app ready", "db", cfg.DB.Path, "export_driver", sink.Driver(), "locale", locale.String())
	return a, nil
}

// Close releases storage and the log file.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("closing database", "error", err)
		}
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}

// splitList parses a comma separated flag value. An empty value yields nil.
func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
