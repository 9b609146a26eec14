package main

import (
	"context"
	"fmt"

	"github.com/handiism/dmx/internal/cache"
	"github.com/handiism/dmx/internal/config"
	"github.com/handiism/dmx/internal/deezer"
	"github.com/handiism/dmx/internal/download"
	"github.com/handiism/dmx/internal/http"
	"github.com/handiism/dmx/internal/logging"
	"go.uber.org/zap"
)

// app holds the collaborators shared by every command.
type app struct {
	settings   *config.Settings
	logger     *zap.Logger
	cache      *cache.Store
	http       *http.Client
	catalog    *deezer.Client
	engine     *download.DeemixEngine
	dispatcher *download.Dispatcher
}

// newApp wires the collaborators from settings. onProgress receives
// dispatcher events and may be nil.
func newApp(settings *config.Settings, onProgress func(download.ProgressEvent)) (*app, error) {
	logger, err := logging.New(settings.LogPath(), settings.LogLevel, settings.Debug)
	if err != nil {
		return nil, err
	}

	a := &app{settings: settings, logger: logger}

	var store deezer.Cache
	if settings.CacheEnabled {
		a.cache, err = cache.Open(settings.CachePath(), settings.CacheTTLDuration(), settings.CacheMaxEntries)
		if err != nil {
			logger.Warn("response cache disabled", zap.Error(err))
		} else {
			store = a.cache
			if n, err := a.cache.Cleanup(); err == nil && n > 0 {
				logger.Debug("cache cleanup", zap.Int64("removed", n))
			}
		}
	}

	a.http = http.NewClient(http.Options{
		RequestsPerSecond: settings.RateLimitPerSecond,
		Burst:             settings.RateLimitBurst,
		MaxRetries:        retries(settings.MaxRetries),
		Logger:            logger.Named("http"),
	})
	a.catalog = deezer.NewClient(a.http, store, deezer.Config{SearchLimit: settings.SearchLimit}, logger.Named("deezer"))
	a.engine = download.NewDeemixEngine(settings.DeemixPath, settings.ARL, logger.Named("deemix"))
	a.dispatcher = download.NewDispatcher(settings, a.engine, a.http, logger.Named("download"), onProgress)

	logger.Info("started",
		zap.String("config_dir", settings.Dir()),
		zap.String("quality", settings.Quality),
		zap.Bool("cache", a.cache != nil))
	return a, nil
}

// retries maps the config value, where 0 means no retries, to http.Options.
func retries(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

// Close releases the cache and flushes the log.
func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// StatusLines reports collaborator health.
func (a *app) StatusLines(ctx context.Context) []string {
	var lines []string

	if err := a.catalog.Ping(ctx); err != nil {
		lines = append(lines, fmt.Sprintf("Catalog API: unreachable (%v)", err))
	} else {
		lines = append(lines, "Catalog API: reachable")
	}

	switch {
	case !a.engine.Available():
		lines = append(lines, fmt.Sprintf("deemix: not found (%s)", a.settings.DeemixPath))
	case !a.engine.HasARL():
		lines = append(lines, "deemix: available, ARL not set (dmx config set arl <value>)")
	default:
		lines = append(lines, "deemix: ready")
	}

	if a.cache == nil {
		lines = append(lines, "Cache: disabled")
	} else if n, err := a.cache.Len(); err == nil {
		lines = append(lines, fmt.Sprintf("Cache: %d entries", n))
	}
	return lines
}
