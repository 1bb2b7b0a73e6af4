package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"weatherdash/internal/config"
	db "weatherdash/internal/db"
	httpapi "weatherdash/internal/httpapi"
	"weatherdash/internal/migrate"
	weather "weatherdash/internal/modules/weather"
	"weatherdash/internal/modules/weather/repository"
	weatherviews "weatherdash/internal/modules/weather/views"
)

const sweepInterval = time.Minute

func Run(ctx context.Context, cfg config.Config) error {
	logger := slog.Default()
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"dbDriver", cfg.DB.Driver,
		"sqlitePath", cfg.DB.Path,
		"prefsBackend", cfg.Prefs.Backend,
		"alertSink", cfg.Alerts.Sink,
		"newsMode", cfg.Upstream.NewsMode,
		"defaultCity", cfg.Weather.DefaultCity,
	)

	prefs, closePrefs, err := openPreferences(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePrefs()

	if err := weatherviews.LoadTemplates(); err != nil {
		return err
	}

	sinks, closeSinks := buildSinks(ctx, cfg.Alerts, logger)
	defer closeSinks()

	mux := httpapi.NewMux(prefs, cfg.StaticDir)
	sessions, err := weather.RegisterFeature(mux, cfg, prefs, sinks, logger)
	if err != nil {
		return err
	}
	defer sessions.Close()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sessions.RunSweeper(sweepCtx, sweepInterval)

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Session teardown ends open event streams so Shutdown does not wait on them.
	sessions.Close()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// openPreferences opens the configured preference store. The close func is
// never nil.
func openPreferences(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.PreferencesRepository, func(), error) {
	if cfg.Prefs.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Prefs.RedisAddr,
			Password: cfg.Prefs.RedisPassword,
			DB:       cfg.Prefs.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("redis connection successful", "addr", cfg.Prefs.RedisAddr)
		return repository.NewRedisRepository(client, cfg.Prefs.TTL), func() {
			if err := client.Close(); err != nil {
				logger.Error("redis close", "error", err)
			}
		}, nil
	}

	dbConn, err := db.Open(cfg.DB, logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(dbConn); err != nil {
			logger.Error("db close", "error", err)
		}
	}
	if err := checkDB(ctx, dbConn); err != nil {
		closeDB()
		return nil, nil, err
	}
	if err := migrate.Run(ctx, dbConn, logger); err != nil {
		closeDB()
		return nil, nil, err
	}
	logger.Info("database connection successful", "driver", cfg.DB.Driver)
	return repository.NewRepository(dbConn), closeDB, nil
}

func checkDB(ctx context.Context, dbConn *sql.DB) error {
	var ok int
	if err := dbConn.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	return nil
}
