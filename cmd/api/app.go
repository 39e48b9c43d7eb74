// AngelaMos | 2026
// app.go

package main

import (
	"context"
	"log/slog"

	"github.com/carterperez-dev/jobtracker/internal/auth"
	"github.com/carterperez-dev/jobtracker/internal/config"
	"github.com/carterperez-dev/jobtracker/internal/core"
)

// app holds the process-wide clients. Closers run in reverse order of
// acquisition.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *core.Database
	redis   *core.Redis
	jwt     *auth.JWTManager
	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("tracing disabled", "error", telErr)
		} else {
			a.onClose("telemetry", tel.Shutdown)
			logger.Info("tracing enabled", "endpoint", cfg.Otel.Endpoint)
		}
	}

	if a.db, err = core.NewDatabase(ctx, cfg.Database); err != nil {
		return nil, err
	}
	a.onClose("database", func(context.Context) error { return a.db.Close() })
	logger.Info("database connected", "max_open_conns", cfg.Database.MaxOpenConns)

	if cfg.Database.AutoMigrate {
		applied, err := a.db.Migrate(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("database migrated", "applied", applied)
	}

	if a.redis, err = core.NewRedis(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	a.onClose("redis", func(context.Context) error { return a.redis.Close() })
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	if a.jwt, err = auth.NewJWTManager(cfg.JWT); err != nil {
		return nil, err
	}
	logger.Info("signing key loaded", "algorithm", "ES256", "key_id", a.jwt.GetKeyID())

	return a, nil
}

func (a *app) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

func (a *app) close() {
	ctx := context.Background()
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			a.logger.Error("close failed", "component", c.name, "error", err)
		}
	}
	a.closers = nil
	a.logger.Info("application stopped")
}
