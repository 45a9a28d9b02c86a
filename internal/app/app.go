package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/trackdechets/bsd-events/internal/data/db"
	"github.com/trackdechets/bsd-events/internal/data/repos/eventlog"
	"github.com/trackdechets/bsd-events/internal/data/streamstore"
	httpX "github.com/trackdechets/bsd-events/internal/http"
	httpH "github.com/trackdechets/bsd-events/internal/http/handlers"
	"github.com/trackdechets/bsd-events/internal/jobs/replicator"
	"github.com/trackdechets/bsd-events/internal/observability"
	"github.com/trackdechets/bsd-events/internal/platform/dbctx"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
	"github.com/trackdechets/bsd-events/internal/platform/redisclient"
	"github.com/trackdechets/bsd-events/internal/realtime/bus"
	"github.com/trackdechets/bsd-events/internal/services/edits"
	"github.com/trackdechets/bsd-events/internal/services/guard"
	"github.com/trackdechets/bsd-events/internal/services/snapshots"
	"github.com/trackdechets/bsd-events/internal/services/streams"
)

type App struct {
	Log *logger.Logger
	Cfg Config
	DB  *gorm.DB

	EventLog   eventlog.EventLogRepo
	Store      streamstore.Store
	Bus        bus.Bus
	Reader     streams.Reader
	Snapshots  *snapshots.Service
	Edits      *edits.Service
	Replicator *replicator.Replicator
	Server     *httpX.Server

	dbService    *db.Service
	redis        *goredis.Client
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New wires every component from cfg. Close releases whatever was opened, also on error.
func New(ctx context.Context, log *logger.Logger, cfg Config) (a *App, err error) {
	a = &App{Log: log, Cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)

	a.dbService, err = db.NewService(cfg.DB, log)
	if err != nil {
		return a, fmt.Errorf("init database: %w", err)
	}
	a.DB = a.dbService.DB()
	if err = db.AutoMigrateAll(a.DB); err != nil {
		return a, fmt.Errorf("automigrate: %w", err)
	}
	if err = db.EnsureIndexes(a.DB); err != nil {
		return a, fmt.Errorf("ensure indexes: %w", err)
	}

	if cfg.usesRedis() {
		a.redis, err = redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return a, fmt.Errorf("init redis: %w", err)
		}
	}

	a.EventLog = eventlog.NewEventLogRepo(a.DB, log)
	switch cfg.FastStore {
	case streamstore.BackendRedis:
		a.Store = streamstore.NewRedisStore(a.redis, cfg.RedisKeyNS, log)
	case streamstore.BackendPostgres, "":
		a.Store = streamstore.NewGormStore(a.DB, log)
	default:
		return a, fmt.Errorf("unsupported FAST_STORE %q", cfg.FastStore)
	}

	if a.redis != nil {
		a.Bus, err = bus.NewRedisBus(a.redis, cfg.Channel, log)
		if err != nil {
			return a, fmt.Errorf("init notification bus: %w", err)
		}
	} else {
		a.Bus = bus.NewMemoryBus()
	}

	var rules guard.Rules
	if cfg.RulesPath != "" {
		rules, err = guard.LoadRules(cfg.RulesPath)
	} else {
		rules, err = guard.DefaultRules()
	}
	if err != nil {
		return a, fmt.Errorf("load checkpoint rules: %w", err)
	}

	a.Reader = streams.NewReader(a.Store, log)
	a.Snapshots = snapshots.NewService(a.Reader, log)
	a.Edits, err = edits.NewService(a.EventLog, rules, log)
	if err != nil {
		return a, fmt.Errorf("init edits: %w", err)
	}
	a.Replicator = replicator.New(cfg.Replicator, a.EventLog, a.Store, a.Bus, log)

	a.Server = httpX.NewServer(httpX.RouterConfig{
		StreamHandler:       httpH.NewStreamHandler(log, a.Reader),
		BsdHandler:          httpH.NewBsdHandler(log, a.Snapshots, a.Edits),
		NotificationHandler: httpH.NewNotificationHandler(log, a.Bus),
		HealthHandler:       httpH.NewHealthHandler(a.healthChecks(), a.backlog),
		Log:                 log,
		ServiceName:         cfg.Otel.ServiceName,
		CORSOrigins:         cfg.CORSOrigins,
	})
	return a, nil
}

func (a *App) healthChecks() map[string]httpH.Pinger {
	checks := map[string]httpH.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	return checks
}

func (a *App) backlog(ctx context.Context) (int64, error) {
	return a.EventLog.Count(dbctx.With(ctx))
}

// Start launches background workers.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Cfg.ReplicatorEnabled && a.Replicator != nil {
		a.Replicator.Start(ctx)
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("http server listening", "port", a.Cfg.Port)
	return a.Server.Run(":" + a.Cfg.Port)
}

func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
		if a.Replicator != nil {
			a.Replicator.Wait()
		}
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
