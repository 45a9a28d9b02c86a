package app

import (
	"strconv"
	"strings"

	"github.com/trackdechets/bsd-events/internal/data/db"
	"github.com/trackdechets/bsd-events/internal/data/streamstore"
	"github.com/trackdechets/bsd-events/internal/jobs/replicator"
	"github.com/trackdechets/bsd-events/internal/observability"
	"github.com/trackdechets/bsd-events/internal/platform/envutil"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
	"github.com/trackdechets/bsd-events/internal/platform/redisclient"
	"github.com/trackdechets/bsd-events/internal/realtime/bus"
)

type Config struct {
	Port string

	DB         db.Config
	FastStore  string
	Redis      redisclient.Config
	RedisKeyNS string
	Channel    string

	ReplicatorEnabled bool
	Replicator        replicator.Config

	RulesPath   string
	CORSOrigins []string
	Otel        observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port: envutil.String("PORT", "8080", log),
		DB: db.Config{
			Driver:           strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres, log)),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     strconv.Itoa(envutil.Int("POSTGRES_PORT", 5432, log)),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "bsd_events", log),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", log),
			SQLitePath:       envutil.String("SQLITE_PATH", "", log),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20, log),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5, log),
		},
		FastStore: strings.ToLower(envutil.String("FAST_STORE", streamstore.BackendPostgres, log)),
		Redis: redisclient.Config{
			Addr:     envutil.String("REDIS_ADDR", "", log),
			Password: envutil.String("REDIS_PASSWORD", "", log),
			DB:       envutil.Int("REDIS_DB", 0, log),
		},
		RedisKeyNS: envutil.String("REDIS_KEY_PREFIX", "bsd", log),
		Channel:    envutil.String("REDIS_CHANNEL", bus.DefaultChannel, log),

		ReplicatorEnabled: envutil.Bool("REPLICATOR_ENABLED", true, log),
		Replicator: replicator.Config{
			Interval:  envutil.Duration("REPLICATOR_INTERVAL", replicator.DefaultInterval, log),
			BatchSize: envutil.Int("REPLICATOR_BATCH_SIZE", replicator.DefaultBatchSize, log),
		},

		RulesPath:   envutil.String("CHECKPOINT_RULES_PATH", "", log),
		CORSOrigins: envutil.Strings("CORS_ORIGINS", nil, log),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "bsd-events", log),
			Environment: envutil.String("APP_ENV", "development", log),
			Version:     envutil.String("APP_VERSION", "", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1, log),
		},
	}
}

// usesRedis reports whether any component needs a Redis connection.
func (c Config) usesRedis() bool {
	return c.FastStore == streamstore.BackendRedis || strings.TrimSpace(c.Redis.Addr) != ""
}
