package util

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/config"
	"github.com/mpapenbr/racesim-manager-go/pkg/db/postgres"
	"github.com/mpapenbr/racesim-manager-go/pkg/store"
	"github.com/mpapenbr/racesim-manager-go/pkg/store/memory"
	"github.com/mpapenbr/racesim-manager-go/pkg/store/natskv"
	pgstore "github.com/mpapenbr/racesim-manager-go/pkg/store/postgres"
	"github.com/mpapenbr/racesim-manager-go/pkg/utils"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreNats     = "nats"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the application logger and installs it as default.
// The sql logger is returned separately, it has its own level.
func SetupLogger() (logger, sqlLogger *log.Logger) {
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.New(
			os.Stderr,
			ParseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.DevLogger(
			os.Stderr,
			ParseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if config.LogConfig != "" {
		if filtered, err := logger.WithFilterRules(config.LogConfig); err == nil {
			logger = filtered
		} else {
			fmt.Fprintf(os.Stderr, "Ignoring log config %q: %v\n", config.LogConfig, err)
		}
	}
	log.ResetDefault(logger)
	return logger, sqlLogger
}

// SetupTelemetry starts exporters and runtime metrics if telemetry is enabled.
// The result is nil otherwise.
func SetupTelemetry(ctx context.Context) *config.Telemetry {
	if !config.EnableTelemetry {
		return nil
	}
	log.Info("Enabling telemetry", log.String("endpoint", config.TelemetryEndpoint))
	telemetry, err := config.SetupTelemetry(ctx)
	if err != nil {
		log.Warn("Could not setup telemetry", log.ErrorField(err))
		return nil
	}
	err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
	if err != nil {
		log.Warn("Could not start runtime metrics", log.ErrorField(err))
	}
	return telemetry
}

func waitTimeout() time.Duration {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	return timeout
}

func WaitForDB() {
	if err := utils.WaitForTCP(utils.ExtractFromDBURL(config.DB), waitTimeout()); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}
}

func WaitForNats() {
	if err := utils.WaitForTCP(utils.ExtractFromNatsURL(config.NatsURL), waitTimeout()); err != nil {
		log.Fatal("nats not ready", log.ErrorField(err))
	}
}

// NewPool waits for the database and connects to it
func NewPool(sqlLogger *log.Logger) *pgxpool.Pool {
	WaitForDB()
	opt := postgres.WithTracer(sqlLogger, log.DebugLevel)
	if config.EnableTelemetry {
		opt = postgres.WithOtlpTracer()
	}
	return postgres.InitWithURL(config.DB, opt)
}

// OpenHistoryStore opens the store selected by config.HistoryStore.
// The pool is only used for the postgres store and may be nil otherwise.
// The returned func releases resources held by the store.
//
//nolint:whitespace // can't make both editor and linter happy
func OpenHistoryStore(
	ctx context.Context,
	pool *pgxpool.Pool,
) (store.HistoryStore, func(), error) {
	switch config.HistoryStore {
	case "", StoreMemory:
		return memory.New(), func() {}, nil
	case StorePostgres:
		if pool == nil {
			return nil, nil, fmt.Errorf("history store %s needs a database", StorePostgres)
		}
		return pgstore.New(pool), func() {}, nil
	case StoreNats:
		WaitForNats()
		nc, err := nats.Connect(config.NatsURL, nats.Name("rsm"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect nats: %w", err)
		}
		s, err := natskv.New(ctx, nc)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		return s, func() { _ = nc.Drain() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown history store %q", config.HistoryStore)
	}
}
