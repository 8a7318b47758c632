package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string // connection string for the database
	WaitForServices    string // duration to wait for other services to be ready
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogConfig          string // zapfilter rules, e.g. "debug:sim.* info:*"
	MigrationSourceURL string // location of migration files (empty: use embedded files)
	EnableTelemetry    bool   // enable telemetry
	TelemetryEndpoint  string // endpoint for telemetry ("stdout" prints to console)
	HistoryStore       string // where race results are kept (memory, postgres, nats)
	NatsURL            string // URL of the NATS server (history store "nats")
	TickInterval       string // real time per simulated lap
)

// Config holds the configuration values which are used by the application
type Config struct {
	ShowEvents bool // if true, the event log is rendered below the leaderboard
	Plain      bool // if true, no live rendering is done, only the final result is printed
}
