package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress             string
	DatabaseURI            string
	NotificationWebhookURL string
	JWTSecret              string
	TokenTTL               time.Duration
	DispatchInterval       time.Duration
	WorkerPoolSize         int
	DispatchBatchSize      int
	ShutdownTimeout        time.Duration
	MeasurementLeadDays    int
	MeasurementSlot        string
	AdminLogin             string
	AdminPassword          string
	LogLevel               string
}

const (
	defaultRunAddress          = ":8080"
	defaultJWTSecret           = "change-me-in-production"
	defaultTokenTTL            = 24 * time.Hour
	defaultDispatchInterval    = 3 * time.Second
	defaultWorkerPoolSize      = 4
	defaultShutdownTimeout     = 10 * time.Second
	defaultDispatchBatchSize   = 32
	defaultMeasurementLeadDays = 3
	defaultMeasurementSlot     = "09:00"
	defaultLogLevel            = "info"
)

const envFile = ".env"

// Load parses configuration from flags and environment variables. Values from
// a .env file in the working directory are applied first when it exists.
func Load() (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	return load(os.Args[1:], os.LookupEnv)
}

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:             getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:            getString(lookup, "DATABASE_URI", ""),
		NotificationWebhookURL: getString(lookup, "NOTIFICATION_WEBHOOK_URL", ""),
		JWTSecret:              getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:               getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		DispatchInterval:       getDuration(lookup, "DISPATCH_INTERVAL", defaultDispatchInterval),
		WorkerPoolSize:         getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		DispatchBatchSize:      getInt(lookup, "DISPATCH_BATCH_SIZE", defaultDispatchBatchSize),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		MeasurementLeadDays:    getInt(lookup, "MEASUREMENT_LEAD_DAYS", defaultMeasurementLeadDays),
		MeasurementSlot:        getString(lookup, "MEASUREMENT_SLOT", defaultMeasurementSlot),
		AdminLogin:             getString(lookup, "ADMIN_LOGIN", ""),
		AdminPassword:          getString(lookup, "ADMIN_PASSWORD", ""),
		LogLevel:               getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("uniformorders", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr         = cfg.TokenTTL.String()
		dispatchIntervalStr = cfg.DispatchInterval.String()
		shutdownTimeoutStr  = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.NotificationWebhookURL, "n", cfg.NotificationWebhookURL, "Webhook receiving student notifications")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued auth tokens")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent notification workers")
	fs.StringVar(&dispatchIntervalStr, "dispatch-interval", dispatchIntervalStr, "Interval between outbox polls")
	fs.IntVar(&cfg.DispatchBatchSize, "dispatch-batch", cfg.DispatchBatchSize, "Maximum notifications per outbox poll")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MeasurementLeadDays, "measurement-lead-days", cfg.MeasurementLeadDays, "Days between verification and measurement")
	fs.StringVar(&cfg.MeasurementSlot, "measurement-slot", cfg.MeasurementSlot, "Measurement time of day, HH:MM")
	fs.StringVar(&cfg.AdminLogin, "admin-login", cfg.AdminLogin, "Login of the bootstrap super admin")
	fs.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Password of the bootstrap super admin")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.DispatchInterval, err = time.ParseDuration(dispatchIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid dispatch interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if _, err := time.Parse("15:04", cfg.MeasurementSlot); err != nil {
		return nil, fmt.Errorf("invalid measurement slot %q: must be HH:MM", cfg.MeasurementSlot)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.DispatchBatchSize <= 0 {
		cfg.DispatchBatchSize = defaultDispatchBatchSize
	}

	if cfg.DispatchInterval <= 0 {
		cfg.DispatchInterval = defaultDispatchInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.MeasurementLeadDays <= 0 {
		cfg.MeasurementLeadDays = defaultMeasurementLeadDays
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if (cfg.AdminLogin == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("admin login and password must be provided together")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
