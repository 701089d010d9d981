package persistence

import (
	"fmt"
	"strings"
	"time"

	"github.com/qrcampaign/fulfillment/internal/infrastructure/config"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB     *gorm.DB
	Driver string
}

// Plugin is anything that hooks into an open connection, such as the
// otelgorm tracing plugin.
type Plugin interface {
	RegisterOtelGorm(db *gorm.DB) error
}

// Option configures NewDatabase
type Option func(*options)

type options struct {
	logger  gormlogger.Interface
	plugins []Plugin
}

// WithLogger sets the GORM logger. Defaults to a silent logger.
func WithLogger(l gormlogger.Interface) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithPlugin registers a plugin right after the connection opens
func WithPlugin(p Plugin) Option {
	return func(o *options) {
		if p != nil {
			o.plugins = append(o.plugins, p)
		}
	}
}

// NewDatabase opens a connection using the configured driver
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	o := &options{logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	for _, opt := range opts {
		opt(o)
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if isMemorySQLite(cfg) {
		// every connection to :memory: is a separate database
		maxOpen = 1
	}
	maxIdle := cfg.MaxIdleConns
	if maxOpen > 0 {
		maxIdle = min(maxIdle, maxOpen)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, p := range o.plugins {
		if err := p.RegisterOtelGorm(db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to register database plugin: %w", err)
		}
	}

	return &Database{DB: db, Driver: driverOf(cfg)}, nil
}

func driverOf(cfg *config.DatabaseConfig) string {
	if cfg.Driver == "" {
		return config.DriverPostgres
	}
	return cfg.Driver
}

func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch driverOf(cfg) {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func isMemorySQLite(cfg *config.DatabaseConfig) bool {
	if driverOf(cfg) != config.DriverSQLite {
		return false
	}
	dsn := cfg.DSN()
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// DBSystem returns the OpenTelemetry db.system name of the configured driver
func DBSystem(driver string) string {
	if driver == config.DriverSQLite {
		return "sqlite"
	}
	return "postgresql"
}

// Migrate creates or updates the read-model tables. Production schemas are
// owned by the order service; this is for local sqlite databases and tests.
func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(models.All()...)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}
