package postgres

import "time"

// Config holds PostgreSQL connection settings
type Config struct {
	// DSN is a libpq connection string or postgres:// URL
	DSN string

	// Pool settings
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns sensible defaults for PostgreSQL configuration
func DefaultConfig() Config {
	return Config{
		DSN:             "host=localhost port=5432 user=postgres password=postgres dbname=rajamantri sslmode=disable",
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
	}
}
