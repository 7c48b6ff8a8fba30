package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings for different entity types
	PlayerTTL time.Duration
	RoomTTL   time.Duration

	// Room lock settings. LockTTL bounds how long a crashed holder can block a room.
	LockTTL           time.Duration
	LockRetryInterval time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:               "redis://localhost:6379",
		PoolSize:          10,
		MinIdleConns:      2,
		PlayerTTL:         24 * time.Hour,
		RoomTTL:           24 * time.Hour,
		LockTTL:           5 * time.Second,
		LockRetryInterval: 10 * time.Millisecond,
	}
}
