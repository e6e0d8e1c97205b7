package mongodb

import "time"

// Config represents the configuration for the database connection.
type Config struct {
	// URI is the connection string of the cluster. It may be empty at
	// startup; connecting then fails with ErrMissingURI.
	URI string `env:"MONGODB_URI"`
	// ConnectTimeout is the timeout for establishing the initial connection.
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	// ServerSelectionTimeout is how long the driver waits to find a usable server.
	ServerSelectionTimeout time.Duration `env:"MONGODB_SERVER_SELECTION_TIMEOUT" envDefault:"5s"`
	// MaxPoolSize bounds the number of concurrent connections in the pool.
	MaxPoolSize uint64 `env:"MONGODB_MAX_POOL_SIZE" envDefault:"10"`
	// MaxConnIdleTime is how long a pooled connection may sit idle before it is closed.
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"45s"`
	// PingTimeout bounds the liveness probe performed right after connecting.
	PingTimeout time.Duration `env:"MONGODB_PING_TIMEOUT" envDefault:"10s"`
}
