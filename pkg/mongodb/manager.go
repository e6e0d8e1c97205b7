package mongodb

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Manager owns a single lazily-created client handle to the cluster and a
// cache of per-name database handles. It is constructed once at startup and
// injected into whatever needs database access; the handle survives for the
// life of the process (or until Close) so warm requests never pay the
// reconnect cost.
type Manager struct {
	cfg Config

	mu        sync.Mutex
	client    *mongo.Client
	databases map[string]*mongo.Database
}

// NewManager returns an unconnected Manager. The first Connect call
// establishes the client.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// Connect establishes the client handle if one does not exist yet. It is
// idempotent and safe for concurrent use; a second caller arriving during
// the first connect waits and then reuses the established client.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return nil
	}
	if m.cfg.URI == "" {
		return ErrMissingURI
	}

	client, err := mongo.Connect(
		options.Client().
			ApplyURI(m.cfg.URI).
			SetConnectTimeout(m.cfg.ConnectTimeout).
			SetServerSelectionTimeout(m.cfg.ServerSelectionTimeout).
			SetMaxPoolSize(m.cfg.MaxPoolSize).
			SetMaxConnIdleTime(m.cfg.MaxConnIdleTime),
	)
	if err != nil {
		return errors.Join(ErrFailedToConnect, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.cfg.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return errors.Join(ErrFailedToConnect, err)
	}

	m.client = client
	m.databases = make(map[string]*mongo.Database)
	return nil
}

// Database returns a cached handle for name, creating and caching one if
// absent. It fails with ErrNotConnected before a successful Connect.
func (m *Manager) Database(name string) (*mongo.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil, ErrNotConnected
	}
	if db, ok := m.databases[name]; ok {
		return db, nil
	}
	db := m.client.Database(name)
	m.databases[name] = db
	return db, nil
}

// Close disconnects the client, clears the database-handle cache, and
// resets state so a subsequent Connect recreates everything. It is a no-op
// when not connected. Operations still in flight on the shared client will
// observe the disconnect as an error.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	m.databases = nil
	return err
}

// Connected reports whether a client handle currently exists. It does not
// verify liveness of the underlying network connection.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client != nil
}

func (m *Manager) collection(database, name string) (*mongo.Collection, error) {
	db, err := m.Database(database)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}
