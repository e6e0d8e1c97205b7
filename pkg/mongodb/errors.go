package mongodb

import "errors"

var (
	// ErrMissingURI is returned by Connect when no connection string is configured.
	ErrMissingURI = errors.New("mongodb connection string is not configured")
	// ErrFailedToConnect is returned when the cluster cannot be reached.
	ErrFailedToConnect = errors.New("failed to connect to mongodb")
	// ErrNotConnected is returned when an operation needs a database handle before Connect has succeeded.
	ErrNotConnected = errors.New("mongodb client is not connected")
)
