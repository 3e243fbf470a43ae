package distribution

import "errors"

// Error types for distribution operations.
var (
	ErrNoServers           = errors.New("distribution declares no servers")
	ErrServerNotFound      = errors.New("server not found")
	ErrMalformedCoordinate = errors.New("malformed module coordinate")
	ErrUnsupportedSchema   = errors.New("unsupported distribution schema version")
)
