package factory

import "context"

// Server defines the operation of an entity able to serve requests
type Server interface {
	Start()
	Address() string
	Close() error
}

// Engine defines the producer switching operations
type Engine interface {
	Start(ctx context.Context) error
	Close() error
	IsInterfaceNil() bool
}
