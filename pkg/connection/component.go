package connection

import (
	"context"

	"github.com/spf13/viper"
)

// Component is the lifecycle shared by every store-backed component.
type Component interface {
	// Configure reads connection, credential and option parameters.
	// Nothing is resolved until Open.
	Configure(params *viper.Viper)

	// SetReferences supplies the registry used to find discovery services
	// and credential stores.
	SetReferences(refs References)

	// IsOpen reports whether a live connection exists.
	IsOpen() bool

	// Open resolves configuration and connects to the store.
	Open(ctx context.Context, traceID string) error

	// Close releases the connection. Closing a closed component is a no-op.
	Close(ctx context.Context, traceID string) error
}

var _ Component = (*Manager)(nil)
