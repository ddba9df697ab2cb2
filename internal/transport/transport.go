// Package transport defines the interface for pluggable skill transports.
//
// Each transport (HTTP, gRPC) accepts request envelopes in its own way and
// hands them to the same Handler. The skill doesn't care how requests
// arrive; it only works with the Transport contract.
package transport

import (
	"context"

	"github.com/nadzzz/owlskill/internal/skill"
)

// Handler processes an incoming request envelope and returns the response.
// The skill provides this handler to each transport.
type Handler func(ctx context.Context, env *skill.RequestEnvelope) (*skill.ResponseEnvelope, error)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts accepting requests and dispatches them to the handler.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
