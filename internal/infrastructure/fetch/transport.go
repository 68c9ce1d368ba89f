package fetch

import (
	"context"
	"fmt"

	"NewsLens/internal/domain"
)

// Transport fetches raw items for one source kind (RSS, structured
// API). Implementations must honor context cancellation.
type Transport interface {
	Kind() string
	Fetch(ctx context.Context, src domain.Source) ([]domain.RawItem, error)
}

// TransportRegistry maps source kinds to their transports.
type TransportRegistry struct {
	transports map[string]Transport
}

// NewTransportRegistry builds an empty registry.
func NewTransportRegistry() *TransportRegistry {
	return &TransportRegistry{transports: map[string]Transport{}}
}

// Register adds or replaces a transport implementation.
func (r *TransportRegistry) Register(t Transport) {
	if r.transports == nil {
		r.transports = map[string]Transport{}
	}
	r.transports[t.Kind()] = t
}

// Resolve returns a transport by kind or an error if it is absent.
func (r *TransportRegistry) Resolve(kind string) (Transport, error) {
	if t, ok := r.transports[kind]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("transport %s is not registered", kind)
}
