package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/messagegate/smsgate/internal/domain"
)

// Provider is the outbound SMS delivery port. Send mutates the message in
// place: a successful hand-off records the provider-assigned external id and
// the normalized immediate status, and any provider or transport failure is
// captured as FAILED with the error text on the message. Send never returns
// an error to the caller; failure is fully visible in message state.
type Provider interface {
	Name() string
	Send(ctx context.Context, bridge domain.Bridge, message *domain.Message)
}

// Factory selects the provider variant configured on a bridge.
type Factory struct {
	providers map[string]Provider
}

func NewFactory(providers ...Provider) (*Factory, error) {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("nil provider registered")
		}
		name := normalizeProviderName(p.Name())
		if name == "" {
			return nil, fmt.Errorf("provider with empty name registered")
		}
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("duplicate provider %q registered", name)
		}
		byName[name] = p
	}

	return &Factory{providers: byName}, nil
}

func (f *Factory) ForName(name string) (Provider, error) {
	p, ok := f.providers[normalizeProviderName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrNotFound, name)
	}
	return p, nil
}

func normalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
