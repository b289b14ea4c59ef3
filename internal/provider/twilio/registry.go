package twilio

import (
	"sync"

	"github.com/messagegate/smsgate/internal/domain"
)

// Registry caches authenticated REST clients keyed by tenant and, within a
// tenant, by provider account id. Clients are created lazily from bridge
// credentials and live for the process lifetime; there is no eviction, so an
// unbounded tenant/account cardinality grows the cache without limit.
type Registry struct {
	newClient func(accountSID, authToken string) *RestClient

	mu      sync.Mutex
	tenants map[string]*tenantClients
}

type tenantClients struct {
	mu        sync.Mutex
	byAccount map[string]*RestClient
}

func NewRegistry(newClient func(accountSID, authToken string) *RestClient) *Registry {
	return &Registry{
		newClient: newClient,
		tenants:   make(map[string]*tenantClients),
	}
}

// Client returns the cached client for the bridge's tenant and provider
// account, constructing one on first use. Lookups for the same tenant are
// serialized on the tenant bucket; distinct tenants do not contend.
func (r *Registry) Client(bridge domain.Bridge) *RestClient {
	r.mu.Lock()
	bucket, ok := r.tenants[bridge.TenantID]
	if !ok {
		bucket = &tenantClients{byAccount: make(map[string]*RestClient)}
		r.tenants[bridge.TenantID] = bucket
	}
	r.mu.Unlock()

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	client, ok := bucket.byAccount[bridge.AccountID]
	if !ok {
		client = r.newClient(bridge.AccountID, bridge.AuthToken)
		bucket.byAccount[bridge.AccountID] = client
	}
	return client
}
