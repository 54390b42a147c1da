package tenant

import (
	"fmt"
	"sync"

	"github.com/BrianCLong/govgate/pkg/config"
)

// Principal is a pre-verified caller identity. The gateway does not perform
// token verification itself; it consumes claims an upstream identity provider
// has already verified, keyed here by the presented bearer token.
type Principal struct {
	Token                string
	Subject              string
	TenantID             string
	PrivilegeTier        PrivilegeTier
	BreakGlassAuthorized bool
}

// Registry holds the set of known principals.
type Registry struct {
	mu         sync.RWMutex
	principals map[string]*Principal
}

// NewRegistry creates a registry from the resolver configuration.
func NewRegistry(principals []config.PrincipalConfig) *Registry {
	m := make(map[string]*Principal, len(principals))
	for _, p := range principals {
		m[p.Token] = &Principal{
			Token:                p.Token,
			Subject:              p.Subject,
			TenantID:             p.TenantID,
			PrivilegeTier:        PrivilegeTier(p.PrivilegeTier),
			BreakGlassAuthorized: p.BreakGlassAuthorized,
		}
	}
	return &Registry{principals: m}
}

// Lookup returns the principal for the given bearer token.
func (r *Registry) Lookup(token string) (*Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.principals[token]
	if !ok {
		return nil, fmt.Errorf("unknown principal")
	}
	return p, nil
}

// Add registers a principal. Intended for administrative flows and tests.
func (r *Registry) Add(p *Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.principals[p.Token] = p
}

// Remove deletes a principal by token.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.principals, token)
}
