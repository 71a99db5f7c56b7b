// Package resolver implements the tenant resolver: a pluggable mapping
// from an opaque credential string to a tenant.Context. Resolver calls
// are side-effect free; an invalid credential is observationally
// indistinguishable from a missing tenant, to avoid tenant enumeration.
package resolver

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/rs/xid"
	"github.com/xraph/scimcore/tenant"
)

// Resolver maps an opaque credential to a tenant.Context.
type Resolver interface {
	// Resolve returns (nil, nil) for both an invalid credential and a
	// credential for a tenant that no longer exists — the two are
	// deliberately indistinguishable to the caller.
	Resolve(ctx context.Context, credential string) (*tenant.Context, error)
	Exists(ctx context.Context, tenantID string) (bool, error)
	ListTenants(ctx context.Context) ([]string, error)
}

type tenantRecord struct {
	ID         xid.ID
	TenantID   string
	Prefix     string
	SecretHash []byte
	Context    tenant.Context
}

// prefixLen is the plaintext-visible credential prefix used to index
// records, mirroring the teacher's token-prefix lookup pattern so a full
// bcrypt comparison is only paid once a candidate is found.
const prefixLen = 8

// InMemoryResolver is the reference Resolver: a single map guarded by a
// readers-writer lock, matching the storage-layer shared-resource policy.
type InMemoryResolver struct {
	mu       sync.RWMutex
	byPrefix map[string]tenantRecord
}

// NewInMemoryResolver creates an empty InMemoryResolver.
func NewInMemoryResolver() *InMemoryResolver {
	return &InMemoryResolver{byPrefix: make(map[string]tenantRecord)}
}

var _ Resolver = (*InMemoryResolver)(nil)

// Register issues a new tenant credential, hashing it with bcrypt before
// storing. It returns the record id. Only the credential's first
// prefixLen characters are kept in plaintext, as the lookup key; a
// credential no longer than prefixLen is therefore kept whole.
func (r *InMemoryResolver) Register(credential string, tc tenant.Context) (xid.ID, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return xid.ID{}, err
	}
	prefix := credentialPrefix(credential)

	r.mu.Lock()
	defer r.mu.Unlock()
	id := xid.New()
	r.byPrefix[prefix] = tenantRecord{ID: id, TenantID: tc.TenantID, Prefix: prefix, SecretHash: hash, Context: tc}
	return id, nil
}

func credentialPrefix(credential string) string {
	if len(credential) <= prefixLen {
		return credential
	}
	return credential[:prefixLen]
}

func (r *InMemoryResolver) Resolve(_ context.Context, credential string) (*tenant.Context, error) {
	if credential == "" {
		return nil, nil
	}
	r.mu.RLock()
	record, ok := r.byPrefix[credentialPrefix(credential)]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword(record.SecretHash, []byte(credential)); err != nil {
		return nil, nil
	}
	tc := record.Context
	return &tc, nil
}

func (r *InMemoryResolver) Exists(_ context.Context, tenantID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.byPrefix {
		if rec.TenantID == tenantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryResolver) ListTenants(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	for _, rec := range r.byPrefix {
		seen[rec.TenantID] = true
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
