// Package provider implements the SCIM-level resource provider: CRUD and
// PATCH on top of a storage.Storage backend, with duplicate detection,
// quota enforcement, and metadata stamping. Conditional (version-gated)
// variants live in package conditional as wrappers over this interface,
// per spec.md §9's composition-over-inheritance guidance.
package provider

import (
	"context"

	"github.com/xraph/scimcore/patch"
	"github.com/xraph/scimcore/resource"
	"github.com/xraph/scimcore/tenant"
)

// ListResult is the paginated outcome of List, carrying the SCIM listing
// metadata alongside the resources themselves.
type ListResult struct {
	Resources    []resource.VersionedResource
	TotalResults int
	StartIndex   int
	ItemsPerPage int
}

// Provider is the unconditional resource-provider contract of spec.md
// §4.6. Every method takes a tenant.RequestContext and every successful
// mutation returns a freshly computed version.
type Provider interface {
	Create(ctx context.Context, resourceType string, data []byte, rctx tenant.RequestContext) (resource.VersionedResource, error)

	// Get returns (nil, nil) when the resource does not exist: not-found
	// on a read path is a normal outcome, not an error.
	Get(ctx context.Context, resourceType, id string, rctx tenant.RequestContext) (*resource.VersionedResource, error)

	Update(ctx context.Context, resourceType, id string, data []byte, rctx tenant.RequestContext) (resource.VersionedResource, error)

	Delete(ctx context.Context, resourceType, id string, rctx tenant.RequestContext) error

	List(ctx context.Context, resourceType string, query tenant.ListQuery, rctx tenant.RequestContext) (ListResult, error)

	FindByAttribute(ctx context.Context, resourceType, attribute, value string, rctx tenant.RequestContext) ([]resource.VersionedResource, error)

	Patch(ctx context.Context, resourceType, id string, req patch.Request, rctx tenant.RequestContext) (resource.VersionedResource, error)

	Exists(ctx context.Context, resourceType, id string, rctx tenant.RequestContext) (bool, error)
}
