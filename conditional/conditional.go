// Package conditional wraps any provider.Provider with version-gated
// update/delete/patch operations, expressed as free functions over the
// provider interface rather than methods every provider implementation
// would otherwise have to duplicate (spec.md §9's composition-over-
// inheritance guidance). The algorithm mirrors the reference
// implementation's conditional-operations helper: load current, compare
// versions, then delegate to the unconditional form.
package conditional

import (
	"context"

	"github.com/xraph/scimcore/internal/errs"
	"github.com/xraph/scimcore/patch"
	"github.com/xraph/scimcore/provider"
	"github.com/xraph/scimcore/resource"
	"github.com/xraph/scimcore/tenant"
	"github.com/xraph/scimcore/version"
)

// Update performs a version-gated update: NotFound if the resource is
// absent, VersionMismatch if expected does not match the stored version,
// otherwise delegates to p.Update and returns Success.
func Update(ctx context.Context, p provider.Provider, resourceType, id string, data []byte, expected version.Version, rctx tenant.RequestContext) (version.ConditionalResult[resource.VersionedResource], error) {
	current, err := p.Get(ctx, resourceType, id, rctx)
	if err != nil {
		return version.ConditionalResult[resource.VersionedResource]{}, err
	}
	if current == nil {
		return version.NotFound[resource.VersionedResource](), nil
	}
	if !current.Version.Equal(expected) {
		return version.VersionMismatch[resource.VersionedResource](version.StandardConflict(expected, current.Version)), nil
	}

	updated, err := p.Update(ctx, resourceType, id, data, rctx)
	if err != nil {
		return version.ConditionalResult[resource.VersionedResource]{}, err
	}
	return version.Success(updated), nil
}

// Delete performs a version-gated delete.
func Delete(ctx context.Context, p provider.Provider, resourceType, id string, expected version.Version, rctx tenant.RequestContext) (version.ConditionalResult[struct{}], error) {
	current, err := p.Get(ctx, resourceType, id, rctx)
	if err != nil {
		return version.ConditionalResult[struct{}]{}, err
	}
	if current == nil {
		return version.NotFound[struct{}](), nil
	}
	if !current.Version.Equal(expected) {
		return version.VersionMismatch[struct{}](version.StandardConflict(expected, current.Version)), nil
	}

	if err := p.Delete(ctx, resourceType, id, rctx); err != nil {
		if errs.Code(err) == errs.CodeResourceNotFound {
			return version.NotFound[struct{}](), nil
		}
		return version.ConditionalResult[struct{}]{}, err
	}
	return version.Success(struct{}{}), nil
}

// Patch performs a version-gated PATCH.
func Patch(ctx context.Context, p provider.Provider, resourceType, id string, req patch.Request, expected version.Version, rctx tenant.RequestContext) (version.ConditionalResult[resource.VersionedResource], error) {
	current, err := p.Get(ctx, resourceType, id, rctx)
	if err != nil {
		return version.ConditionalResult[resource.VersionedResource]{}, err
	}
	if current == nil {
		return version.NotFound[resource.VersionedResource](), nil
	}
	if !current.Version.Equal(expected) {
		return version.VersionMismatch[resource.VersionedResource](version.StandardConflict(expected, current.Version)), nil
	}

	patched, err := p.Patch(ctx, resourceType, id, req, rctx)
	if err != nil {
		return version.ConditionalResult[resource.VersionedResource]{}, err
	}
	return version.Success(patched), nil
}
