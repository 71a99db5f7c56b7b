package provider

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/xraph/scimcore/internal/errs"
	"github.com/xraph/scimcore/patch"
	"github.com/xraph/scimcore/registry"
	"github.com/xraph/scimcore/resource"
	"github.com/xraph/scimcore/storage"
	"github.com/xraph/scimcore/tenant"
	"github.com/xraph/scimcore/validate"
	"github.com/xraph/scimcore/version"
)

// DefaultProvider is the reference Provider implementation: storage-
// backed CRUD+PATCH with schema validation, duplicate detection, quota
// enforcement, and metadata stamping.
type DefaultProvider struct {
	store     storage.Storage
	registry  *registry.Registry
	validator *validate.Validator
	idGen     IDGenerator
	clock     func() time.Time
	logger    *zap.Logger
	baseURL   string
}

// Option configures a DefaultProvider at construction.
type Option func(*DefaultProvider)

func WithIDGenerator(g IDGenerator) Option { return func(p *DefaultProvider) { p.idGen = g } }
func WithClock(c func() time.Time) Option  { return func(p *DefaultProvider) { p.clock = c } }
func WithLogger(l *zap.Logger) Option      { return func(p *DefaultProvider) { p.logger = l } }
func WithBaseURL(u string) Option          { return func(p *DefaultProvider) { p.baseURL = u } }

// New builds a DefaultProvider over store, validating against reg.
func New(store storage.Storage, reg *registry.Registry, opts ...Option) *DefaultProvider {
	p := &DefaultProvider{
		store:     store,
		registry:  reg,
		validator: validate.New(reg),
		idGen:     UUIDGenerator{},
		clock:     func() time.Time { return time.Now().UTC() },
		logger:    zap.NewNop(),
		baseURL:   "http://localhost/scim/v2",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ Provider = (*DefaultProvider)(nil)

func permissionsOf(rctx tenant.RequestContext) tenant.Permissions {
	if rctx.TenantContext == nil {
		return tenant.FullPermissions()
	}
	return rctx.TenantContext.Permissions
}

func (p *DefaultProvider) prefix(resourceType string, rctx tenant.RequestContext) storage.Prefix {
	return storage.Prefix{TenantID: tenant.EffectiveTenantID(rctx), ResourceType: resourceType}
}

func (p *DefaultProvider) key(resourceType, id string, rctx tenant.RequestContext) storage.Key {
	return storage.Key{TenantID: tenant.EffectiveTenantID(rctx), ResourceType: resourceType, ResourceID: id}
}

func decodeJSON(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.InvalidRequest("malformed JSON body")
	}
	return doc, nil
}

// uniquenessChecker returns a validate.UniquenessChecker bound to this
// provider's storage, scoped to the tenant in rctx.
func (p *DefaultProvider) uniquenessChecker(rctx tenant.RequestContext) validate.UniquenessChecker {
	return func(ctx context.Context, resourceType, attribute, value, excludeID string) (bool, error) {
		records, err := p.store.FindByAttribute(ctx, p.prefix(resourceType, rctx), attribute, value)
		if err != nil {
			return false, err
		}
		for _, rec := range records {
			if rec.Key.ResourceID != excludeID {
				return true, nil
			}
		}
		return false, nil
	}
}

func (p *DefaultProvider) loadVersioned(ctx context.Context, resourceType, id string, rctx tenant.RequestContext) (*resource.VersionedResource, error) {
	raw, found, err := p.store.Get(ctx, p.key(resourceType, id, rctx))
	if err != nil {
		return nil, errs.ProviderError(err)
	}
	if !found {
		return nil, nil
	}
	r, err := resource.FromJSON(resourceType, raw)
	if err != nil {
		return nil, errs.InternalError(err)
	}
	v := version.Version{}
	if r.Meta != nil && r.Meta.Version != "" {
		v = version.FromRaw(r.Meta.Version)
	}
	return &resource.VersionedResource{Resource: *r, Version: v}, nil
}

func (p *DefaultProvider) quotaLimit(resourceType string, rctx tenant.RequestContext) *int {
	perms := permissionsOf(rctx)
	switch resourceType {
	case "User":
		return perms.MaxUsers
	case "Group":
		return perms.MaxGroups
	}
	return nil
}

func (p *DefaultProvider) Create(ctx context.Context, resourceType string, data []byte, rctx tenant.RequestContext) (resource.VersionedResource, error) {
	if !permissionsOf(rctx).CanCreate {
		return resource.VersionedResource{}, errs.TenantValidation("create not permitted")
	}

	doc, err := decodeJSON(data)
	if err != nil {
		return resource.VersionedResource{}, err
	}
	if err := p.validator.Validate(ctx, validate.Create, resourceType, doc, "", p.uniquenessChecker(rctx)); err != nil {
		return resource.VersionedResource{}, err
	}

	if max := p.quotaLimit(resourceType, rctx); max != nil {
		count, err := p.store.Count(ctx, p.prefix(resourceType, rctx))
		if err != nil {
			return resource.VersionedResource{}, errs.ProviderError(err)
		}
		if count >= *max {
			return resource.VersionedResource{}, errs.QuotaExceeded(resourceType, *max)
		}
	}

	r, err := resource.FromJSON(resourceType, data)
	if err != nil {
		return resource.VersionedResource{}, err
	}

	id := r.Id
	if id.IsZero() {
		generated, err := buildResourceID(p.idGen.NewID())
		if err != nil {
			return resource.VersionedResource{}, err
		}
		id = generated
	}
	r.Id = id

	// Stored timestamps carry second precision; truncating here keeps the
	// returned resource identical to what a later read yields.
	now := p.clock().Truncate(time.Second)
	meta, err := buildMeta(p.baseURL, resourceType, now, now, id.String())
	if err != nil {
		return resource.VersionedResource{}, err
	}
	r.Meta = &meta

	vr, raw, err := p.finalize(*r)
	if err != nil {
		return resource.VersionedResource{}, err
	}

	if _, err := p.store.Put(ctx, p.key(resourceType, id.String(), rctx), raw); err != nil {
		p.logger.Error("provider: create storage put failed", zap.String("resource_type", resourceType), zap.Error(err))
		return resource.VersionedResource{}, errs.ProviderError(err)
	}
	return vr, nil
}

func (p *DefaultProvider) Get(ctx context.Context, resourceType, id string, rctx tenant.RequestContext) (*resource.VersionedResource, error) {
	if !permissionsOf(rctx).CanRead {
		return nil, errs.TenantValidation("read not permitted")
	}
	return p.loadVersioned(ctx, resourceType, id, rctx)
}

func (p *DefaultProvider) Update(ctx context.Context, resourceType, id string, data []byte, rctx tenant.RequestContext) (resource.VersionedResource, error) {
	if !permissionsOf(rctx).CanUpdate {
		return resource.VersionedResource{}, errs.TenantValidation("update not permitted")
	}

	current, err := p.loadVersioned(ctx, resourceType, id, rctx)
	if err != nil {
		return resource.VersionedResource{}, err
	}
	if current == nil {
		return resource.VersionedResource{}, errs.ResourceNotFound(resourceType, id)
	}

	doc, err := decodeJSON(data)
	if err != nil {
		return resource.VersionedResource{}, err
	}
	if err := p.validator.Validate(ctx, validate.Update, resourceType, doc, id, p.uniquenessChecker(rctx)); err != nil {
		return resource.VersionedResource{}, err
	}

	r, err := resource.FromJSON(resourceType, data)
	if err != nil {
		return resource.VersionedResource{}, err
	}
	resourceID, err := buildResourceID(id)
	if err != nil {
		return resource.VersionedResource{}, err
	}
	r.Id = resourceID

	created := p.clock()
	if current.Resource.Meta != nil && !current.Resource.Meta.Created.IsZero() {
		created = current.Resource.Meta.Created
	}
	location := ""
	if current.Resource.Meta != nil {
		location = current.Resource.Meta.Location
	}
	meta, err := buildMetaWithLocation(resourceType, created, p.clock(), location)
	if err != nil {
		return resource.VersionedResource{}, err
	}
	r.Meta = &meta

	vr, raw, err := p.finalize(*r)
	if err != nil {
		return resource.VersionedResource{}, err
	}
	if _, err := p.store.Put(ctx, p.key(resourceType, id, rctx), raw); err != nil {
		p.logger.Error("provider: update storage put failed", zap.String("resource_type", resourceType), zap.String("resource_id", id), zap.Error(err))
		return resource.VersionedResource{}, errs.ProviderError(err)
	}
	return vr, nil
}

func (p *DefaultProvider) Delete(ctx context.Context, resourceType, id string, rctx tenant.RequestContext) error {
	if !permissionsOf(rctx).CanDelete {
		return errs.TenantValidation("delete not permitted")
	}
	removed, err := p.store.Delete(ctx, p.key(resourceType, id, rctx))
	if err != nil {
		return errs.ProviderError(err)
	}
	if !removed {
		return errs.ResourceNotFound(resourceType, id)
	}
	return nil
}

func (p *DefaultProvider) List(ctx context.Context, resourceType string, query tenant.ListQuery, rctx tenant.RequestContext) (ListResult, error) {
	if !permissionsOf(rctx).CanList {
		return ListResult{}, errs.TenantValidation("list not permitted")
	}

	startIndex := 1
	if query.StartIndex != nil && *query.StartIndex > 1 {
		startIndex = *query.StartIndex
	}
	offset := startIndex - 1

	limit := -1
	if query.Count != nil {
		limit = *query.Count
	}

	total, err := p.store.Count(ctx, p.prefix(resourceType, rctx))
	if err != nil {
		return ListResult{}, errs.ProviderError(err)
	}

	records, err := p.store.List(ctx, p.prefix(resourceType, rctx), offset, limit)
	if err != nil {
		return ListResult{}, errs.ProviderError(err)
	}

	out := make([]resource.VersionedResource, 0, len(records))
	for _, rec := range records {
		vr, err := recordToVersioned(resourceType, rec)
		if err != nil {
			return ListResult{}, err
		}
		out = append(out, vr)
	}

	return ListResult{
		Resources:    out,
		TotalResults: total,
		StartIndex:   startIndex,
		ItemsPerPage: len(out),
	}, nil
}

func (p *DefaultProvider) FindByAttribute(ctx context.Context, resourceType, attribute, value string, rctx tenant.RequestContext) ([]resource.VersionedResource, error) {
	if !permissionsOf(rctx).CanRead {
		return nil, errs.TenantValidation("read not permitted")
	}
	records, err := p.store.FindByAttribute(ctx, p.prefix(resourceType, rctx), attribute, value)
	if err != nil {
		return nil, errs.ProviderError(err)
	}
	out := make([]resource.VersionedResource, 0, len(records))
	for _, rec := range records {
		vr, err := recordToVersioned(resourceType, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, vr)
	}
	return out, nil
}

func (p *DefaultProvider) Patch(ctx context.Context, resourceType, id string, req patch.Request, rctx tenant.RequestContext) (resource.VersionedResource, error) {
	if !permissionsOf(rctx).CanUpdate {
		return resource.VersionedResource{}, errs.TenantValidation("update not permitted")
	}

	raw, found, err := p.store.Get(ctx, p.key(resourceType, id, rctx))
	if err != nil {
		return resource.VersionedResource{}, errs.ProviderError(err)
	}
	if !found {
		return resource.VersionedResource{}, errs.ResourceNotFound(resourceType, id)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return resource.VersionedResource{}, errs.InternalError(err)
	}

	if err := patch.Apply(doc, req); err != nil {
		return resource.VersionedResource{}, err
	}

	now := p.clock()
	if metaRaw, ok := doc["meta"].(map[string]any); ok {
		metaRaw["lastModified"] = now.Format(time.RFC3339)
		delete(metaRaw, "version")
	}

	patched, err := json.Marshal(doc)
	if err != nil {
		return resource.VersionedResource{}, errs.InternalError(err)
	}

	r, err := resource.FromJSON(resourceType, patched)
	if err != nil {
		return resource.VersionedResource{}, err
	}

	vr, finalRaw, err := p.finalize(*r)
	if err != nil {
		return resource.VersionedResource{}, err
	}
	if _, err := p.store.Put(ctx, p.key(resourceType, id, rctx), finalRaw); err != nil {
		return resource.VersionedResource{}, errs.ProviderError(err)
	}
	return vr, nil
}

func (p *DefaultProvider) Exists(ctx context.Context, resourceType, id string, rctx tenant.RequestContext) (bool, error) {
	if !permissionsOf(rctx).CanRead {
		return false, errs.TenantValidation("read not permitted")
	}
	ok, err := p.store.Exists(ctx, p.key(resourceType, id, rctx))
	if err != nil {
		return false, errs.ProviderError(err)
	}
	return ok, nil
}

// finalize computes the resource's version (over content excluding its
// own meta.version field), stamps meta.version with that hash, and
// returns both the VersionedResource and its canonical storage bytes.
func (p *DefaultProvider) finalize(r resource.Resource) (resource.VersionedResource, []byte, error) {
	ver, err := resource.ComputeVersion(r)
	if err != nil {
		return resource.VersionedResource{}, nil, errs.InternalError(err)
	}
	if r.Meta != nil {
		r.Meta.Version = ver.Raw()
	}
	raw, err := r.ToJSON()
	if err != nil {
		return resource.VersionedResource{}, nil, errs.InternalError(err)
	}
	return resource.VersionedResource{Resource: r, Version: ver}, raw, nil
}

func recordToVersioned(resourceType string, rec storage.Record) (resource.VersionedResource, error) {
	r, err := resource.FromJSON(resourceType, rec.Value)
	if err != nil {
		return resource.VersionedResource{}, errs.InternalError(err)
	}
	v := version.Version{}
	if r.Meta != nil && r.Meta.Version != "" {
		v = version.FromRaw(r.Meta.Version)
	}
	return resource.VersionedResource{Resource: *r, Version: v}, nil
}
