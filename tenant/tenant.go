// Package tenant defines the multi-tenant context types: TenantContext
// (identity, client, permissions, isolation level), RequestContext (the
// envelope every operation carries), and ListQuery pagination input.
// These are plain value trees, not graphs: no type here holds a
// reference back to something that holds it.
package tenant

import "github.com/google/uuid"

// IsolationLevel is advisory: it is carried on Context but no package in
// this module acts on it; tenant-scoped storage keys alone separate
// tenants' data.
type IsolationLevel string

const (
	IsolationStrict   IsolationLevel = "Strict"
	IsolationStandard IsolationLevel = "Standard"
	IsolationShared   IsolationLevel = "Shared"
)

// Permissions enumerates what a tenant's client is allowed to do, plus
// optional per-resource-type quotas.
type Permissions struct {
	CanCreate bool
	CanRead   bool
	CanUpdate bool
	CanDelete bool
	CanList   bool
	MaxUsers  *int
	MaxGroups *int
}

// FullPermissions returns a Permissions value with every boolean set and
// no quota limits, the default for a trusted single-tenant deployment.
func FullPermissions() Permissions {
	return Permissions{CanCreate: true, CanRead: true, CanUpdate: true, CanDelete: true, CanList: true}
}

// Context is the TenantContext: identity, client, permissions, and
// isolation level for a resolved tenant.
type Context struct {
	TenantID       string
	ClientID       string
	Permissions    Permissions
	IsolationLevel IsolationLevel
}

// DefaultTenantID is the implicit tenant used when a RequestContext
// carries no TenantContext (single-tenant deployments).
const DefaultTenantID = "default"

// EffectiveTenantID returns ctx.TenantContext.TenantID, or DefaultTenantID
// when the request carries no tenant context.
func EffectiveTenantID(ctx RequestContext) string {
	if ctx.TenantContext == nil || ctx.TenantContext.TenantID == "" {
		return DefaultTenantID
	}
	return ctx.TenantContext.TenantID
}

// RequestContext is the envelope every provider/handler operation
// carries. RequestID is mandatory and generated if absent.
type RequestContext struct {
	RequestID     string
	TenantContext *Context
}

// NewRequestContext builds a RequestContext, generating a RequestID if
// one is not supplied.
func NewRequestContext(requestID string, tc *Context) RequestContext {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return RequestContext{RequestID: requestID, TenantContext: tc}
}

// ListQuery is the pagination input to Provider.List. StartIndex is
// 1-based per SCIM.
type ListQuery struct {
	Count              *int
	StartIndex         *int
	Filter             *string
	Attributes         []string
	ExcludedAttributes []string
}
