package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveTenantID_DefaultsWhenNoTenantContext(t *testing.T) {
	rctx := RequestContext{RequestID: "r1"}
	assert.Equal(t, DefaultTenantID, EffectiveTenantID(rctx))
}

func TestEffectiveTenantID_DefaultsWhenTenantIDEmpty(t *testing.T) {
	rctx := RequestContext{RequestID: "r1", TenantContext: &Context{}}
	assert.Equal(t, DefaultTenantID, EffectiveTenantID(rctx))
}

func TestEffectiveTenantID_UsesProvidedTenant(t *testing.T) {
	rctx := RequestContext{RequestID: "r1", TenantContext: &Context{TenantID: "acme"}}
	assert.Equal(t, "acme", EffectiveTenantID(rctx))
}

func TestNewRequestContext_GeneratesRequestIDWhenAbsent(t *testing.T) {
	rctx := NewRequestContext("", nil)
	assert.NotEmpty(t, rctx.RequestID)
}

func TestNewRequestContext_PreservesSuppliedRequestID(t *testing.T) {
	rctx := NewRequestContext("req-123", nil)
	assert.Equal(t, "req-123", rctx.RequestID)
}

func TestFullPermissions(t *testing.T) {
	p := FullPermissions()
	assert.True(t, p.CanCreate)
	assert.True(t, p.CanRead)
	assert.True(t, p.CanUpdate)
	assert.True(t, p.CanDelete)
	assert.True(t, p.CanList)
	assert.Nil(t, p.MaxUsers)
	assert.Nil(t, p.MaxGroups)
}
