package conditional

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/scimcore/patch"
	"github.com/xraph/scimcore/provider"
	"github.com/xraph/scimcore/registry"
	"github.com/xraph/scimcore/storage/memstore"
	"github.com/xraph/scimcore/tenant"
	"github.com/xraph/scimcore/version"
)

const validUser = `{
	"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"],
	"userName": "bjensen"
}`

func newTestSetup() (provider.Provider, tenant.RequestContext) {
	p := provider.New(memstore.New(), registry.New())
	return p, tenant.NewRequestContext("", nil)
}

func TestUpdate_SuccessOnMatchingVersion(t *testing.T) {
	p, rctx := newTestSetup()
	created, err := p.Create(context.Background(), "User", []byte(validUser), rctx)
	require.NoError(t, err)

	body := `{"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"], "id": "` + created.Resource.Id.String() + `", "userName": "dwhite"}`
	result, err := Update(context.Background(), p, "User", created.Resource.Id.String(), []byte(body), created.Version, rctx)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "dwhite", result.Value().Resource.UserName.String())
}

func TestUpdate_VersionMismatch(t *testing.T) {
	p, rctx := newTestSetup()
	created, err := p.Create(context.Background(), "User", []byte(validUser), rctx)
	require.NoError(t, err)

	stale := version.FromRaw("not-the-real-version")
	body := `{"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"], "id": "` + created.Resource.Id.String() + `", "userName": "dwhite"}`
	result, err := Update(context.Background(), p, "User", created.Resource.Id.String(), []byte(body), stale, rctx)
	require.NoError(t, err)
	assert.True(t, result.IsVersionMismatch())
	assert.Equal(t, created.Version, result.ConflictValue().Current)
}

func TestUpdate_NotFound(t *testing.T) {
	p, rctx := newTestSetup()
	result, err := Update(context.Background(), p, "User", "missing", []byte(validUser), version.FromRaw("x"), rctx)
	require.NoError(t, err)
	assert.True(t, result.IsNotFound())
}

func TestDelete_SuccessOnMatchingVersion(t *testing.T) {
	p, rctx := newTestSetup()
	created, err := p.Create(context.Background(), "User", []byte(validUser), rctx)
	require.NoError(t, err)

	result, err := Delete(context.Background(), p, "User", created.Resource.Id.String(), created.Version, rctx)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())

	ok, err := p.Exists(context.Background(), "User", created.Resource.Id.String(), rctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete_VersionMismatch(t *testing.T) {
	p, rctx := newTestSetup()
	created, err := p.Create(context.Background(), "User", []byte(validUser), rctx)
	require.NoError(t, err)

	result, err := Delete(context.Background(), p, "User", created.Resource.Id.String(), version.FromRaw("stale"), rctx)
	require.NoError(t, err)
	assert.True(t, result.IsVersionMismatch())
}

func TestPatch_SuccessOnMatchingVersion(t *testing.T) {
	p, rctx := newTestSetup()
	created, err := p.Create(context.Background(), "User", []byte(validUser), rctx)
	require.NoError(t, err)

	req := patch.Request{Operations: []patch.Operation{
		{Op: "replace", Path: "userName", Value: "dwhite"},
	}}
	result, err := Patch(context.Background(), p, "User", created.Resource.Id.String(), req, created.Version, rctx)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "dwhite", result.Value().Resource.UserName.String())
}
