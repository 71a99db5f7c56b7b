package handler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/scimcore/internal/errs"
	"github.com/xraph/scimcore/provider"
	"github.com/xraph/scimcore/registry"
	"github.com/xraph/scimcore/storage/memstore"
	"github.com/xraph/scimcore/version"
)

const validUser = `{
	"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"],
	"userName": "bjensen"
}`

func newTestHandler() *Handler {
	reg := registry.New()
	p := provider.New(memstore.New(), reg)
	return New(p, reg, nil)
}

func TestDispatch_CreateEchoesVersionAndETag(t *testing.T) {
	h := newTestHandler()
	resp := h.Dispatch(context.Background(), Request{Operation: OpCreate, ResourceType: "User", Data: []byte(validUser)})

	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Metadata.Additional)
	assert.NotEmpty(t, resp.Metadata.Additional["version"])
	assert.NotEmpty(t, resp.Metadata.Additional["etag"])
	assert.NotEmpty(t, resp.Metadata.RequestID)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &doc))
	assert.Equal(t, "bjensen", doc["userName"])
}

func TestDispatch_GetMissingResourceIsSuccessWithNilData(t *testing.T) {
	h := newTestHandler()
	resp := h.Dispatch(context.Background(), Request{Operation: OpGet, ResourceType: "User", ResourceID: "missing"})
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Data)
}

func TestDispatch_GetRequiresResourceID(t *testing.T) {
	h := newTestHandler()
	resp := h.Dispatch(context.Background(), Request{Operation: OpGet, ResourceType: "User"})
	assert.False(t, resp.Success)
	assert.Equal(t, errs.CodeInvalidRequest, resp.ErrorCode)
}

func createUser(t *testing.T, h *Handler) map[string]any {
	t.Helper()
	resp := h.Dispatch(context.Background(), Request{Operation: OpCreate, ResourceType: "User", Data: []byte(validUser)})
	require.True(t, resp.Success)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &doc))
	return doc
}

func TestDispatch_ConditionalUpdateSuccess(t *testing.T) {
	h := newTestHandler()
	created := createUser(t, h)
	id := created["id"].(string)
	expected := version.FromRaw(created["meta"].(map[string]any)["version"].(string))

	body := `{"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"], "id": "` + id + `", "userName": "dwhite"}`
	resp := h.Dispatch(context.Background(), Request{
		Operation: OpUpdate, ResourceType: "User", ResourceID: id,
		Data: []byte(body), ExpectedVersion: &expected,
	})
	require.True(t, resp.Success)
	assert.NotEqual(t, expected.Raw(), resp.Metadata.Additional["version"])
}

func TestDispatch_ConditionalUpdateConflict(t *testing.T) {
	h := newTestHandler()
	created := createUser(t, h)
	id := created["id"].(string)
	stale := version.FromRaw("stale-version")

	body := `{"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"], "id": "` + id + `", "userName": "dwhite"}`
	resp := h.Dispatch(context.Background(), Request{
		Operation: OpUpdate, ResourceType: "User", ResourceID: id,
		Data: []byte(body), ExpectedVersion: &stale,
	})
	require.False(t, resp.Success)
	assert.Equal(t, errs.CodeVersionMismatch, resp.ErrorCode)
	assert.Equal(t, stale.Raw(), resp.Metadata.Additional["expected_version"])
	assert.NotEmpty(t, resp.Metadata.Additional["current_version"])
}

func TestDispatch_DuplicateUserNameWithinTenant(t *testing.T) {
	h := newTestHandler()
	createUser(t, h)
	resp := h.Dispatch(context.Background(), Request{Operation: OpCreate, ResourceType: "User", Data: []byte(validUser)})
	assert.False(t, resp.Success)
	assert.Equal(t, errs.CodeDuplicateAttribute, resp.ErrorCode)
}

func TestDispatch_PatchMultiValuedAppend(t *testing.T) {
	h := newTestHandler()
	created := createUser(t, h)
	id := created["id"].(string)

	patchBody, err := json.Marshal(map[string]any{
		"Operations": []map[string]any{
			{"op": "add", "path": "emails", "value": map[string]any{"value": "second@example.com"}},
		},
	})
	require.NoError(t, err)

	resp := h.Dispatch(context.Background(), Request{Operation: OpPatch, ResourceType: "User", ResourceID: id, Data: patchBody})
	require.True(t, resp.Success)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &doc))
	emails := doc["emails"].([]any)
	assert.Len(t, emails, 1)
}

func TestDispatch_GetSchemas(t *testing.T) {
	h := newTestHandler()
	resp := h.Dispatch(context.Background(), Request{Operation: OpGetSchemas})
	require.True(t, resp.Success)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &doc))
	assert.EqualValues(t, 2, doc["totalResults"])
}

func TestDispatch_GetSchemaNotFound(t *testing.T) {
	h := newTestHandler()
	resp := h.Dispatch(context.Background(), Request{Operation: OpGetSchema, ResourceID: "urn:does:not:exist"})
	assert.False(t, resp.Success)
	assert.Equal(t, errs.CodeSchemaNotFound, resp.ErrorCode)
}

func TestDispatch_UnsupportedOperation(t *testing.T) {
	h := newTestHandler()
	resp := h.Dispatch(context.Background(), Request{Operation: "Bogus"})
	assert.False(t, resp.Success)
	assert.Equal(t, errs.CodeUnsupportedOperation, resp.ErrorCode)
}

func TestDispatch_List(t *testing.T) {
	h := newTestHandler()
	createUser(t, h)
	resp := h.Dispatch(context.Background(), Request{Operation: OpList, ResourceType: "User"})
	require.True(t, resp.Success)
	require.NotNil(t, resp.Metadata.TotalResults)
	assert.Equal(t, 1, *resp.Metadata.TotalResults)
}
