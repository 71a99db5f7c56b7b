package bunstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/scimcore/storage"
)

// newTestStore opens a named, shared-cache in-memory database unique to
// the calling test, so the connection pool's multiple connections see
// one consistent schema without leaking state across tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	s, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	return s
}

func key(tenant, rt, id string) storage.Key {
	return storage.Key{TenantID: tenant, ResourceType: rt, ResourceID: id}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Put(ctx, key("t1", "User", "u1"), []byte(`{"userName":"bjensen"}`))
	require.NoError(t, err)

	val, found, err := s.Get(ctx, key("t1", "User", "u1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"userName":"bjensen"}`, string(val))
}

func TestPutUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Put(ctx, key("t1", "User", "u1"), []byte(`{"userName":"bjensen"}`))
	require.NoError(t, err)
	_, err = s.Put(ctx, key("t1", "User", "u1"), []byte(`{"userName":"dwhite"}`))
	require.NoError(t, err)

	val, found, err := s.Get(ctx, key("t1", "User", "u1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"userName":"dwhite"}`, string(val))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Put(ctx, key("t1", "User", "u1"), []byte(`{}`))
	require.NoError(t, err)

	removed, err := s.Delete(ctx, key("t1", "User", "u1"))
	require.NoError(t, err)
	assert.True(t, removed)

	_, found, err := s.Get(ctx, key("t1", "User", "u1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindByAttribute_UsesIndexedUserName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Put(ctx, key("t1", "User", "u1"), []byte(`{"userName":"bjensen"}`))
	require.NoError(t, err)

	records, err := s.FindByAttribute(ctx, storage.Prefix{TenantID: "t1", ResourceType: "User"}, "userName", "bjensen")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u1", records[0].Key.ResourceID)
}

func TestFindByAttribute_FallsBackForUnindexedAttribute(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Put(ctx, key("t1", "User", "u1"), []byte(`{"nickName":"babs"}`))
	require.NoError(t, err)

	records, err := s.FindByAttribute(ctx, storage.Prefix{TenantID: "t1", ResourceType: "User"}, "nickName", "babs")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Put(ctx, key("t1", "User", "u1"), []byte(`{}`))
	require.NoError(t, err)
	_, err = s.Put(ctx, key("t1", "User", "u2"), []byte(`{}`))
	require.NoError(t, err)

	count, err := s.Count(ctx, storage.Prefix{TenantID: "t1", ResourceType: "User"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
