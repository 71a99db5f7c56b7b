package validate

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/scimcore/registry"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestValidate_ValidUserOnCreate(t *testing.T) {
	v := New(registry.New())
	doc := decode(t, `{
		"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"],
		"userName": "bjensen"
	}`)
	err := v.Validate(context.Background(), Create, "User", doc, "", nil)
	assert.NoError(t, err)
}

func TestValidate_CreateRejectsClientSuppliedID(t *testing.T) {
	v := New(registry.New())
	doc := decode(t, `{
		"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"],
		"id": "123",
		"userName": "bjensen"
	}`)
	err := v.Validate(context.Background(), Create, "User", doc, "", nil)
	assert.Error(t, err)
}

func TestValidate_MissingRequiredAttribute(t *testing.T) {
	v := New(registry.New())
	doc := decode(t, `{"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"]}`)
	err := v.Validate(context.Background(), Create, "User", doc, "", nil)
	assert.Error(t, err, "userName is required")
}

func TestValidate_UnknownTopLevelAttributeRejected(t *testing.T) {
	v := New(registry.New())
	doc := decode(t, `{
		"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"],
		"userName": "bjensen",
		"notARealAttribute": "x"
	}`)
	err := v.Validate(context.Background(), Create, "User", doc, "", nil)
	assert.Error(t, err)
}

func TestValidate_BothCoreSchemasRejected(t *testing.T) {
	v := New(registry.New())
	doc := decode(t, `{
		"schemas": [
			"urn:ietf:params:scim:schemas:core:2.0:User",
			"urn:ietf:params:scim:schemas:core:2.0:Group"
		],
		"userName": "bjensen",
		"displayName": "x"
	}`)
	err := v.Validate(context.Background(), Create, "User", doc, "", nil)
	assert.Error(t, err)
}

func TestValidate_MultiplePrimaryEmailsRejected(t *testing.T) {
	v := New(registry.New())
	doc := decode(t, `{
		"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"],
		"userName": "bjensen",
		"emails": [
			{"value": "a@example.com", "primary": true},
			{"value": "b@example.com", "primary": true}
		]
	}`)
	err := v.Validate(context.Background(), Create, "User", doc, "", nil)
	assert.Error(t, err)
}

func TestValidate_EmailCanonicalTypeEnforced(t *testing.T) {
	v := New(registry.New())
	doc := decode(t, `{
		"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"],
		"userName": "bjensen",
		"emails": [{"value": "a@example.com", "type": "carrier-pigeon"}]
	}`)
	err := v.Validate(context.Background(), Create, "User", doc, "", nil)
	assert.Error(t, err)
}

func TestValidate_UniquenessCheckerInvokedForServerUniqueAttribute(t *testing.T) {
	v := New(registry.New())
	doc := decode(t, `{
		"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"],
		"userName": "bjensen"
	}`)
	var gotAttr, gotValue string
	checker := func(_ context.Context, resourceType, attribute, value, excludeID string) (bool, error) {
		gotAttr, gotValue = attribute, value
		return true, nil
	}
	err := v.Validate(context.Background(), Create, "User", doc, "", checker)
	assert.Error(t, err, "duplicate userName must be rejected")
	assert.Equal(t, "userName", gotAttr)
	assert.Equal(t, "bjensen", gotValue)
}

func TestHasInconsistentCasing(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"all lower", "bjensen", false},
		{"all upper", "BJENSEN", false},
		{"mixed like PasCal then low", "PascalCase", true},
		{"single capitalized word", "Bjensen", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasInconsistentCasing(tt.in))
		})
	}
}
