package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseDoc() map[string]any {
	return map[string]any{
		"schemas":  []any{"urn:ietf:params:scim:schemas:core:2.0:User"},
		"id":       "u1",
		"userName": "bjensen",
		"emails":   []any{map[string]any{"value": "a@example.com", "primary": true}},
		"meta":     map[string]any{"resourceType": "User", "created": "2020-01-01T00:00:00Z"},
	}
}

func TestApply_RequiresAtLeastOneOperation(t *testing.T) {
	err := Apply(baseDoc(), Request{})
	assert.Error(t, err)
}

func TestApply_ReplaceScalarAttribute(t *testing.T) {
	doc := baseDoc()
	err := Apply(doc, Request{Operations: []Operation{
		{Op: "replace", Path: "userName", Value: "dwhite"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "dwhite", doc["userName"])
}

func TestApply_AddAppendsToMultiValuedAttribute(t *testing.T) {
	doc := baseDoc()
	err := Apply(doc, Request{Operations: []Operation{
		{Op: "add", Path: "emails", Value: map[string]any{"value": "b@example.com"}},
	}})
	require.NoError(t, err)
	emails := doc["emails"].([]any)
	assert.Len(t, emails, 2)
}

func TestApply_RemoveDeletesTopLevelAttribute(t *testing.T) {
	doc := baseDoc()
	err := Apply(doc, Request{Operations: []Operation{
		{Op: "remove", Path: "emails"},
	}})
	require.NoError(t, err)
	_, exists := doc["emails"]
	assert.False(t, exists)
}

func TestApply_RemoveOnAbsentNestedPathIsNoop(t *testing.T) {
	doc := baseDoc()
	err := Apply(doc, Request{Operations: []Operation{
		{Op: "remove", Path: "name.givenName"},
	}})
	assert.NoError(t, err)
}

func TestApply_ReadonlyPathRejected(t *testing.T) {
	tests := []string{"id", "meta.created", "meta.resourceType", "meta.location", "schemas"}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			doc := baseDoc()
			err := Apply(doc, Request{Operations: []Operation{
				{Op: "replace", Path: path, Value: "x"},
			}})
			assert.Error(t, err)
		})
	}
}

func TestApply_ObviouslyInvalidPathRejected(t *testing.T) {
	doc := baseDoc()
	err := Apply(doc, Request{Operations: []Operation{
		{Op: "add", Path: "nonexistent.field", Value: "x"},
	}})
	assert.Error(t, err)
}

func TestApply_UnbalancedFilterBracketsRejected(t *testing.T) {
	doc := baseDoc()
	err := Apply(doc, Request{Operations: []Operation{
		{Op: "add", Path: "emails[type eq \"work\"", Value: "x"},
	}})
	assert.Error(t, err)
}

func TestApply_UnsupportedOpRejected(t *testing.T) {
	doc := baseDoc()
	err := Apply(doc, Request{Operations: []Operation{
		{Op: "move", Path: "userName", Value: "x"},
	}})
	assert.Error(t, err)
}

func TestApply_NestedPathCreatesIntermediateObjects(t *testing.T) {
	doc := baseDoc()
	err := Apply(doc, Request{Operations: []Operation{
		{Op: "add", Path: "name.givenName", Value: "Barbara"},
	}})
	require.NoError(t, err)
	name := doc["name"].(map[string]any)
	assert.Equal(t, "Barbara", name["givenName"])
}

func TestApply_PathlessAddMergesObject(t *testing.T) {
	doc := baseDoc()
	err := Apply(doc, Request{Operations: []Operation{
		{Op: "add", Value: map[string]any{"nickName": "babs"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "babs", doc["nickName"])
	assert.Equal(t, "bjensen", doc["userName"], "path-less add merges shallowly, leaving keys absent from the value untouched")
}
