// Package validate implements the schema-driven validator: a structural
// preamble shared by every operation, per-attribute rules drawn from the
// schema registry, and an operation context (Create/Update/Patch) that
// toggles which rules apply. It operates on raw decoded JSON, not on the
// typed Resource, so it can run before a Resource is even constructed.
package validate

import (
	"context"
	"encoding/base64"
	"net/url"
	"time"
	"unicode"

	"github.com/xraph/scimcore/internal/errs"
	"github.com/xraph/scimcore/registry"
)

// OperationContext toggles which structural rules apply.
type OperationContext int

const (
	Create OperationContext = iota
	Update
	Patch
)

// alwaysAllowedTopLevel are top-level keys permitted regardless of
// whether any attached schema declares them.
var alwaysAllowedTopLevel = map[string]bool{"schemas": true, "id": true, "externalId": true, "meta": true}

// UniquenessChecker is the caller-supplied capability the validator uses
// to check uniqueness=Server attributes against the provider; it runs
// synchronously for type/shape checks and is only invoked when a
// uniqueness-sensitive attribute is present. excludeID is the current
// resource's id on Update/Patch (self-exclusion), empty on Create.
type UniquenessChecker func(ctx context.Context, resourceType, attribute, value, excludeID string) (duplicate bool, err error)

// Validator validates raw SCIM JSON documents against schemas held in a
// Registry.
type Validator struct {
	registry *registry.Registry
}

// New creates a Validator backed by reg.
func New(reg *registry.Registry) *Validator {
	return &Validator{registry: reg}
}

// Validate runs the structural preamble, per-attribute rules, schema
// combination rules, and (when a checker is supplied) uniqueness checks
// against doc. excludeID is the id of the resource being updated/patched
// (ignored on Create).
func (v *Validator) Validate(ctx context.Context, opCtx OperationContext, resourceType string, doc map[string]any, excludeID string, check UniquenessChecker) error {
	if err := v.structuralPreamble(opCtx, doc); err != nil {
		return err
	}

	schemaURIs, err := schemasOf(doc)
	if err != nil {
		return err
	}
	if err := v.checkSchemaCombination(schemaURIs); err != nil {
		return err
	}

	allowedTopLevel := map[string]bool{}
	for k := range alwaysAllowedTopLevel {
		allowedTopLevel[k] = true
	}

	var schemas []registry.Schema
	for _, uri := range schemaURIs {
		s, ok := v.registry.GetByURI(uri)
		if !ok {
			return errs.SchemaNotFound(uri)
		}
		schemas = append(schemas, s)
		for _, attr := range s.Attributes {
			allowedTopLevel[attr.Name] = true
		}
	}

	for key := range doc {
		if !allowedTopLevel[key] {
			return errs.ValidationErrorField(key, "unknown attribute for schema")
		}
	}

	for _, s := range schemas {
		for _, attr := range s.Attributes {
			if err := v.validateAttribute(attr, doc[attr.Name], attr.Name); err != nil {
				return err
			}
			if attr.Uniqueness == registry.UniquenessServer && check != nil {
				if value, ok := doc[attr.Name].(string); ok && value != "" {
					dup, err := check(ctx, resourceType, attr.Name, value, excludeID)
					if err != nil {
						return errs.ProviderError(err)
					}
					if dup {
						return errs.DuplicateAttribute(attr.Name, value)
					}
				}
			}
		}
	}

	return nil
}

func schemasOf(doc map[string]any) ([]string, error) {
	raw, ok := doc["schemas"]
	if !ok {
		return nil, errs.ValidationErrorField("schemas", "must be present")
	}
	arr, ok := raw.([]any)
	if !ok || len(arr) == 0 {
		return nil, errs.ValidationErrorField("schemas", "must be a non-empty array")
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(arr))
	for _, s := range arr {
		str, ok := s.(string)
		if !ok {
			return nil, errs.ValidationErrorField("schemas", "entries must be strings")
		}
		if seen[str] {
			return nil, errs.ValidationErrorField("schemas", "duplicate schema URI: "+str)
		}
		seen[str] = true
		out = append(out, str)
	}
	return out, nil
}

const (
	coreUserURI  = "urn:ietf:params:scim:schemas:core:2.0:User"
	coreGroupURI = "urn:ietf:params:scim:schemas:core:2.0:Group"
)

func (v *Validator) checkSchemaCombination(uris []string) error {
	hasUser, hasGroup := false, false
	for _, u := range uris {
		if u == coreUserURI {
			hasUser = true
		}
		if u == coreGroupURI {
			hasGroup = true
		}
	}
	if hasUser && hasGroup {
		return errs.ValidationError("resource must not declare both User and Group core schemas")
	}
	if !hasUser && !hasGroup {
		return errs.ValidationError("resource must declare exactly one of the User or Group core schemas")
	}
	return nil
}

func (v *Validator) structuralPreamble(opCtx OperationContext, doc map[string]any) error {
	if _, err := schemasOf(doc); err != nil {
		return err
	}

	if metaRaw, ok := doc["meta"]; ok {
		meta, ok := metaRaw.(map[string]any)
		if !ok {
			return errs.ValidationErrorField("meta", "must be an object")
		}
		if _, ok := meta["resourceType"]; !ok {
			return errs.ValidationErrorField("meta.resourceType", "must be present when meta is present")
		}
	}

	switch opCtx {
	case Create:
		if _, ok := doc["id"]; ok {
			return errs.ValidationErrorField("id", "must not be supplied on create")
		}
		if metaRaw, ok := doc["meta"].(map[string]any); ok {
			for _, f := range []string{"created", "lastModified", "location", "version"} {
				if _, ok := metaRaw[f]; ok {
					return errs.ValidationErrorField("meta."+f, "must not be supplied on create")
				}
			}
		}
	case Update, Patch:
		if _, ok := doc["id"]; !ok && opCtx == Update {
			return errs.ValidationErrorField("id", "is required")
		}
		// readonly meta.* fields are silently permitted but ignored; the
		// server overwrites them regardless of what the client sent.
	}
	return nil
}

func (v *Validator) validateAttribute(attr registry.AttributeDefinition, value any, path string) error {
	if value == nil {
		if attr.Required {
			return errs.ValidationErrorField(path, "is required")
		}
		return nil
	}

	if attr.MultiValued {
		arr, ok := value.([]any)
		if !ok {
			return errs.ValidationErrorField(path, "must be an array")
		}
		primaries := 0
		for i, item := range arr {
			if attr.DataType == registry.TypeComplex {
				obj, ok := item.(map[string]any)
				if !ok {
					return errs.ValidationErrorField(path, "entries must be objects")
				}
				if err := v.validateComplexEntry(attr, obj, path); err != nil {
					return err
				}
				if p, _ := obj["primary"].(bool); p {
					primaries++
				}
			}
			_ = i
		}
		if primaries > 1 {
			return errs.ValidationErrorField(path, "at most one entry may be marked primary")
		}
		return nil
	}

	if attr.DataType == registry.TypeComplex {
		obj, ok := value.(map[string]any)
		if !ok {
			return errs.ValidationErrorField(path, "must be an object")
		}
		return v.validateComplexEntry(attr, obj, path)
	}

	return v.validateScalar(attr, value, path)
}

func (v *Validator) validateComplexEntry(attr registry.AttributeDefinition, obj map[string]any, path string) error {
	allowed := map[string]bool{}
	for _, sub := range attr.SubAttributes {
		allowed[sub.Name] = true
		if sub.DataType == registry.TypeComplex {
			return errs.ValidationErrorField(path+"."+sub.Name, "complex attributes may not nest further complex attributes")
		}
	}
	for k := range obj {
		if !allowed[k] {
			return errs.ValidationErrorField(path+"."+k, "unknown attribute for schema")
		}
	}
	for _, sub := range attr.SubAttributes {
		v2, present := obj[sub.Name]
		if !present {
			if sub.Required {
				return errs.ValidationErrorField(path+"."+sub.Name, "is required")
			}
			continue
		}
		if err := v.validateScalar(sub, v2, path+"."+sub.Name); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateScalar(attr registry.AttributeDefinition, value any, path string) error {
	if attr.Name == "resourceType" && path == "resourceType" {
		s, ok := value.(string)
		if !ok || (s != "User" && s != "Group") {
			return errs.ValidationErrorField(path, `must be exactly "User" or "Group"`)
		}
		return nil
	}

	switch attr.DataType {
	case registry.TypeString, registry.TypeRef, registry.TypeDateTime, registry.TypeBinary:
		s, ok := value.(string)
		if !ok {
			return errs.ValidationErrorField(path, "must be a string")
		}
		if len(attr.CanonicalValues) > 0 {
			found := false
			for _, c := range attr.CanonicalValues {
				if c == s {
					found = true
					break
				}
			}
			if !found {
				return errs.ValidationErrorField(path, "not one of the canonical values")
			}
		}
		switch attr.DataType {
		case registry.TypeDateTime:
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				return errs.ValidationErrorField(path, "must be RFC 3339")
			}
		case registry.TypeBinary:
			if _, err := base64.StdEncoding.DecodeString(s); err != nil {
				return errs.ValidationErrorField(path, "must be valid base64")
			}
		case registry.TypeRef:
			if _, err := url.Parse(s); err != nil {
				return errs.ValidationErrorField(path, "must be a parseable URI")
			}
		case registry.TypeString:
			if attr.CaseExact && hasInconsistentCasing(s) {
				return errs.ValidationErrorField(path, "case-exact attribute has inconsistent casing")
			}
		}
	case registry.TypeBoolean:
		if _, ok := value.(bool); !ok {
			return errs.ValidationErrorField(path, "must be a boolean")
		}
	case registry.TypeInteger:
		f, ok := value.(float64)
		if !ok || f != float64(int64(f)) {
			return errs.ValidationErrorField(path, "must be an integer")
		}
	case registry.TypeDecimal:
		if _, ok := value.(float64); !ok {
			return errs.ValidationErrorField(path, "must be a number")
		}
	}
	return nil
}

// hasInconsistentCasing is the ad-hoc heuristic spec.md §9 flags as
// test-driven rather than rigorous: both upper and lower case letters
// present, with an initial uppercase letter followed by further mixed
// case. It is applied only to attributes that declare case_exact.
func hasInconsistentCasing(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	hasUpperAfterFirst, hasLower := false, false
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			hasUpperAfterFirst = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	return hasUpperAfterFirst && hasLower
}
