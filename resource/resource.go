// Package resource implements the typed Resource record, its canonical
// JSON conversion, the fluent Builder, and the VersionedResource pairing
// used whenever a version must travel alongside resource content.
package resource

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/xraph/scimcore/internal/errs"
	"github.com/xraph/scimcore/valueobject"
	"github.com/xraph/scimcore/version"
)

// Readonly top-level/meta paths a client may never set directly; the
// server alone controls them.
var ReadonlyPaths = map[string]bool{
	"id":                true,
	"schemas":           true,
	"meta.created":      true,
	"meta.resourceType": true,
	"meta.location":     true,
}

// Resource is the typed in-memory record for a single SCIM resource.
type Resource struct {
	ResourceType string
	Id           valueobject.ResourceId
	ExternalId   valueobject.ExternalId
	Schemas      []valueobject.SchemaUri
	UserName     valueobject.UserName
	Name         *valueobject.Name
	Emails       []valueobject.EmailAddress
	PhoneNumbers []valueobject.PhoneNumber
	Addresses    []valueobject.Address
	Members      *valueobject.GroupMembers
	Meta         *valueobject.Meta
	Attributes   map[string]any
}

// VersionedResource pairs a Resource with its computed Version.
type VersionedResource struct {
	Resource Resource
	Version  version.Version
}

// ComputeVersion hashes the resource's canonical serialization.
func ComputeVersion(r Resource) (version.Version, error) {
	canonical, err := r.ToJSON()
	if err != nil {
		return version.Version{}, err
	}
	return version.FromCanonicalJSON(canonical), nil
}

// knownTopLevelKeys are the attributes handled by typed fields; anything
// else at the top level lands in Attributes.
var knownTopLevelKeys = map[string]bool{
	"schemas": true, "id": true, "externalId": true, "userName": true,
	"name": true, "emails": true, "phoneNumbers": true, "addresses": true,
	"members": true, "meta": true,
}

// FromJSON parses raw SCIM JSON into a Resource, applying every
// value-object rule along the way.
func FromJSON(resourceType string, raw []byte) (*Resource, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.InvalidRequest("malformed JSON body")
	}

	r := &Resource{ResourceType: resourceType, Attributes: map[string]any{}}

	schemasRaw, ok := doc["schemas"]
	if !ok {
		return nil, errs.ValidationErrorField("schemas", "must be present")
	}
	schemasArr, ok := schemasRaw.([]any)
	if !ok || len(schemasArr) == 0 {
		return nil, errs.ValidationErrorField("schemas", "must be a non-empty array")
	}
	seen := map[string]bool{}
	for _, s := range schemasArr {
		str, ok := s.(string)
		if !ok {
			return nil, errs.ValidationErrorField("schemas", "entries must be strings")
		}
		if seen[str] {
			return nil, errs.ValidationErrorField("schemas", "duplicate schema URI: "+str)
		}
		seen[str] = true
		uri, err := valueobject.NewSchemaUri(str)
		if err != nil {
			return nil, err
		}
		r.Schemas = append(r.Schemas, uri)
	}

	if v, ok := doc["id"]; ok {
		str, ok := v.(string)
		if !ok {
			return nil, errs.ValidationErrorField("id", "must be a string")
		}
		id, err := valueobject.NewResourceId(str)
		if err != nil {
			return nil, err
		}
		r.Id = id
	}

	if v, ok := doc["externalId"]; ok {
		str, ok := v.(string)
		if !ok {
			return nil, errs.ValidationErrorField("externalId", "must be a string")
		}
		ext, err := valueobject.NewExternalId(str)
		if err != nil {
			return nil, err
		}
		r.ExternalId = ext
	}

	if v, ok := doc["userName"]; ok {
		str, ok := v.(string)
		if !ok {
			return nil, errs.ValidationErrorField("userName", "must be a string")
		}
		un, err := valueobject.NewUserName(str)
		if err != nil {
			return nil, err
		}
		r.UserName = un
	}

	if v, ok := doc["name"]; ok {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errs.ValidationErrorField("name", "must be an object")
		}
		n := valueobject.Name{
			Formatted:       strField(obj, "formatted"),
			FamilyName:      strField(obj, "familyName"),
			GivenName:       strField(obj, "givenName"),
			MiddleName:      strField(obj, "middleName"),
			HonorificPrefix: strField(obj, "honorificPrefix"),
			HonorificSuffix: strField(obj, "honorificSuffix"),
		}
		r.Name = &n
	}

	if v, ok := doc["emails"]; ok {
		arr, ok := v.([]any)
		if !ok {
			return nil, errs.ValidationErrorField("emails", "must be an array")
		}
		primaries := make([]bool, 0, len(arr))
		for _, e := range arr {
			obj, ok := e.(map[string]any)
			if !ok {
				return nil, errs.ValidationErrorField("emails", "entries must be objects")
			}
			primary := boolField(obj, "primary")
			email, err := valueobject.NewEmailAddress(strField(obj, "value"), strField(obj, "display"), strField(obj, "type"), primary)
			if err != nil {
				return nil, err
			}
			r.Emails = append(r.Emails, email)
			primaries = append(primaries, primary)
		}
		if err := valueobject.CheckAtMostOnePrimary("emails", primaries); err != nil {
			return nil, err
		}
	}

	if v, ok := doc["phoneNumbers"]; ok {
		arr, ok := v.([]any)
		if !ok {
			return nil, errs.ValidationErrorField("phoneNumbers", "must be an array")
		}
		primaries := make([]bool, 0, len(arr))
		for _, e := range arr {
			obj, ok := e.(map[string]any)
			if !ok {
				return nil, errs.ValidationErrorField("phoneNumbers", "entries must be objects")
			}
			primary := boolField(obj, "primary")
			phone, err := valueobject.NewPhoneNumber(strField(obj, "value"), strField(obj, "display"), strField(obj, "type"), primary)
			if err != nil {
				return nil, err
			}
			r.PhoneNumbers = append(r.PhoneNumbers, phone)
			primaries = append(primaries, primary)
		}
		if err := valueobject.CheckAtMostOnePrimary("phoneNumbers", primaries); err != nil {
			return nil, err
		}
	}

	if v, ok := doc["addresses"]; ok {
		arr, ok := v.([]any)
		if !ok {
			return nil, errs.ValidationErrorField("addresses", "must be an array")
		}
		primaries := make([]bool, 0, len(arr))
		for _, e := range arr {
			obj, ok := e.(map[string]any)
			if !ok {
				return nil, errs.ValidationErrorField("addresses", "entries must be objects")
			}
			primary := boolField(obj, "primary")
			addr, err := valueobject.NewAddress(valueobject.Address{
				Formatted: strField(obj, "formatted"), StreetAddress: strField(obj, "streetAddress"),
				Locality: strField(obj, "locality"), Region: strField(obj, "region"),
				PostalCode: strField(obj, "postalCode"), Country: strField(obj, "country"),
				Type: strField(obj, "type"), Primary: primary,
			})
			if err != nil {
				return nil, err
			}
			r.Addresses = append(r.Addresses, addr)
			primaries = append(primaries, primary)
		}
		if err := valueobject.CheckAtMostOnePrimary("addresses", primaries); err != nil {
			return nil, err
		}
	}

	if v, ok := doc["members"]; ok {
		arr, ok := v.([]any)
		if !ok {
			return nil, errs.ValidationErrorField("members", "must be an array")
		}
		gm := valueobject.GroupMembers{}
		for _, e := range arr {
			obj, ok := e.(map[string]any)
			if !ok {
				return nil, errs.ValidationErrorField("members", "entries must be objects")
			}
			gm.Members = append(gm.Members, valueobject.GroupMember{
				Value: strField(obj, "value"), Ref: strField(obj, "$ref"),
				Type: strField(obj, "type"), Display: strField(obj, "display"),
			})
		}
		r.Members = &gm
	}

	if v, ok := doc["meta"]; ok {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errs.ValidationErrorField("meta", "must be an object")
		}
		if _, hasType := obj["resourceType"]; !hasType {
			return nil, errs.ValidationErrorField("meta.resourceType", "must be present when meta is present")
		}
		m := valueobject.Meta{
			ResourceType: strField(obj, "resourceType"),
			Location:     strField(obj, "location"),
			Version:      strField(obj, "version"),
		}
		if m.ResourceType != "" && m.ResourceType != resourceType {
			return nil, errs.ValidationErrorField("meta.resourceType", "must match resource type")
		}
		if s := strField(obj, "created"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, errs.ValidationErrorField("meta.created", "must be RFC 3339")
			}
			m.Created = t
		}
		if s := strField(obj, "lastModified"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, errs.ValidationErrorField("meta.lastModified", "must be RFC 3339")
			}
			m.LastModified = t
		}
		built, err := valueobject.NewMeta(m)
		if err != nil {
			return nil, err
		}
		r.Meta = &built
	}

	for k, v := range doc {
		if !knownTopLevelKeys[k] {
			r.Attributes[k] = v
		}
	}

	return r, nil
}

func strField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func boolField(obj map[string]any, key string) bool {
	v, ok := obj[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ToJSON serializes the resource in canonical field order: schemas
// first, then id, externalId, then typed attributes, then extension
// attributes — omitting absent fields.
func (r *Resource) ToJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(vb)
		return nil
	}

	schemas := make([]string, len(r.Schemas))
	for i, s := range r.Schemas {
		schemas[i] = s.String()
	}
	if err := write("schemas", schemas); err != nil {
		return nil, err
	}
	if !r.Id.IsZero() {
		if err := write("id", r.Id.String()); err != nil {
			return nil, err
		}
	}
	if !r.ExternalId.IsZero() {
		if err := write("externalId", r.ExternalId.String()); err != nil {
			return nil, err
		}
	}
	if !r.UserName.IsZero() {
		if err := write("userName", r.UserName.String()); err != nil {
			return nil, err
		}
	}
	if r.Name != nil {
		if err := write("name", nameWire(*r.Name)); err != nil {
			return nil, err
		}
	}
	if len(r.Emails) > 0 {
		if err := write("emails", emailsWire(r.Emails)); err != nil {
			return nil, err
		}
	}
	if len(r.PhoneNumbers) > 0 {
		if err := write("phoneNumbers", phonesWire(r.PhoneNumbers)); err != nil {
			return nil, err
		}
	}
	if len(r.Addresses) > 0 {
		if err := write("addresses", addressesWire(r.Addresses)); err != nil {
			return nil, err
		}
	}
	if r.Members != nil && len(r.Members.Members) > 0 {
		if err := write("members", membersWire(*r.Members)); err != nil {
			return nil, err
		}
	}
	if r.Meta != nil {
		mw := metaWireT{ResourceType: r.Meta.ResourceType, Location: r.Meta.Location, Version: r.Meta.Version}
		if !r.Meta.Created.IsZero() {
			mw.Created = r.Meta.Created.UTC().Format(time.RFC3339)
		}
		if !r.Meta.LastModified.IsZero() {
			mw.LastModified = r.Meta.LastModified.UTC().Format(time.RFC3339)
		}
		if err := write("meta", mw); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(r.Attributes))
	for k := range r.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, r.Attributes[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
