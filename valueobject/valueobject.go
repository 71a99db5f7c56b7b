// Package valueobject holds the validated, immutable primitives the
// resource model is built from: ResourceId, UserName, ExternalId,
// SchemaUri, EmailAddress, PhoneNumber, Address, Name, Meta and the
// multi-valued collections that enforce the at-most-one-primary rule.
package valueobject

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/xraph/scimcore/internal/errs"
)

const maxStringLength = 256

// ResourceId is a server- or client-supplied resource identifier.
type ResourceId struct{ value string }

func NewResourceId(raw string) (ResourceId, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ResourceId{}, errs.ValidationErrorField("id", "must not be empty")
	}
	if len(v) > maxStringLength {
		return ResourceId{}, errs.ValidationErrorField("id", "exceeds maximum length")
	}
	return ResourceId{value: v}, nil
}

func (r ResourceId) String() string { return r.value }
func (r ResourceId) IsZero() bool   { return r.value == "" }

// UserName is the SCIM userName attribute: non-empty, trimmed, case-preserving.
type UserName struct{ value string }

func NewUserName(raw string) (UserName, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return UserName{}, errs.ValidationErrorField("userName", "must not be empty")
	}
	if len(v) > maxStringLength {
		return UserName{}, errs.ValidationErrorField("userName", "exceeds maximum length")
	}
	return UserName{value: v}, nil
}

func (u UserName) String() string { return u.value }
func (u UserName) IsZero() bool   { return u.value == "" }

// ExternalId is the client-controlled externalId attribute.
type ExternalId struct{ value string }

func NewExternalId(raw string) (ExternalId, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ExternalId{}, errs.ValidationErrorField("externalId", "must not be empty")
	}
	if len(v) > maxStringLength {
		return ExternalId{}, errs.ValidationErrorField("externalId", "exceeds maximum length")
	}
	return ExternalId{value: v}, nil
}

func (e ExternalId) String() string { return e.value }
func (e ExternalId) IsZero() bool   { return e.value == "" }

// SchemaUri is a SCIM schema URN, e.g. urn:ietf:params:scim:schemas:core:2.0:User.
type SchemaUri struct{ value string }

const schemaUriPrefix = "urn:ietf:params:scim:"

func NewSchemaUri(raw string) (SchemaUri, error) {
	v := strings.TrimSpace(raw)
	if !strings.HasPrefix(v, schemaUriPrefix) {
		return SchemaUri{}, errs.ValidationErrorField("schemas", fmt.Sprintf("must start with %q", schemaUriPrefix))
	}
	return SchemaUri{value: v}, nil
}

func (s SchemaUri) String() string { return s.value }
func (s SchemaUri) IsZero() bool   { return s.value == "" }

// EmailAddress is one entry of the multi-valued emails attribute.
type EmailAddress struct {
	Value   string
	Display string
	Type    string
	Primary bool
}

func NewEmailAddress(value, display, typ string, primary bool) (EmailAddress, error) {
	if !strings.Contains(value, "@") {
		return EmailAddress{}, errs.ValidationErrorField("emails.value", "must contain '@'")
	}
	return EmailAddress{Value: value, Display: display, Type: typ, Primary: primary}, nil
}

// PhoneNumberCanonicalTypes are the canonical types a PhoneNumber.Type may take.
var PhoneNumberCanonicalTypes = map[string]bool{
	"work": true, "home": true, "mobile": true, "fax": true, "pager": true, "other": true,
}

// PhoneNumber is one entry of the multi-valued phoneNumbers attribute.
type PhoneNumber struct {
	Value   string
	Display string
	Type    string
	Primary bool
}

func NewPhoneNumber(value, display, typ string, primary bool) (PhoneNumber, error) {
	if strings.TrimSpace(value) == "" {
		return PhoneNumber{}, errs.ValidationErrorField("phoneNumbers.value", "must not be empty")
	}
	if typ != "" && !PhoneNumberCanonicalTypes[typ] {
		return PhoneNumber{}, errs.ValidationErrorField("phoneNumbers.type", fmt.Sprintf("unrecognized canonical type %q", typ))
	}
	return PhoneNumber{Value: value, Display: display, Type: typ, Primary: primary}, nil
}

// AddressCanonicalTypes are the canonical types an Address.Type may take.
var AddressCanonicalTypes = map[string]bool{"work": true, "home": true, "other": true}

// Address is one entry of the multi-valued addresses attribute. All
// sub-fields are optional but at least one must be present.
type Address struct {
	Formatted     string
	StreetAddress string
	Locality      string
	Region        string
	PostalCode    string
	Country       string
	Type          string
	Primary       bool
}

func NewAddress(a Address) (Address, error) {
	if a.Formatted == "" && a.StreetAddress == "" && a.Locality == "" &&
		a.Region == "" && a.PostalCode == "" && a.Country == "" {
		return Address{}, errs.ValidationErrorField("addresses", "at least one sub-field must be present")
	}
	if a.Type != "" && !AddressCanonicalTypes[a.Type] {
		return Address{}, errs.ValidationErrorField("addresses.type", fmt.Sprintf("unrecognized canonical type %q", a.Type))
	}
	return a, nil
}

// Name is the SCIM "name" complex attribute.
type Name struct {
	Formatted       string
	FamilyName      string
	GivenName       string
	MiddleName      string
	HonorificPrefix string
	HonorificSuffix string
}

// Meta is the server-managed resource envelope.
type Meta struct {
	ResourceType string
	Created      time.Time
	LastModified time.Time
	Location     string
	Version      string
}

func NewMeta(m Meta) (Meta, error) {
	if !m.Created.IsZero() && !m.LastModified.IsZero() && m.Created.After(m.LastModified) {
		return Meta{}, errs.ValidationErrorField("meta", "created must not be after lastModified")
	}
	if m.Location != "" {
		u, err := url.Parse(m.Location)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Meta{}, errs.ValidationErrorField("meta.location", "must be a syntactically valid URL")
		}
	}
	return m, nil
}

// GroupMembers is the multi-valued Group "members" attribute.
type GroupMembers struct {
	Members []GroupMember
}

type GroupMember struct {
	Value   string
	Ref     string
	Type    string
	Display string
}

// CheckAtMostOnePrimary enforces the at-most-one-primary invariant shared
// by every multi-valued collection that carries a Primary flag.
func CheckAtMostOnePrimary(field string, primaries []bool) error {
	count := 0
	for _, p := range primaries {
		if p {
			count++
		}
	}
	if count > 1 {
		return errs.ValidationErrorField(field, "at most one entry may be marked primary")
	}
	return nil
}
