package resource

import (
	"fmt"
	"time"

	"github.com/xraph/scimcore/internal/errs"
	"github.com/xraph/scimcore/valueobject"
)

const (
	coreSchemaUser  = "urn:ietf:params:scim:schemas:core:2.0:User"
	coreSchemaGroup = "urn:ietf:params:scim:schemas:core:2.0:Group"
)

// Builder is a fluent accumulator for constructing a Resource. New
// auto-seeds the core schema URI for "User"/"Group" resource types.
type Builder struct {
	resourceType string
	id           valueobject.ResourceId
	externalID   valueobject.ExternalId
	schemas      []valueobject.SchemaUri
	userName     valueobject.UserName
	name         *valueobject.Name
	addresses    []valueobject.Address
	phoneNumbers []valueobject.PhoneNumber
	emails       []valueobject.EmailAddress
	members      *valueobject.GroupMembers
	meta         *valueobject.Meta
	attributes   map[string]any
}

// NewBuilder creates a builder for resourceType, auto-seeding the
// matching core schema URI for "User" and "Group".
func NewBuilder(resourceType string) *Builder {
	b := &Builder{resourceType: resourceType, attributes: map[string]any{}}
	switch resourceType {
	case "User":
		if uri, err := valueobject.NewSchemaUri(coreSchemaUser); err == nil {
			b.schemas = append(b.schemas, uri)
		}
	case "Group":
		if uri, err := valueobject.NewSchemaUri(coreSchemaGroup); err == nil {
			b.schemas = append(b.schemas, uri)
		}
	}
	return b
}

func (b *Builder) WithID(id valueobject.ResourceId) *Builder {
	b.id = id
	return b
}

func (b *Builder) WithExternalID(id valueobject.ExternalId) *Builder {
	b.externalID = id
	return b
}

func (b *Builder) WithSchema(uri valueobject.SchemaUri) *Builder {
	b.schemas = append(b.schemas, uri)
	return b
}

func (b *Builder) WithUserName(u valueobject.UserName) *Builder {
	b.userName = u
	return b
}

func (b *Builder) WithName(n valueobject.Name) *Builder {
	b.name = &n
	return b
}

func (b *Builder) WithAddresses(addrs []valueobject.Address) *Builder {
	b.addresses = addrs
	return b
}

func (b *Builder) WithPhoneNumbers(phones []valueobject.PhoneNumber) *Builder {
	b.phoneNumbers = phones
	return b
}

func (b *Builder) WithEmails(emails []valueobject.EmailAddress) *Builder {
	b.emails = emails
	return b
}

func (b *Builder) WithMembers(m valueobject.GroupMembers) *Builder {
	b.members = &m
	return b
}

func (b *Builder) WithMeta(m valueobject.Meta) *Builder {
	b.meta = &m
	return b
}

func (b *Builder) WithAttribute(name string, value any) *Builder {
	b.attributes[name] = value
	return b
}

// Build enforces that at least one schema URI is present, then runs the
// same invariants as FromJSON.
func (b *Builder) Build() (*Resource, error) {
	if len(b.schemas) == 0 {
		return nil, fmt.Errorf("resource builder: at least one schema URI is required")
	}

	seen := make(map[string]bool, len(b.schemas))
	for _, s := range b.schemas {
		if seen[s.String()] {
			return nil, errs.ValidationErrorField("schemas", "duplicate schema URI: "+s.String())
		}
		seen[s.String()] = true
	}
	if b.meta != nil && b.meta.ResourceType != "" && b.meta.ResourceType != b.resourceType {
		return nil, errs.ValidationErrorField("meta.resourceType", "must match resource type")
	}

	primaries := make([]bool, 0, len(b.emails))
	for _, e := range b.emails {
		primaries = append(primaries, e.Primary)
	}
	if err := valueobject.CheckAtMostOnePrimary("emails", primaries); err != nil {
		return nil, err
	}
	primaries = primaries[:0]
	for _, p := range b.phoneNumbers {
		primaries = append(primaries, p.Primary)
	}
	if err := valueobject.CheckAtMostOnePrimary("phoneNumbers", primaries); err != nil {
		return nil, err
	}
	primaries = primaries[:0]
	for _, a := range b.addresses {
		primaries = append(primaries, a.Primary)
	}
	if err := valueobject.CheckAtMostOnePrimary("addresses", primaries); err != nil {
		return nil, err
	}

	return &Resource{
		ResourceType: b.resourceType,
		Id:           b.id,
		ExternalId:   b.externalID,
		Schemas:      b.schemas,
		UserName:     b.userName,
		Name:         b.name,
		Emails:       b.emails,
		PhoneNumbers: b.phoneNumbers,
		Addresses:    b.addresses,
		Members:      b.members,
		Meta:         b.meta,
		Attributes:   b.attributes,
	}, nil
}

// BuildWithMeta builds the resource and additionally synthesizes a Meta
// with created = lastModified = now and, when the id is known, location =
// baseURL/<resourceType>s/id (e.g. .../Users/u-1).
func (b *Builder) BuildWithMeta(baseURL string) (*Resource, error) {
	now := time.Now().UTC()
	meta := valueobject.Meta{ResourceType: b.resourceType, Created: now, LastModified: now}
	if !b.id.IsZero() {
		meta.Location = fmt.Sprintf("%s/%ss/%s", baseURL, b.resourceType, b.id.String())
	}
	built, err := valueobject.NewMeta(meta)
	if err != nil {
		return nil, err
	}
	b.meta = &built
	return b.Build()
}
