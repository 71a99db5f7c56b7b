// Package registry implements the schema registry: a per-server-instance
// mapping from schema URI to Schema, plus the reverse mapping from
// resource type name to its core schema URI. Standard User and Group
// schemas are pre-loaded; registration after that is append-only.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/xraph/scimcore/internal/errs"
)

// DataType enumerates the SCIM attribute data types.
type DataType string

const (
	TypeString   DataType = "String"
	TypeBoolean  DataType = "Boolean"
	TypeDecimal  DataType = "Decimal"
	TypeInteger  DataType = "Integer"
	TypeDateTime DataType = "DateTime"
	TypeBinary   DataType = "Binary"
	TypeRef      DataType = "Reference"
	TypeComplex  DataType = "Complex"
)

// Mutability mirrors RFC 7643 §2.2 attribute mutability.
type Mutability string

const (
	MutabilityReadWrite Mutability = "readWrite"
	MutabilityReadOnly  Mutability = "readOnly"
	MutabilityImmutable Mutability = "immutable"
	MutabilityWriteOnly Mutability = "writeOnly"
)

// Returned mirrors RFC 7643 §2.2 attribute "returned" characteristic.
type Returned string

const (
	ReturnedAlways  Returned = "always"
	ReturnedNever   Returned = "never"
	ReturnedDefault Returned = "default"
	ReturnedRequest Returned = "request"
)

// Uniqueness mirrors RFC 7643 §2.2 attribute uniqueness.
type Uniqueness string

const (
	UniquenessNone   Uniqueness = "none"
	UniquenessServer Uniqueness = "server"
	UniquenessGlobal Uniqueness = "global"
)

// AttributeDefinition describes one schema attribute, possibly recursively
// via SubAttributes for Complex attributes.
type AttributeDefinition struct {
	Name            string
	DataType        DataType
	Required        bool
	MultiValued     bool
	Mutability      Mutability
	Returned        Returned
	Uniqueness      Uniqueness
	CaseExact       bool
	CanonicalValues []string
	SubAttributes   []AttributeDefinition
}

// Schema is a single registered SCIM schema.
type Schema struct {
	ID          string
	Name        string
	Description string
	Attributes  []AttributeDefinition
}

// Registry holds the schema URI -> Schema map and the resource type ->
// core schema URI reverse map. Safe for concurrent readers once
// initialized; writes (Register) take an exclusive lock.
type Registry struct {
	mu             sync.RWMutex
	schemas        map[string]Schema
	coreByResource map[string]string
}

// New creates a Registry pre-loaded with the standard User and Group
// core schemas.
func New() *Registry {
	r := &Registry{
		schemas:        make(map[string]Schema),
		coreByResource: make(map[string]string),
	}
	user := userCoreSchema()
	group := groupCoreSchema()
	r.schemas[user.ID] = user
	r.schemas[group.ID] = group
	r.coreByResource["User"] = user.ID
	r.coreByResource["Group"] = group.ID
	return r
}

// Register inserts a new schema; fails if the URI is already present.
func (r *Registry) Register(s Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[s.ID]; exists {
		return errs.InvalidRequest("schema already registered: " + s.ID)
	}
	r.schemas[s.ID] = s
	return nil
}

// RegisterCoreSchema registers s and additionally marks it the core
// schema for resourceType, for extension registries that introduce a
// new resource type.
func (r *Registry) RegisterCoreSchema(resourceType string, s Schema) error {
	if err := r.Register(s); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coreByResource[resourceType] = s.ID
	return nil
}

// GetByURI looks up a schema by its URI.
func (r *Registry) GetByURI(uri string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[uri]
	return s, ok
}

// GetForResourceType returns the core schema for a resource type name.
func (r *Registry) GetForResourceType(resourceType string) (Schema, bool) {
	r.mu.RLock()
	uri, ok := r.coreByResource[resourceType]
	r.mu.RUnlock()
	if !ok {
		return Schema{}, false
	}
	return r.GetByURI(uri)
}

// ListAll returns every registered schema in stable order by URI.
func (r *Registry) ListAll() []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Schema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AttributeDefinition traverses the core schema for resourceType plus
// any registered extension schemas, addressing sub-attributes by a
// dotted path ("name.givenName").
func (r *Registry) AttributeDefinition(resourceType, attributeName string) (AttributeDefinition, bool) {
	segments := strings.SplitN(attributeName, ".", 2)
	top := segments[0]

	core, ok := r.GetForResourceType(resourceType)
	if ok {
		if def, found := findAttribute(core.Attributes, top, segments); found {
			return def, true
		}
	}

	r.mu.RLock()
	coreURIs := make(map[string]bool, len(r.coreByResource))
	for _, uri := range r.coreByResource {
		coreURIs[uri] = true
	}
	schemas := make([]Schema, 0, len(r.schemas))
	for _, s := range r.schemas {
		if !coreURIs[s.ID] {
			schemas = append(schemas, s)
		}
	}
	r.mu.RUnlock()
	for _, s := range schemas {
		if def, found := findAttribute(s.Attributes, top, segments); found {
			return def, true
		}
	}
	return AttributeDefinition{}, false
}

func findAttribute(attrs []AttributeDefinition, top string, segments []string) (AttributeDefinition, bool) {
	for _, a := range attrs {
		if a.Name != top {
			continue
		}
		if len(segments) == 1 {
			return a, true
		}
		for _, sub := range a.SubAttributes {
			if sub.Name == segments[1] {
				return sub, true
			}
		}
		return AttributeDefinition{}, false
	}
	return AttributeDefinition{}, false
}
