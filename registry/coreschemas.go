package registry

// userCoreSchema returns the standard SCIM core User schema
// (urn:ietf:params:scim:schemas:core:2.0:User), covering the attributes
// this implementation's value objects and PATCH engine understand.
func userCoreSchema() Schema {
	return Schema{
		ID:          "urn:ietf:params:scim:schemas:core:2.0:User",
		Name:        "User",
		Description: "User Account",
		Attributes: []AttributeDefinition{
			{Name: "userName", DataType: TypeString, Required: true, Uniqueness: UniquenessServer, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "externalId", DataType: TypeString, Uniqueness: UniquenessServer, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "name", DataType: TypeComplex, Mutability: MutabilityReadWrite, Returned: ReturnedDefault, SubAttributes: []AttributeDefinition{
				{Name: "formatted", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "familyName", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "givenName", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "middleName", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "honorificPrefix", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "honorificSuffix", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			}},
			{Name: "emails", DataType: TypeComplex, MultiValued: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault, SubAttributes: []AttributeDefinition{
				{Name: "value", DataType: TypeString, Required: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "display", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "type", DataType: TypeString, CanonicalValues: []string{"work", "home", "other"}, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "primary", DataType: TypeBoolean, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			}},
			{Name: "phoneNumbers", DataType: TypeComplex, MultiValued: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault, SubAttributes: []AttributeDefinition{
				{Name: "value", DataType: TypeString, Required: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "display", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "type", DataType: TypeString, CanonicalValues: []string{"work", "home", "mobile", "fax", "pager", "other"}, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "primary", DataType: TypeBoolean, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			}},
			{Name: "addresses", DataType: TypeComplex, MultiValued: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault, SubAttributes: []AttributeDefinition{
				{Name: "formatted", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "streetAddress", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "locality", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "region", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "postalCode", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "country", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "type", DataType: TypeString, CanonicalValues: []string{"work", "home", "other"}, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "primary", DataType: TypeBoolean, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			}},
			{Name: "active", DataType: TypeBoolean, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "displayName", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "nickName", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "profileUrl", DataType: TypeRef, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "title", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "userType", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "preferredLanguage", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "locale", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "timezone", DataType: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
		},
	}
}

// groupCoreSchema returns the standard SCIM core Group schema
// (urn:ietf:params:scim:schemas:core:2.0:Group).
func groupCoreSchema() Schema {
	return Schema{
		ID:          "urn:ietf:params:scim:schemas:core:2.0:Group",
		Name:        "Group",
		Description: "Group",
		Attributes: []AttributeDefinition{
			{Name: "displayName", DataType: TypeString, Required: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "externalId", DataType: TypeString, Uniqueness: UniquenessServer, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "members", DataType: TypeComplex, MultiValued: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault, SubAttributes: []AttributeDefinition{
				{Name: "value", DataType: TypeString, Required: true, Mutability: MutabilityImmutable, Returned: ReturnedDefault},
				{Name: "$ref", DataType: TypeRef, Mutability: MutabilityImmutable, Returned: ReturnedDefault},
				{Name: "type", DataType: TypeString, CanonicalValues: []string{"User", "Group"}, Mutability: MutabilityImmutable, Returned: ReturnedDefault},
				{Name: "display", DataType: TypeString, Mutability: MutabilityImmutable, Returned: ReturnedDefault},
			}},
		},
	}
}
