package resource

import "github.com/xraph/scimcore/valueobject"

// Wire-format structs mirror the SCIM JSON shape of each complex
// attribute; they exist only at the serialization boundary so that the
// value-object types in package valueobject never carry json tags.

type nameWireT struct {
	Formatted       string `json:"formatted,omitempty"`
	FamilyName      string `json:"familyName,omitempty"`
	GivenName       string `json:"givenName,omitempty"`
	MiddleName      string `json:"middleName,omitempty"`
	HonorificPrefix string `json:"honorificPrefix,omitempty"`
	HonorificSuffix string `json:"honorificSuffix,omitempty"`
}

func nameWire(n valueobject.Name) nameWireT {
	return nameWireT{
		Formatted:       n.Formatted,
		FamilyName:      n.FamilyName,
		GivenName:       n.GivenName,
		MiddleName:      n.MiddleName,
		HonorificPrefix: n.HonorificPrefix,
		HonorificSuffix: n.HonorificSuffix,
	}
}

type emailWireT struct {
	Value   string `json:"value"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

func emailsWire(emails []valueobject.EmailAddress) []emailWireT {
	out := make([]emailWireT, len(emails))
	for i, e := range emails {
		out[i] = emailWireT{Value: e.Value, Display: e.Display, Type: e.Type, Primary: e.Primary}
	}
	return out
}

type phoneWireT struct {
	Value   string `json:"value"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

func phonesWire(phones []valueobject.PhoneNumber) []phoneWireT {
	out := make([]phoneWireT, len(phones))
	for i, p := range phones {
		out[i] = phoneWireT{Value: p.Value, Display: p.Display, Type: p.Type, Primary: p.Primary}
	}
	return out
}

type addressWireT struct {
	Formatted     string `json:"formatted,omitempty"`
	StreetAddress string `json:"streetAddress,omitempty"`
	Locality      string `json:"locality,omitempty"`
	Region        string `json:"region,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Country       string `json:"country,omitempty"`
	Type          string `json:"type,omitempty"`
	Primary       bool   `json:"primary,omitempty"`
}

func addressesWire(addrs []valueobject.Address) []addressWireT {
	out := make([]addressWireT, len(addrs))
	for i, a := range addrs {
		out[i] = addressWireT{
			Formatted: a.Formatted, StreetAddress: a.StreetAddress, Locality: a.Locality,
			Region: a.Region, PostalCode: a.PostalCode, Country: a.Country,
			Type: a.Type, Primary: a.Primary,
		}
	}
	return out
}

type memberWireT struct {
	Value   string `json:"value"`
	Ref     string `json:"$ref,omitempty"`
	Type    string `json:"type,omitempty"`
	Display string `json:"display,omitempty"`
}

func membersWire(gm valueobject.GroupMembers) []memberWireT {
	out := make([]memberWireT, len(gm.Members))
	for i, m := range gm.Members {
		out[i] = memberWireT{Value: m.Value, Ref: m.Ref, Type: m.Type, Display: m.Display}
	}
	return out
}

type metaWireT struct {
	ResourceType string `json:"resourceType,omitempty"`
	Created      string `json:"created,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
	Location     string `json:"location,omitempty"`
	Version      string `json:"version,omitempty"`
}
