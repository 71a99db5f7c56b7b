package provider

import (
	"fmt"
	"time"

	"github.com/xraph/scimcore/valueobject"
)

func buildResourceID(raw string) (valueobject.ResourceId, error) {
	return valueobject.NewResourceId(raw)
}

func buildMeta(baseURL, resourceType string, created, lastModified time.Time, id string) (valueobject.Meta, error) {
	return buildMetaWithLocation(resourceType, created, lastModified, fmt.Sprintf("%s/%ss/%s", baseURL, resourceType, id))
}

func buildMetaWithLocation(resourceType string, created, lastModified time.Time, location string) (valueobject.Meta, error) {
	return valueobject.NewMeta(valueobject.Meta{
		ResourceType: resourceType,
		Created:      created,
		LastModified: lastModified,
		Location:     location,
	})
}
