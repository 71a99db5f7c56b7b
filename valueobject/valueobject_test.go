package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResourceId(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", "2819c223-7f76-453a-919d-413861904646", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", string(make([]byte, 300)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResourceId(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewEmailAddress(t *testing.T) {
	_, err := NewEmailAddress("user@example.com", "", "work", true)
	require.NoError(t, err)

	_, err = NewEmailAddress("not-an-email", "", "", false)
	assert.Error(t, err)
}

func TestNewPhoneNumber(t *testing.T) {
	_, err := NewPhoneNumber("555-1212", "", "mobile", false)
	require.NoError(t, err)

	_, err = NewPhoneNumber("", "", "", false)
	assert.Error(t, err, "empty value is rejected")

	_, err = NewPhoneNumber("555-1212", "", "carrier-pigeon", false)
	assert.Error(t, err, "non-canonical type is rejected")
}

func TestNewAddress(t *testing.T) {
	_, err := NewAddress(Address{Locality: "Lagos"})
	assert.NoError(t, err)

	_, err = NewAddress(Address{})
	assert.Error(t, err, "at least one sub-field is required")

	_, err = NewAddress(Address{Locality: "Lagos", Type: "spaceship"})
	assert.Error(t, err, "non-canonical type is rejected")
}

func TestNewMeta(t *testing.T) {
	now := time.Now().UTC()
	earlier := now.Add(-time.Hour)

	_, err := NewMeta(Meta{ResourceType: "User", Created: earlier, LastModified: now, Location: "https://example.com/Users/1"})
	assert.NoError(t, err)

	_, err = NewMeta(Meta{ResourceType: "User", Created: now, LastModified: earlier})
	assert.Error(t, err, "created after lastModified is rejected")

	_, err = NewMeta(Meta{ResourceType: "User", Location: "not a url"})
	assert.Error(t, err, "an unparseable location is rejected")
}

func TestCheckAtMostOnePrimary(t *testing.T) {
	assert.NoError(t, CheckAtMostOnePrimary("emails", []bool{true, false, false}))
	assert.NoError(t, CheckAtMostOnePrimary("emails", []bool{false, false}))
	assert.Error(t, CheckAtMostOnePrimary("emails", []bool{true, true}))
}
