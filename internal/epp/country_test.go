package epp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISO3166(t *testing.T) {
	for _, code := range []string{"US", "de", "JP", "NZ"} {
		_, ok := ISO3166.Lookup(code)
		assert.True(t, ok, code)
	}
	cc, ok := ISO3166.Lookup("de")
	require.True(t, ok)
	assert.Equal(t, "DE", cc)
	for _, code := range []string{"", "U", "USA", "ZZ", "419", "XX"} {
		_, ok := ISO3166.Lookup(code)
		assert.False(t, ok, code)
	}
}

func TestNewPostalAddress(t *testing.T) {
	addr, err := NewPostalAddress(nil, []string{"123 Example Dr."}, "Dulles", "VA", "20166", "us")
	require.NoError(t, err)
	assert.Equal(t, "US", addr.CountryCode)

	_, err = NewPostalAddress(nil, nil, "Nowhere", "", "", "XX")
	assert.ErrorIs(t, err, ErrUnknownCountry)

	_, err = NewPostalAddress(nil, []string{"a", "b", "c", "d"}, "Dulles", "", "", "US")
	assert.Error(t, err)

	narrow := NewCountryList("CA")
	_, err = NewPostalAddress(narrow, nil, "Dulles", "", "", "US")
	assert.ErrorIs(t, err, ErrUnknownCountry)
	addr, err = NewPostalAddress(narrow, nil, "Ottawa", "ON", "", "ca")
	require.NoError(t, err)
	assert.Equal(t, "CA", addr.CountryCode)
}
