package toggl

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthHeader(t *testing.T) {
	h, err := NewAuthHeader("dummy_api_key")
	require.NoError(t, err)

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("dummy_api_key:api_token"))
	assert.Equal(t, expected, h.Authorization)
	assert.Equal(t, "application/json", h.ContentType)
}

func TestNewAuthHeader_Deterministic(t *testing.T) {
	a, err := NewAuthHeader("key-one")
	require.NoError(t, err)
	b, err := NewAuthHeader("key-one")
	require.NoError(t, err)
	c, err := NewAuthHeader("key-two")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Authorization, c.Authorization)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(c.Authorization, "Basic "))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), ":api_token"))
}

func TestNewAuthHeader_EmptyKey(t *testing.T) {
	_, err := NewAuthHeader("")
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "api key", cfgErr.Field)
}

func TestAuthHeader_Apply(t *testing.T) {
	h, err := NewAuthHeader("k")
	require.NoError(t, err)
	hdr := http.Header{}
	h.Apply(hdr)
	assert.Equal(t, h.Authorization, hdr.Get("Authorization"))
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
}
