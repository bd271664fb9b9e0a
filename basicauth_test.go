// File: basicauth_test.go

package memberjwt

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeBasic(userPass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(userPass))
}

func TestParseBasicAuth(t *testing.T) {
	t.Run("Valid header", func(t *testing.T) {
		creds, err := ParseBasicAuth(encodeBasic("ada@example.com:s3cret"))
		require.NoError(t, err)
		assert.Equal(t, BasicCredentials{Username: "ada@example.com", Password: "s3cret"}, creds)
	})

	t.Run("Scheme is case insensitive", func(t *testing.T) {
		creds, err := ParseBasicAuth("basic " + base64.StdEncoding.EncodeToString([]byte("a:b")))
		require.NoError(t, err)
		assert.Equal(t, "a", creds.Username)
	})

	t.Run("Password may contain colons", func(t *testing.T) {
		creds, err := ParseBasicAuth(encodeBasic("ada:pa:ss"))
		require.NoError(t, err)
		assert.Equal(t, "pa:ss", creds.Password)
	})

	t.Run("Empty password is allowed", func(t *testing.T) {
		creds, err := ParseBasicAuth(encodeBasic("ada:"))
		require.NoError(t, err)
		assert.Equal(t, "", creds.Password)
	})

	failures := []struct {
		name   string
		header string
		reason string
	}{
		{"Missing header", "", "missing basic auth credentials"},
		{"Bearer scheme", "Bearer abc.def.ghi", "malformed basic auth header"},
		{"Too short", "Basic", "malformed basic auth header"},
		{"Bad base64", "Basic !!!", "malformed basic auth header"},
		{"No colon", encodeBasic("adaonly"), "malformed basic auth header"},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseBasicAuth(tc.header)
			require.ErrorIs(t, err, ErrAuthenticationFailed)
			assert.Contains(t, err.Error(), tc.reason)
		})
	}
}
