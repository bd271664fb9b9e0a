package memberjwt

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const basicPrefix = "Basic "

// ParseBasicAuth extracts credentials from an Authorization header value.
// An empty header or a header that is not well-formed Basic auth fails with
// ErrAuthenticationFailed.
func ParseBasicAuth(header string) (BasicCredentials, error) {
	if header == "" {
		return BasicCredentials{}, fmt.Errorf("%w: %s", ErrAuthenticationFailed, reasonMissingBasicAuth)
	}
	if len(header) < len(basicPrefix) || !strings.EqualFold(header[:len(basicPrefix)], basicPrefix) {
		return BasicCredentials{}, fmt.Errorf("%w: %s", ErrAuthenticationFailed, reasonMalformedBasicAuth)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(basicPrefix):]))
	if err != nil {
		return BasicCredentials{}, fmt.Errorf("%w: %s", ErrAuthenticationFailed, reasonMalformedBasicAuth)
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return BasicCredentials{}, fmt.Errorf("%w: %s", ErrAuthenticationFailed, reasonMalformedBasicAuth)
	}
	return BasicCredentials{Username: username, Password: password}, nil
}
