package memberjwt

import "errors"

var (
	// ErrConfiguration is returned when the service cannot be built from its
	// configuration, most notably when no secret is set.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthenticationFailed is returned when a credential resolver rejects the
	// caller. The wrapped message carries the resolver's reason.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTokenInvalid is returned when a token is malformed, carries a bad
	// signature, or has expired. The underlying jwt error stays reachable
	// through errors.Is.
	ErrTokenInvalid = errors.New("token invalid")
)

// Reasons reported inside ErrAuthenticationFailed.
const (
	reasonInvalidCredentials = "invalid credentials"
	reasonMemberNotFound     = "member not found"
	reasonIncorrectPassword  = "incorrect password"
	reasonMissingBasicAuth   = "missing basic auth credentials"
	reasonMalformedBasicAuth = "malformed basic auth header"
)
