package memberjwt

import (
	"encoding/json"
	"time"
)

// Standard claim names stamped by the Builder.
const (
	ClaimIssuer    = "iss" // Issuer, the configured issuer or base URL
	ClaimExpiresAt = "exp" // Expiry, last signing time plus the lifetime
	ClaimIssuedAt  = "iat" // First issuance, never changed by renewal
	ClaimRenewedAt = "rat" // Most recent signing
	ClaimTokenID   = "jti" // Random UUID v4

	// ClaimMemberID carries the principal ID. It is a custom claim and is
	// carried through renewal untouched.
	ClaimMemberID = "memberId"
)

// ClaimSet maps claim names to values. Timestamps are int64 unix seconds.
type ClaimSet map[string]any

// Int64 returns the named claim as an integer. Decoded tokens hold int64;
// freshly built sets may hold other integer kinds.
func (c ClaimSet) Int64(name string) (int64, bool) {
	switch v := c[name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Time returns the named timestamp claim.
func (c ClaimSet) Time(name string) (time.Time, bool) {
	sec, ok := c.Int64(name)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}

// String returns the named claim when it is a string.
func (c ClaimSet) String(name string) (string, bool) {
	s, ok := c[name].(string)
	return s, ok
}

// Clone returns a shallow copy of the claim set.
func (c ClaimSet) Clone() ClaimSet {
	out := make(ClaimSet, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Principal is an authenticated identity produced by a CredentialResolver.
//
// Fields:
//   - ID: Stable member identifier, copied into the memberId claim
//   - Attributes: Profile attributes keyed by attribute name (e.g. "Email")
type Principal struct {
	ID         string
	Attributes map[string]any
}

// Attribute returns the named attribute. "ID" always resolves to the principal ID.
func (p Principal) Attribute(name string) any {
	if name == "ID" {
		return p.ID
	}
	return p.Attributes[name]
}

// Payload is the result of an issuance. Token is always encoded first; Member
// is non-nil only when profile data was requested.
type Payload struct {
	Token  string
	Member map[string]any
}

// MarshalJSON encodes {"token": ...} or {"token": ..., "member": {...}}.
// A requested member block is kept even when no fields are configured.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.Member == nil {
		return json.Marshal(struct {
			Token string `json:"token"`
		}{p.Token})
	}
	return json.Marshal(struct {
		Token  string         `json:"token"`
		Member map[string]any `json:"member"`
	}{p.Token, p.Member})
}

// BasicCredentials are the username and password taken from an HTTP Basic
// Authorization header.
type BasicCredentials struct {
	Username string
	Password string
}
