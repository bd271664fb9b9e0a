package memberjwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs claim sets and verifies tokens with a single HMAC secret.
// It is safe for concurrent use.
type Signer struct {
	method jwt.SigningMethod
	key    []byte
	parser *jwt.Parser
}

// NewSigner creates a Signer for the HS256 algorithm. An empty secret is a
// configuration error. A nil clock means RealClock.
func NewSigner(secret []byte, clock Clock) (*Signer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: secret is required", ErrConfiguration)
	}
	if clock == nil {
		clock = RealClock()
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &Signer{
		method: jwt.SigningMethodHS256,
		key:    key,
		parser: jwt.NewParser(
			// The allow-list comes from configuration, never from the token header.
			jwt.WithValidMethods([]string{Algorithm}),
			jwt.WithExpirationRequired(),
			jwt.WithJSONNumber(),
			jwt.WithTimeFunc(clock.Now),
		),
	}, nil
}

// Sign encodes claims as a compact JWS. It only fails when a claim value
// cannot be encoded as JSON.
func (s *Signer) Sign(claims ClaimSet) (string, error) {
	token := jwt.NewWithClaims(s.method, jwt.MapClaims(claims))
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns its
// claims. Integer claims decode as int64. Every failure wraps ErrTokenInvalid
// together with the jwt library's reason (jwt.ErrTokenExpired,
// jwt.ErrTokenSignatureInvalid, jwt.ErrTokenMalformed, ...).
func (s *Signer) Verify(tokenString string) (ClaimSet, error) {
	token, err := s.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, jwt.ErrTokenInvalidClaims)
	}

	out := make(ClaimSet, len(claims))
	for name, value := range claims {
		out[name] = normalizeClaimValue(value)
	}
	return out, nil
}
