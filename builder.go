package memberjwt

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Builder produces the standard claim set for one signing event.
type Builder struct {
	issuer   string
	lifetime time.Duration
	clock    Clock
	newID    func() (uuid.UUID, error)
}

// NewBuilder returns a Builder stamping claims from cfg. A nil clock means RealClock.
func NewBuilder(cfg Config, clock Clock) *Builder {
	if clock == nil {
		clock = RealClock()
	}
	return &Builder{
		issuer:   cfg.IssuerOrBaseURL(),
		lifetime: time.Duration(cfg.LifetimeInDays) * 24 * time.Hour,
		clock:    clock,
		newID:    uuid.NewRandom,
	}
}

// Build returns {iss, iat, rat, exp, jti} for a new token. Each call draws a
// fresh jti, so a claim set must never be reused across tokens. It fails only
// when the random source for the jti is unavailable.
func (b *Builder) Build() (ClaimSet, error) {
	jti, err := b.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token ID: %w", err)
	}

	now := b.clock.Now()
	return ClaimSet{
		ClaimIssuer:    b.issuer,
		ClaimIssuedAt:  now.Unix(),
		ClaimRenewedAt: now.Unix(),
		ClaimExpiresAt: now.Add(b.lifetime).Unix(),
		ClaimTokenID:   jti.String(),
	}, nil
}

// restamp moves rat to now and recomputes exp from it. Every other claim,
// iat and jti included, is left as it was.
func (b *Builder) restamp(claims ClaimSet) ClaimSet {
	now := b.clock.Now()
	out := claims.Clone()
	out[ClaimRenewedAt] = now.Unix()
	out[ClaimExpiresAt] = now.Add(b.lifetime).Unix()
	return out
}
