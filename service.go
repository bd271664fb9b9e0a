package memberjwt

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CredentialResolver authenticates callers and returns their Principal.
// Implementations report rejections as ErrAuthenticationFailed.
type CredentialResolver interface {
	// ResolveByBasicAuth authenticates credentials taken from a Basic Authorization header.
	ResolveByBasicAuth(ctx context.Context, credentials BasicCredentials) (Principal, error)

	// ResolveByIdentifierAndPassword looks up a member by its unique identifier and checks the password.
	ResolveByIdentifierAndPassword(ctx context.Context, identifier, password string) (Principal, error)
}

// Option customizes a Service at construction.
type Option func(*Service)

// WithResolver sets the resolver used by IssueFromCredentials and IssueFromBasicAuth.
func WithResolver(resolver CredentialResolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// WithClock replaces the wall clock used for stamping and verifying tokens.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Service issues, verifies and renews member tokens.
//
// A Service holds no mutable state after NewService returns and is safe for
// concurrent use by multiple goroutines.
type Service struct {
	config           Config
	clock            Clock
	resolver         CredentialResolver
	builder          *Builder
	signer           *Signer
	thresholdMinutes int64
}

// NewService validates cfg and returns a ready Service. A missing secret
// fails here with ErrConfiguration rather than on first use. Zero lifetime
// and threshold values are used as given; see Config.
//
// Example:
//
//	svc, err := memberjwt.NewService(
//	    memberjwt.DefaultConfig(os.Getenv("MEMBERJWT_SECRET")),
//	    memberjwt.WithResolver(resolver),
//	)
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	svc := &Service{
		config:           cfg,
		clock:            RealClock(),
		thresholdMinutes: int64(cfg.RenewThresholdInMinutes),
	}
	for _, opt := range opts {
		opt(svc)
	}

	signer, err := NewSigner([]byte(cfg.Secret), svc.clock)
	if err != nil {
		return nil, err
	}
	svc.signer = signer
	svc.builder = NewBuilder(cfg, svc.clock)

	return svc, nil
}

// Config returns a copy of the configuration the service was built with.
// Changing it has no effect on the service.
func (s *Service) Config() Config {
	cfg := s.config
	cfg.IncludedMemberFields = make(map[string]string, len(s.config.IncludedMemberFields))
	for key, attribute := range s.config.IncludedMemberFields {
		cfg.IncludedMemberFields[key] = attribute
	}
	return cfg
}

// Claims returns a freshly built standard claim set. It is meant for
// diagnostics: the values are never signed.
func (s *Service) Claims() (ClaimSet, error) {
	return s.builder.Build()
}

// IssueFromPrincipal signs a token for an already authenticated principal.
//
// Claims are merged in this order, later entries winning on collision:
//  1. memberId set to the principal ID
//  2. custom claims supplied by the caller
//  3. the standard claims iss, iat, rat, exp and jti
//
// so callers can never override the standard claims. When includeMember is
// true the payload carries the configured profile fields of the principal.
func (s *Service) IssueFromPrincipal(principal Principal, includeMember bool, custom ClaimSet) (*Payload, error) {
	standard, err := s.builder.Build()
	if err != nil {
		return nil, err
	}

	claims := make(ClaimSet, len(custom)+6)
	claims[ClaimMemberID] = principal.ID
	for name, value := range custom {
		claims[name] = value
	}
	for name, value := range standard {
		claims[name] = value
	}

	token, err := s.signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	payload := &Payload{Token: token}
	if includeMember {
		payload.Member = s.memberFields(principal)
	}
	return payload, nil
}

// IssueFromCredentials authenticates identifier and password through the
// configured resolver and issues a token for the resulting principal.
func (s *Service) IssueFromCredentials(ctx context.Context, identifier, password string, includeMember bool, custom ClaimSet) (*Payload, error) {
	if s.resolver == nil {
		return nil, fmt.Errorf("%w: no credential resolver configured", ErrConfiguration)
	}

	principal, err := s.resolver.ResolveByIdentifierAndPassword(ctx, identifier, password)
	if err != nil {
		return nil, asAuthenticationFailure(err)
	}
	return s.IssueFromPrincipal(principal, includeMember, custom)
}

// IssueFromBasicAuth authenticates Basic credentials through the configured
// resolver and issues a token for the resulting principal.
func (s *Service) IssueFromBasicAuth(ctx context.Context, credentials BasicCredentials, includeMember bool) (*Payload, error) {
	if s.resolver == nil {
		return nil, fmt.Errorf("%w: no credential resolver configured", ErrConfiguration)
	}

	principal, err := s.resolver.ResolveByBasicAuth(ctx, credentials)
	if err != nil {
		return nil, asAuthenticationFailure(err)
	}
	return s.IssueFromPrincipal(principal, includeMember, nil)
}

// Verify checks the token signature and expiry against the configured
// secret and returns its claims.
func (s *Service) Verify(token string) (ClaimSet, error) {
	return s.signer.Verify(token)
}

// Check reports whether token has a valid signature and has not expired.
// It never returns an error.
func (s *Service) Check(token string) bool {
	_, err := s.signer.Verify(token)
	return err == nil
}

// Renew returns a token that stays valid for another full lifetime.
//
// A token last signed less than RenewThresholdInMinutes whole minutes ago is
// returned unchanged. An older one is re-signed with rat moved to now and exp
// recomputed from it; iat, jti and every custom claim are carried over.
// Invalid or expired tokens fail with ErrTokenInvalid and no token is
// returned.
func (s *Service) Renew(token string) (string, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return "", err
	}

	renewedAt, ok := claims.Time(ClaimRenewedAt)
	if !ok {
		// Tokens signed before rat existed only carry iat.
		renewedAt, ok = claims.Time(ClaimIssuedAt)
	}
	if !ok {
		return "", fmt.Errorf("%w: missing %s claim", ErrTokenInvalid, ClaimRenewedAt)
	}

	idleMinutes := int64(s.clock.Now().Sub(renewedAt) / time.Minute)
	if idleMinutes < s.thresholdMinutes {
		return token, nil
	}

	return s.signer.Sign(s.builder.restamp(claims))
}

func (s *Service) memberFields(principal Principal) map[string]any {
	member := make(map[string]any, len(s.config.IncludedMemberFields))
	for key, attribute := range s.config.IncludedMemberFields {
		member[key] = principal.Attribute(attribute)
	}
	return member
}

func asAuthenticationFailure(err error) error {
	if errors.Is(err, ErrAuthenticationFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
}
