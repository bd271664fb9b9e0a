// docs.go

// Package memberjwt issues, verifies and renews HS256 JWTs for API members
// that have passed an initial credential check.
//
// # Overview
//
// The package provides:
// - Issuance from an authenticated Principal, from an identifier and password,
// or from HTTP Basic credentials
// - Signature and expiry verification pinned to a single configured algorithm
// - Idle-based renewal that re-signs a token while keeping its original iat and jti
// - Pluggable member directories (in-memory, Redis, SQL) behind a CredentialResolver
//
// The service keeps no server-side state. A token is valid as long as its
// signature matches the configured secret and its exp lies in the future.
//
// # Token Structure
//
// Every token carries these standard claims:
// - iss (Issuer): Configured issuer, or the base URL of the hosting service
// - iat (Issued At): First issuance, never changed by renewal
// - rat (Renewed At): Most recent signing
// - exp (Expiration): rat plus the configured lifetime
// - jti (JWT ID): Random UUID v4, kept across renewals
//
// Tokens issued for a Principal also carry memberId. Callers may add custom
// claims; the standard claims are merged last and always win.
//
// # Renewal
//
// Renew leaves a token alone while fewer than RenewThresholdInMinutes whole
// minutes have passed since rat. Once that threshold is reached the token is
// re-signed with rat set to now and exp recomputed. A threshold of zero
// therefore re-signs on every call.
//
// # Usage Example
//
//	directory := memberjwt.NewMemoryMemberDirectory()
//	hash, _ := memberjwt.HashPassword("correct horse battery staple", 0)
//	_ = directory.SaveMember(ctx, "jane@example.com", memberjwt.MemberRecord{
//	    ID:           "42",
//	    PasswordHash: hash,
//	    Attributes:   map[string]any{"Email": "jane@example.com", "FirstName": "Jane", "Surname": "Doe"},
//	})
//
//	svc, err := memberjwt.NewService(
//	    memberjwt.DefaultConfig("your-secret"),
//	    memberjwt.WithResolver(memberjwt.NewDirectoryResolver(directory, false)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	payload, err := svc.IssueFromCredentials(ctx, "jane@example.com", "correct horse battery staple", true, nil)
//	if err != nil {
//	    // errors.Is(err, memberjwt.ErrAuthenticationFailed)
//	}
//
//	renewed, err := svc.Renew(payload.Token)
//
// # Errors
//
// - ErrConfiguration: the service cannot be built, e.g. no secret
// - ErrAuthenticationFailed: a resolver rejected the credentials
// - ErrTokenInvalid: malformed, wrongly signed or expired token
//
// Check is the only verification call that never returns an error.
package memberjwt
