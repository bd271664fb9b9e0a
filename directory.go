package memberjwt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrMemberNotFound is returned by a MemberDirectory when no member matches
// the identifier.
var ErrMemberNotFound = errors.New("member not found")

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// dummyPasswordHash is compared against when no member matches, so unknown
// identifiers cost as much bcrypt time as wrong passwords.
func dummyPasswordHash() string {
	dummyHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("memberjwt-dummy-password"), bcrypt.DefaultCost)
		if err == nil {
			dummyHash = string(hash)
		}
	})
	return dummyHash
}

// MemberRecord is a stored member as returned by a MemberDirectory.
//
// Fields:
//   - ID: Stable member identifier
//   - PasswordHash: bcrypt hash of the member's password
//   - Attributes: Profile attributes keyed by attribute name (e.g. "Email")
type MemberRecord struct {
	ID           string
	PasswordHash string
	Attributes   map[string]any
}

// MemberDirectory looks members up by their unique identifier (typically
// the email address).
type MemberDirectory interface {
	FindMember(ctx context.Context, identifier string) (*MemberRecord, error)
}

// DirectoryResolver is a CredentialResolver backed by a MemberDirectory and
// bcrypt password hashes.
type DirectoryResolver struct {
	directory    MemberDirectory
	revealReason bool
	compare      func(hash, password string) (bool, error)
}

// NewDirectoryResolver creates a resolver over directory. With revealReason
// unset every rejection reads "invalid credentials", so callers cannot tell an
// unknown identifier from a wrong password.
func NewDirectoryResolver(directory MemberDirectory, revealReason bool) *DirectoryResolver {
	return &DirectoryResolver{
		directory:    directory,
		revealReason: revealReason,
		compare:      checkPassword,
	}
}

// ResolveByBasicAuth authenticates Basic credentials, treating the username
// as the member identifier.
func (r *DirectoryResolver) ResolveByBasicAuth(ctx context.Context, credentials BasicCredentials) (Principal, error) {
	if credentials.Username == "" && credentials.Password == "" {
		return Principal{}, fmt.Errorf("%w: %s", ErrAuthenticationFailed, reasonMissingBasicAuth)
	}
	return r.ResolveByIdentifierAndPassword(ctx, credentials.Username, credentials.Password)
}

// ResolveByIdentifierAndPassword looks up identifier and checks password
// against the stored hash.
func (r *DirectoryResolver) ResolveByIdentifierAndPassword(ctx context.Context, identifier, password string) (Principal, error) {
	if identifier == "" {
		return Principal{}, r.rejectUnknown(password)
	}

	record, err := r.directory.FindMember(ctx, identifier)
	if errors.Is(err, ErrMemberNotFound) {
		return Principal{}, r.rejectUnknown(password)
	}
	if err != nil {
		return Principal{}, fmt.Errorf("%w: member lookup failed: %w", ErrAuthenticationFailed, err)
	}

	match, err := r.compare(record.PasswordHash, password)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if !match {
		return Principal{}, r.reject(reasonIncorrectPassword)
	}

	return Principal{ID: record.ID, Attributes: cloneAttributes(record.Attributes)}, nil
}

func (r *DirectoryResolver) rejectUnknown(password string) error {
	_, _ = r.compare(dummyPasswordHash(), password)
	return r.reject(reasonMemberNotFound)
}

func (r *DirectoryResolver) reject(reason string) error {
	if !r.revealReason {
		reason = reasonInvalidCredentials
	}
	return fmt.Errorf("%w: %s", ErrAuthenticationFailed, reason)
}
