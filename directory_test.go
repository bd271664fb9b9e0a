// File: directory_test.go

package memberjwt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type failingDirectory struct{ err error }

func (d failingDirectory) FindMember(context.Context, string) (*MemberRecord, error) {
	return nil, d.err
}

func seededMemoryDirectory(t *testing.T) *MemoryMemberDirectory {
	t.Helper()
	directory := NewMemoryMemberDirectory()
	require.NoError(t, directory.SaveMember(context.Background(), "ada@example.com", testMemberRecord(t)))
	return directory
}

func TestDirectoryResolver(t *testing.T) {
	ctx := context.Background()
	directory := seededMemoryDirectory(t)

	t.Run("Valid credentials resolve the principal", func(t *testing.T) {
		resolver := NewDirectoryResolver(directory, false)

		principal, err := resolver.ResolveByIdentifierAndPassword(ctx, "ADA@example.com", testPassword)
		require.NoError(t, err)
		assert.Equal(t, testPrincipal(), principal)

		principal, err = resolver.ResolveByBasicAuth(ctx, BasicCredentials{Username: "ada@example.com", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, "42", principal.ID)
	})

	t.Run("Generic reason by default", func(t *testing.T) {
		resolver := NewDirectoryResolver(directory, false)

		_, unknownErr := resolver.ResolveByIdentifierAndPassword(ctx, "nobody@example.com", testPassword)
		_, wrongErr := resolver.ResolveByIdentifierAndPassword(ctx, "ada@example.com", "wrong")

		require.ErrorIs(t, unknownErr, ErrAuthenticationFailed)
		require.ErrorIs(t, wrongErr, ErrAuthenticationFailed)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
		assert.Contains(t, wrongErr.Error(), "invalid credentials")
	})

	t.Run("Specific reasons when revealed", func(t *testing.T) {
		resolver := NewDirectoryResolver(directory, true)

		_, err := resolver.ResolveByIdentifierAndPassword(ctx, "nobody@example.com", testPassword)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
		assert.Contains(t, err.Error(), "member not found")

		_, err = resolver.ResolveByIdentifierAndPassword(ctx, "ada@example.com", "wrong")
		require.ErrorIs(t, err, ErrAuthenticationFailed)
		assert.Contains(t, err.Error(), "incorrect password")
	})

	t.Run("Empty basic credentials", func(t *testing.T) {
		resolver := NewDirectoryResolver(directory, false)

		_, err := resolver.ResolveByBasicAuth(ctx, BasicCredentials{})
		require.ErrorIs(t, err, ErrAuthenticationFailed)
		assert.Contains(t, err.Error(), "missing basic auth credentials")
	})

	t.Run("Lookup failures wrap the cause", func(t *testing.T) {
		backend := errors.New("connection reset")
		resolver := NewDirectoryResolver(failingDirectory{err: backend}, false)

		_, err := resolver.ResolveByIdentifierAndPassword(ctx, "ada@example.com", testPassword)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
		require.ErrorIs(t, err, backend)
	})

	t.Run("Corrupt hash is an error not a mismatch", func(t *testing.T) {
		broken := NewMemoryMemberDirectory()
		require.NoError(t, broken.SaveMember(ctx, "x", MemberRecord{ID: "1", PasswordHash: "not-bcrypt"}))
		resolver := NewDirectoryResolver(broken, true)

		_, err := resolver.ResolveByIdentifierAndPassword(ctx, "x", "pw")
		require.ErrorIs(t, err, ErrAuthenticationFailed)
		assert.Contains(t, err.Error(), "invalid password hash")
	})

	t.Run("Service issues through the directory", func(t *testing.T) {
		svc := newTestService(t, nil, nil, WithResolver(NewDirectoryResolver(directory, false)))

		payload, err := svc.IssueFromBasicAuth(ctx, BasicCredentials{Username: "ada@example.com", Password: testPassword}, true)
		require.NoError(t, err)
		assert.Equal(t, "Lovelace", payload.Member["surname"])

		_, err = svc.IssueFromBasicAuth(ctx, BasicCredentials{Username: "ada@example.com", Password: "nope"}, true)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}

func TestDirectoryResolverComparesForUnknownMembers(t *testing.T) {
	ctx := context.Background()
	directory := seededMemoryDirectory(t)
	record, err := directory.FindMember(ctx, "ada@example.com")
	require.NoError(t, err)

	var compared []string
	resolver := NewDirectoryResolver(directory, false)
	resolver.compare = func(hash, password string) (bool, error) {
		compared = append(compared, hash)
		return checkPassword(hash, password)
	}

	t.Run("Unknown identifier checks the dummy hash", func(t *testing.T) {
		compared = nil
		_, err := resolver.ResolveByIdentifierAndPassword(ctx, "nobody@example.com", testPassword)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
		assert.Equal(t, []string{dummyPasswordHash()}, compared)
	})

	t.Run("Empty identifier checks the dummy hash", func(t *testing.T) {
		compared = nil
		_, err := resolver.ResolveByIdentifierAndPassword(ctx, "", testPassword)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
		assert.Equal(t, []string{dummyPasswordHash()}, compared)
	})

	t.Run("Wrong password checks the stored hash", func(t *testing.T) {
		compared = nil
		_, err := resolver.ResolveByIdentifierAndPassword(ctx, "ada@example.com", "wrong")
		require.ErrorIs(t, err, ErrAuthenticationFailed)
		assert.Equal(t, []string{record.PasswordHash}, compared)
	})

	t.Run("Both failures read the same", func(t *testing.T) {
		_, unknownErr := resolver.ResolveByIdentifierAndPassword(ctx, "nobody@example.com", "wrong")
		_, wrongErr := resolver.ResolveByIdentifierAndPassword(ctx, "ada@example.com", "wrong")
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})
}

func TestDummyPasswordHash(t *testing.T) {
	hash := dummyPasswordHash()
	require.NotEmpty(t, hash)
	assert.Equal(t, hash, dummyPasswordHash())

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	ok, err := checkPassword(hash, testPassword)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryMemberDirectory(t *testing.T) {
	ctx := context.Background()
	directory := seededMemoryDirectory(t)

	t.Run("Find returns a copy", func(t *testing.T) {
		record, err := directory.FindMember(ctx, "ada@example.com")
		require.NoError(t, err)
		record.Attributes["FirstName"] = "Changed"

		again, err := directory.FindMember(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Ada", again.Attributes["FirstName"])
	})

	t.Run("Save validates input", func(t *testing.T) {
		require.Error(t, directory.SaveMember(ctx, "", testMemberRecord(t)))
		require.Error(t, directory.SaveMember(ctx, "x", MemberRecord{PasswordHash: "h"}))
		require.Error(t, directory.SaveMember(ctx, "x", MemberRecord{ID: "1"}))
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, directory.SaveMember(ctx, "grace@example.com", MemberRecord{ID: "2", PasswordHash: "h"}))
		require.Equal(t, 2, directory.Len())

		require.NoError(t, directory.RemoveMember(ctx, "GRACE@example.com"))
		assert.Equal(t, 1, directory.Len())

		_, err := directory.FindMember(ctx, "grace@example.com")
		require.ErrorIs(t, err, ErrMemberNotFound)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	ok, err := checkPassword(hash, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checkPassword(hash, "other")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = HashPassword("s3cret", bcrypt.MaxCost+1)
	require.Error(t, err)
}
