// tests_helpers_test.go

package memberjwt

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Test Helper Functions

const (
	testSecret   = "test-secret-32-bytes-long-1234567890"
	testPassword = "correct horse battery staple"
)

// testEpoch is a fixed, whole-second start time for fake clocks.
var testEpoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a Clock that only moves when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// staticResolver resolves every caller to the same principal, or fails with err.
type staticResolver struct {
	principal Principal
	err       error
}

func (r staticResolver) ResolveByBasicAuth(_ context.Context, _ BasicCredentials) (Principal, error) {
	return r.principal, r.err
}

func (r staticResolver) ResolveByIdentifierAndPassword(_ context.Context, _, _ string) (Principal, error) {
	return r.principal, r.err
}

func testPrincipal() Principal {
	return Principal{
		ID: "42",
		Attributes: map[string]any{
			"Email":     "ada@example.com",
			"FirstName": "Ada",
			"Surname":   "Lovelace",
		},
	}
}

func testMemberRecord(t *testing.T) MemberRecord {
	t.Helper()

	hash, err := HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)

	p := testPrincipal()
	return MemberRecord{ID: p.ID, PasswordHash: hash, Attributes: p.Attributes}
}

func newTestService(t *testing.T, clock Clock, mutate func(*Config), opts ...Option) *Service {
	t.Helper()

	cfg := DefaultConfig(testSecret)
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := NewService(cfg, append([]Option{WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	return svc
}

func testRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func mustBuild(t testing.TB, builder *Builder) ClaimSet {
	t.Helper()
	claims, err := builder.Build()
	require.NoError(t, err)
	return claims
}

func mustClaims(t testing.TB, svc *Service) ClaimSet {
	t.Helper()
	claims, err := svc.Claims()
	require.NoError(t, err)
	return claims
}

// chdir switches the working directory for the duration of the test,
// restoring the previous one on cleanup (testing.T.Chdir needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(previous) })
}
