// File: memberjwt.directory.inmemory.imp.go

package memberjwt

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryMemberDirectory is an in-memory implementation of MemberDirectory.
// Suitable for development, testing, or single-instance deployments.
// Identifiers are matched case-insensitively.
type MemoryMemberDirectory struct {
	mu      sync.RWMutex
	members map[string]MemberRecord
}

// NewMemoryMemberDirectory creates an empty in-memory member directory
func NewMemoryMemberDirectory() *MemoryMemberDirectory {
	return &MemoryMemberDirectory{
		members: make(map[string]MemberRecord),
	}
}

// SaveMember stores record under identifier, replacing any previous entry
func (m *MemoryMemberDirectory) SaveMember(ctx context.Context, identifier string, record MemberRecord) error {
	if identifier == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if record.ID == "" {
		return fmt.Errorf("member ID cannot be empty")
	}
	if record.PasswordHash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}

	record.Attributes = cloneAttributes(record.Attributes)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.members[strings.ToLower(identifier)] = record
	return nil
}

// RemoveMember deletes the member stored under identifier; removing an
// unknown identifier is not an error
func (m *MemoryMemberDirectory) RemoveMember(ctx context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.members, strings.ToLower(identifier))
	return nil
}

// FindMember returns a copy of the member stored under identifier
func (m *MemoryMemberDirectory) FindMember(ctx context.Context, identifier string) (*MemberRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.members[strings.ToLower(identifier)]
	if !exists {
		return nil, ErrMemberNotFound
	}

	record.Attributes = cloneAttributes(record.Attributes)

	return &record, nil
}

// Len returns the number of stored members
func (m *MemoryMemberDirectory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.members)
}
