// File: memberjwt.directory.redis.imp.go

package memberjwt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMemberKeyPrefix = "member:"

	redisFieldID           = "id"
	redisFieldPasswordHash = "password_hash"
)

// RedisMemberDirectory stores each member as a Redis hash under
// <prefix><lower-cased identifier>. The hash holds "id", "password_hash" and
// one field per profile attribute (e.g. "Email", "FirstName").
type RedisMemberDirectory struct {
	client *redis.Client
	prefix string
}

// NewRedisMemberDirectory creates a new Redis-based member directory.
// An empty prefix selects "member:".
func NewRedisMemberDirectory(client *redis.Client, prefix string) (*RedisMemberDirectory, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = defaultMemberKeyPrefix
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisMemberDirectory{
		client: client,
		prefix: prefix,
	}, nil
}

// SaveMember writes record under identifier, replacing the previous hash
func (r *RedisMemberDirectory) SaveMember(ctx context.Context, identifier string, record MemberRecord) error {
	if identifier == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if record.ID == "" {
		return fmt.Errorf("member ID cannot be empty")
	}
	if record.PasswordHash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}

	values := make(map[string]interface{}, len(record.Attributes)+2)
	for name, value := range record.Attributes {
		if name == redisFieldID || name == redisFieldPasswordHash {
			return fmt.Errorf("attribute name %q is reserved", name)
		}
		values[name] = fmt.Sprint(value)
	}
	values[redisFieldID] = record.ID
	values[redisFieldPasswordHash] = record.PasswordHash

	key := r.key(identifier)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// RemoveMember deletes the member stored under identifier
func (r *RedisMemberDirectory) RemoveMember(ctx context.Context, identifier string) error {
	if err := r.client.Del(ctx, r.key(identifier)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// FindMember loads the member stored under identifier. Attribute values are
// returned as strings.
func (r *RedisMemberDirectory) FindMember(ctx context.Context, identifier string) (*MemberRecord, error) {
	if identifier == "" {
		return nil, ErrMemberNotFound
	}

	fields, err := r.client.HGetAll(ctx, r.key(identifier)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrMemberNotFound
	}

	record := &MemberRecord{
		ID:           fields[redisFieldID],
		PasswordHash: fields[redisFieldPasswordHash],
		Attributes:   make(map[string]any, len(fields)),
	}
	for name, value := range fields {
		if name == redisFieldID || name == redisFieldPasswordHash {
			continue
		}
		record.Attributes[name] = value
	}
	if record.ID == "" || record.PasswordHash == "" {
		return nil, fmt.Errorf("member hash %s is incomplete", r.key(identifier))
	}

	return record, nil
}

func (r *RedisMemberDirectory) key(identifier string) string {
	return r.prefix + strings.ToLower(identifier)
}
