package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UserStore = (*UserStore)(nil)

const (
	// Key prefixes for Redis
	userPrefix     = "sercha:user:"
	usernamePrefix = "sercha:username:"
)

// storedUser is the persisted form of domain.User. domain.User hides its
// hash from JSON so the record carries it explicitly.
type storedUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toStored(u *domain.User) storedUser {
	return storedUser{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Email:        u.Email,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (s storedUser) toDomain() *domain.User {
	return &domain.User{
		ID:           s.ID,
		Username:     s.Username,
		PasswordHash: s.PasswordHash,
		Name:         s.Name,
		Email:        s.Email,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// errUserChanged is returned when the record's username moved between the
// read and the script run
var errUserChanged = errors.New("user changed concurrently")

// saveScript claims the username index and writes the record atomically.
// KEYS: record, new index entry, previous index entry.
// ARGV: id, username, record JSON, username the caller read before the run.
// Returns -1 when the record changed since that read, 0 when the username
// belongs to another ID, 1 on success. A rename releases the previous entry.
var saveScript = redis.NewScript(`
	local current = redis.call("hget", KEYS[1], "username") or ""
	if current ~= ARGV[4] then
		return -1
	end
	local owner = redis.call("get", KEYS[2])
	if owner and owner ~= ARGV[1] then
		return 0
	end
	if current ~= "" and current ~= ARGV[2] then
		redis.call("del", KEYS[3])
	end
	redis.call("set", KEYS[2], ARGV[1])
	redis.call("hset", KEYS[1], "username", ARGV[2], "record", ARGV[3])
	return 1
`)

// deleteScript removes the record and its index entry if the entry still
// belongs to the record.
// KEYS: record, index entry. ARGV: id, username the caller read.
var deleteScript = redis.NewScript(`
	local current = redis.call("hget", KEYS[1], "username")
	if not current then
		return 0
	end
	if current ~= ARGV[2] then
		return -1
	end
	redis.call("del", KEYS[1])
	if redis.call("get", KEYS[2]) == ARGV[1] then
		redis.call("del", KEYS[2])
	end
	return 1
`)

// UserStore implements driven.UserStore using Redis.
// Each user is a hash at sercha:user:<id> and the username index is a
// string key at sercha:username:<username> holding the ID.
//
// The scripts declare every key they touch, but a record and its index entry
// hash to different cluster slots, so the store requires a standalone Redis
// (or a single-shard deployment) behind a *redis.Client.
type UserStore struct {
	client *redis.Client
}

// NewUserStore creates a new Redis-backed UserStore
func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{client: client}
}

// Save creates or updates a user
func (s *UserStore) Save(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(toStored(user))
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	previous, err := s.client.HGet(ctx, userPrefix+user.ID, "username").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read user: %w", err)
	}
	previousKey := usernamePrefix + user.Username
	if previous != "" {
		previousKey = usernamePrefix + previous
	}

	keys := []string{userPrefix + user.ID, usernamePrefix + user.Username, previousKey}
	claimed, err := saveScript.Run(ctx, s.client, keys, user.ID, user.Username, data, previous).Int()
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	switch claimed {
	case 0:
		return domain.ErrAlreadyExists
	case -1:
		return fmt.Errorf("failed to save user %s: %w", user.ID, errUserChanged)
	}

	return nil
}

// Get retrieves a user by ID
func (s *UserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	data, err := s.client.HGet(ctx, userPrefix+id, "record").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var stored storedUser
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return stored.toDomain(), nil
}

// GetByUsername retrieves a user through the username index
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	id, err := s.client.Get(ctx, usernamePrefix+username).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete deletes a user and its username index entry
func (s *UserStore) Delete(ctx context.Context, id string) error {
	username, err := s.client.HGet(ctx, userPrefix+id, "username").Result()
	if errors.Is(err, redis.Nil) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read user: %w", err)
	}

	keys := []string{userPrefix + id, usernamePrefix + username}
	removed, err := deleteScript.Run(ctx, s.client, keys, id, username).Int()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	switch removed {
	case 0:
		return domain.ErrNotFound
	case -1:
		return fmt.Errorf("failed to delete user %s: %w", id, errUserChanged)
	}
	return nil
}

// Ping checks if the Redis backend is healthy
func (s *UserStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
