package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-auth/internal/core/domain"
	"github.com/custodia-labs/sercha-auth/internal/core/ports/driven/mocks"
)

// discardLogger keeps test output quiet
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a clock frozen at t
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// seedUser stores a user whose mock hash is the plaintext password
func seedUser(t *testing.T, store *mocks.MockUserStore, id, username, password string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:           id,
		Username:     username,
		Name:         "Test User",
		Email:        username + "@example.com",
		PasswordHash: password, // Mock hasher uses plain text comparison
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := store.Save(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// fakeSource is an in-memory domain.TokenSource
type fakeSource struct {
	header  string
	cookies map[string]string
}

func (f fakeSource) AuthorizationHeader() string { return f.header }

func (f fakeSource) Cookie(name string) string { return f.cookies[name] }
