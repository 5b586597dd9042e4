package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartcommunity/portal/internal/config"
	"github.com/smartcommunity/portal/internal/domain"
	"github.com/smartcommunity/portal/internal/events"
	"github.com/smartcommunity/portal/internal/repository"
)

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30, BcryptCost: bcrypt.MinCost}}
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type stubLimiter struct {
	mu      sync.Mutex
	allowFn func(key string) bool
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	if l.allowFn == nil {
		return true, nil
	}
	return l.allowFn(key), nil
}

type fixture struct {
	users    *repository.MemoryUserRepository
	visitors *repository.MemoryVisitorRepository
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	return &fixture{
		users:    users,
		visitors: repository.NewMemoryVisitorRepository(users),
		auth:     NewAuthService(testConfig(), AuthDependencies{UserRepo: users, Logger: zap.NewNop()}),
	}
}

func (f *fixture) account(t *testing.T, name, email string, role domain.Role) *domain.User {
	t.Helper()
	user, err := f.auth.CreateAccount(context.Background(), AccountInput{
		RegisterInput: RegisterInput{
			FullName:    name,
			Email:       email,
			Phone:       "9000000000",
			Block:       "A",
			HouseNumber: "101",
			Password:    "secret123",
		},
		Role: role,
	})
	require.NoError(t, err)
	return user
}
