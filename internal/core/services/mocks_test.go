package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"drop-bot/internal/core/domain"
)

type mockRepository struct {
	mu sync.Mutex

	getGuildFunc    func(ctx context.Context, id string) (*domain.GuildRecord, error)
	createGuildFunc func(ctx context.Context, rec domain.GuildRecord) (bool, error)
	updateGuildFunc func(ctx context.Context, rec domain.GuildRecord) error
	getUserFunc     func(ctx context.Context, id string) (*domain.UserRecord, error)
	createUserFunc  func(ctx context.Context, rec domain.UserRecord) (bool, error)
	updateUserFunc  func(ctx context.Context, rec domain.UserRecord) error

	guildCreates []domain.GuildRecord
	guildUpdates []domain.GuildRecord
	userCreates  []domain.UserRecord
	userUpdates  []domain.UserRecord
}

func (m *mockRepository) GetGuild(ctx context.Context, id string) (*domain.GuildRecord, error) {
	if m.getGuildFunc != nil {
		return m.getGuildFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRepository) CreateGuild(ctx context.Context, rec domain.GuildRecord) (bool, error) {
	m.mu.Lock()
	m.guildCreates = append(m.guildCreates, rec)
	m.mu.Unlock()
	if m.createGuildFunc != nil {
		return m.createGuildFunc(ctx, rec)
	}
	return true, nil
}

func (m *mockRepository) UpdateGuild(ctx context.Context, rec domain.GuildRecord) error {
	m.mu.Lock()
	m.guildUpdates = append(m.guildUpdates, rec)
	m.mu.Unlock()
	if m.updateGuildFunc != nil {
		return m.updateGuildFunc(ctx, rec)
	}
	return nil
}

func (m *mockRepository) GetUser(ctx context.Context, id string) (*domain.UserRecord, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRepository) CreateUser(ctx context.Context, rec domain.UserRecord) (bool, error) {
	m.mu.Lock()
	m.userCreates = append(m.userCreates, rec)
	m.mu.Unlock()
	if m.createUserFunc != nil {
		return m.createUserFunc(ctx, rec)
	}
	return true, nil
}

func (m *mockRepository) UpdateUser(ctx context.Context, rec domain.UserRecord) error {
	m.mu.Lock()
	m.userUpdates = append(m.userUpdates, rec)
	m.mu.Unlock()
	if m.updateUserFunc != nil {
		return m.updateUserFunc(ctx, rec)
	}
	return nil
}

func (m *mockRepository) Close() {}

func (m *mockRepository) guildUpdateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.guildUpdates)
}

func (m *mockRepository) lastGuildUpdate() domain.GuildRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guildUpdates[len(m.guildUpdates)-1]
}

func (m *mockRepository) lastUserUpdate() domain.UserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userUpdates[len(m.userUpdates)-1]
}

type mockVoteChecker struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	voted       bool
	err         error
	delay       time.Duration
}

func (m *mockVoteChecker) HasVoted(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	m.calls++
	m.inFlight++
	m.maxInFlight = max(m.maxInFlight, m.inFlight)
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return m.voted, m.err
}

func (m *mockVoteChecker) peakConcurrency() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

func (m *mockVoteChecker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// syncWriter runs writes inline so tests can assert on them immediately.
type syncWriter struct{}

func (syncWriter) Submit(key, op string, fn WriteFunc) {
	_ = fn(context.Background())
}

type fixedRand struct {
	value int
}

func (f fixedRand) IntN(n int) int {
	return f.value % n
}

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	c, err := domain.ParseCatalog([]byte(`
max_weight: 10
games:
  fortnite:
    - { name: Pleasant Park, weight: 5 }
    - { name: Retail Row, weight: 5 }
    - { name: Salty Springs, weight: 5 }
  apex:
    - { name: Airbase, weight: 5 }
    - { name: Bunker, weight: 5 }
`))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return c
}

func testPolicy() Policy {
	return Policy{
		VoteTimeoutSec:   1,
		NoVoteTimeoutSec: 60,
		MaxStrikes:       3,
		StrikesEnabled:   true,
		VotesEnabled:     true,
		DeveloperID:      "dev",
	}
}
