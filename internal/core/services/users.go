package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"drop-bot/internal/adapters/metrics"
	"drop-bot/internal/core/domain"
	"drop-bot/internal/core/ports"
	"drop-bot/internal/core/registry"
)

type UserService struct {
	repo   ports.UserRepository
	writer Writer
	users  *registry.Registry[*domain.UserState]
}

func NewUserService(repo ports.UserRepository, writer Writer) *UserService {
	return &UserService{
		repo:   repo,
		writer: writer,
		users:  registry.New[*domain.UserState](),
	}
}

func (s *UserService) Cached() int {
	return s.users.Len()
}

// Loading counts ids whose first load is still in flight.
func (s *UserService) Loading() int {
	return s.users.Loading()
}

// Load returns the single in-memory state for userID, reading it from storage
// or creating it on first access.
func (s *UserService) Load(ctx context.Context, userID, name, discriminator string) (*domain.UserState, error) {
	u, err := s.users.Get(ctx, userID, func(ctx context.Context) (*domain.UserState, error) {
		return s.loadOrCreate(ctx, userID, name, discriminator)
	})
	if err != nil {
		return nil, err
	}

	if u.Rename(name, discriminator) {
		s.Save(u, "rename")
	}
	metrics.CachedEntities.WithLabelValues("user").Set(float64(s.users.Len()))
	return u, nil
}

func (s *UserService) loadOrCreate(ctx context.Context, userID, name, discriminator string) (*domain.UserState, error) {
	rec, err := s.repo.GetUser(ctx, userID)
	if err == nil {
		return domain.RestoreUserState(*rec), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u := domain.NewUserState(userID, name, discriminator)
	created, err := s.repo.CreateUser(ctx, u.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if !created {
		rec, err := s.repo.GetUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("reload user: %w", err)
		}
		return domain.RestoreUserState(*rec), nil
	}

	slog.Debug("Registered new user", "user_id", userID)
	return u, nil
}

// RecordSuccessfulCommand stamps now, clears strikes, block and warning, and
// persists the access.
func (s *UserService) RecordSuccessfulCommand(u *domain.UserState, now time.Time) {
	op := "access"
	if u.RecordSuccessfulCommand(now) {
		op = "clear_strikes"
	}
	s.Save(u, op)
}

// RecordStrike increments the user's strikes and blocks them once maxStrikes
// is reached. Only the block transition is persisted here.
func (s *UserService) RecordStrike(u *domain.UserState, maxStrikes int) (int, bool) {
	count, blocked := u.RecordStrike(maxStrikes, true)
	metrics.StrikesRecorded.Inc()
	if blocked {
		slog.Warn("User blocked by strike system", "user_id", u.ID(), "strikes", count)
		metrics.UsersBlocked.Inc()
		s.Save(u, "block")
	}
	return count, blocked
}

func (s *UserService) SetVoter(u *domain.UserState, voter bool) {
	if u.SetVoter(voter) {
		s.Save(u, "voter")
	}
}

// SetBlocked blocks or unblocks userID, loading the user if needed.
func (s *UserService) SetBlocked(ctx context.Context, userID string, blocked bool) (bool, error) {
	u, err := s.users.Get(ctx, userID, func(ctx context.Context) (*domain.UserState, error) {
		return s.loadOrCreate(ctx, userID, "", "")
	})
	if err != nil {
		return false, err
	}
	if !u.SetBlocked(blocked) {
		return false, nil
	}
	s.Save(u, "block")
	return true, nil
}

func (s *UserService) Save(u *domain.UserState, op string) {
	rec := u.Snapshot()
	s.writer.Submit("user:"+rec.ID, op, func(ctx context.Context) error {
		return s.repo.UpdateUser(ctx, rec)
	})
}
