package ports

import (
	"context"

	"drop-bot/internal/core/domain"
)

// GuildRepository persists guild records. GetGuild returns domain.ErrNotFound
// when no record exists.
type GuildRepository interface {
	GetGuild(ctx context.Context, id string) (*domain.GuildRecord, error)
	// CreateGuild inserts rec unless a record with the same id exists and
	// reports whether it inserted.
	CreateGuild(ctx context.Context, rec domain.GuildRecord) (bool, error)
	// UpdateGuild writes rec and increments the access counter atomically.
	UpdateGuild(ctx context.Context, rec domain.GuildRecord) error
}

type UserRepository interface {
	GetUser(ctx context.Context, id string) (*domain.UserRecord, error)
	CreateUser(ctx context.Context, rec domain.UserRecord) (bool, error)
	UpdateUser(ctx context.Context, rec domain.UserRecord) error
}

type Repository interface {
	GuildRepository
	UserRepository
	Close()
}

type VoteChecker interface {
	HasVoted(ctx context.Context, userID string) (bool, error)
}
