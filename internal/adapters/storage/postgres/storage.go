package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"drop-bot/internal/adapters/storage/postgres/db"
	"drop-bot/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
	q    *db.Queries
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{
		pool: pool,
		q:    db.New(pool),
	}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// -- Guild Methods --

func (s *PostgresStore) GetGuild(ctx context.Context, id string) (*domain.GuildRecord, error) {
	row, err := s.q.GetGuild(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get guild %s: %w", id, err)
	}

	fortnite, err := decodeWeights(row.FortniteWeights)
	if err != nil {
		return nil, fmt.Errorf("guild %s fortnite weights: %w", id, err)
	}
	apex, err := decodeWeights(row.ApexWeights)
	if err != nil {
		return nil, fmt.Errorf("guild %s apex weights: %w", id, err)
	}

	return &domain.GuildRecord{
		ID:              row.ID,
		Name:            row.Name,
		FortniteWeights: fortnite,
		ApexWeights:     apex,
		DefaultGame:     domain.Game(row.DefaultGame),
		AudioMuted:      row.AudioMuted,
		UpdateNotice:    row.UpdateNotice,
		Schema:          domain.SchemaVersion{Major: int(row.SchemaMajor), Minor: int(row.SchemaMinor)},
		NumAccesses:     row.NumAccesses,
	}, nil
}

// CreateGuild inserts rec unless a row with the same id exists, reporting
// whether this call inserted it.
func (s *PostgresStore) CreateGuild(ctx context.Context, rec domain.GuildRecord) (bool, error) {
	fortnite, apex, err := encodeGuildWeights(rec)
	if err != nil {
		return false, err
	}

	n, err := s.q.CreateGuild(ctx, db.CreateGuildParams{
		ID:              rec.ID,
		Name:            rec.Name,
		FortniteWeights: fortnite,
		ApexWeights:     apex,
		DefaultGame:     string(rec.DefaultGame),
		AudioMuted:      rec.AudioMuted,
		UpdateNotice:    rec.UpdateNotice,
		SchemaMajor:     int32(rec.Schema.Major),
		SchemaMinor:     int32(rec.Schema.Minor),
	})
	if err != nil {
		return false, fmt.Errorf("create guild %s: %w", rec.ID, err)
	}
	return n == 1, nil
}

// UpdateGuild overwrites the stored guild and bumps its access counter.
func (s *PostgresStore) UpdateGuild(ctx context.Context, rec domain.GuildRecord) error {
	fortnite, apex, err := encodeGuildWeights(rec)
	if err != nil {
		return err
	}

	n, err := s.q.UpdateGuild(ctx, db.UpdateGuildParams{
		ID:              rec.ID,
		Name:            rec.Name,
		FortniteWeights: fortnite,
		ApexWeights:     apex,
		DefaultGame:     string(rec.DefaultGame),
		AudioMuted:      rec.AudioMuted,
		UpdateNotice:    rec.UpdateNotice,
		SchemaMajor:     int32(rec.Schema.Major),
		SchemaMinor:     int32(rec.Schema.Minor),
	})
	if err != nil {
		return fmt.Errorf("update guild %s: %w", rec.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update guild %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

// -- User Methods --

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*domain.UserRecord, error) {
	row, err := s.q.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	rec := &domain.UserRecord{
		ID:            row.ID,
		Name:          row.Name,
		Discriminator: row.Discriminator,
		StrikeCount:   int(row.StrikeCount),
		Blocked:       row.Blocked,
		IsVoter:       row.IsVoter,
		Warned:        row.Warned,
		NumAccesses:   row.NumAccesses,
	}
	if row.AccessTime.Valid {
		rec.AccessTime = row.AccessTime.Time
	}
	return rec, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, rec domain.UserRecord) (bool, error) {
	n, err := s.q.CreateUser(ctx, db.CreateUserParams{
		ID:            rec.ID,
		Name:          rec.Name,
		Discriminator: rec.Discriminator,
		AccessTime:    timestamptz(rec.AccessTime),
		StrikeCount:   int32(rec.StrikeCount),
		Blocked:       rec.Blocked,
		IsVoter:       rec.IsVoter,
		Warned:        rec.Warned,
	})
	if err != nil {
		return false, fmt.Errorf("create user %s: %w", rec.ID, err)
	}
	return n == 1, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, rec domain.UserRecord) error {
	n, err := s.q.UpdateUser(ctx, db.UpdateUserParams{
		ID:            rec.ID,
		Name:          rec.Name,
		Discriminator: rec.Discriminator,
		AccessTime:    timestamptz(rec.AccessTime),
		StrikeCount:   int32(rec.StrikeCount),
		Blocked:       rec.Blocked,
		IsVoter:       rec.IsVoter,
		Warned:        rec.Warned,
	})
	if err != nil {
		return fmt.Errorf("update user %s: %w", rec.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update user %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

// -- Encoding helpers --

func timestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func encodeGuildWeights(rec domain.GuildRecord) ([]byte, []byte, error) {
	fortnite, err := encodeWeights(rec.FortniteWeights)
	if err != nil {
		return nil, nil, fmt.Errorf("guild %s fortnite weights: %w", rec.ID, err)
	}
	apex, err := encodeWeights(rec.ApexWeights)
	if err != nil {
		return nil, nil, fmt.Errorf("guild %s apex weights: %w", rec.ID, err)
	}
	return fortnite, apex, nil
}

// encodeWeights stores a table as a JSON object keyed by location index, so
// the catalog can grow without rewriting existing rows.
func encodeWeights(weights []int) ([]byte, error) {
	m := make(map[string]int, len(weights))
	for i, w := range weights {
		m[strconv.Itoa(i)] = w
	}
	return json.Marshal(m)
}

// No catalog comes close to this many locations per game. Larger indices in a
// stored table are ignored.
const maxStoredLocations = 1024

// decodeWeights is the inverse of encodeWeights. Indices missing from the
// object come back as domain.UnsetWeight.
func decodeWeights(data []byte) ([]int, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}

	size := 0
	byIndex := make(map[int]int, len(m))
	for k, w := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("decode weights: invalid index %q", k)
		}
		if i >= maxStoredLocations {
			slog.Warn("Ignoring out of range stored weight", "index", i)
			continue
		}
		byIndex[i] = w
		size = max(size, i+1)
	}

	weights := make([]int, size)
	for i := range weights {
		w, ok := byIndex[i]
		if !ok {
			w = domain.UnsetWeight
		}
		weights[i] = w
	}
	return weights, nil
}
