package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"drop-bot/internal/adapters/storage/postgres/db"
	"drop-bot/internal/core/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

func guildRow(dest ...any) error {
	if len(dest) != 12 {
		return fmt.Errorf("scan expected 12 args, got %d", len(dest))
	}
	*dest[0].(*string) = "guild123"
	*dest[1].(*string) = "Tilted"
	*dest[2].(*[]byte) = []byte(`{"0": 10, "1": 0, "3": 7}`)
	*dest[3].(*[]byte) = []byte(`{"0": 5, "1": 5}`)
	*dest[4].(*string) = "apex"
	*dest[5].(*bool) = true
	*dest[6].(*bool) = false
	*dest[7].(*int32) = 2
	*dest[8].(*int32) = 0
	*dest[9].(*int64) = 42
	return nil
}

func TestPostgresStore_GetGuild(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockDB := &MockDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				if args[0] != "guild123" {
					t.Errorf("unexpected id arg: %v", args[0])
				}
				return &MockRow{ScanFunc: guildRow}
			},
		}

		store := &PostgresStore{q: db.New(mockDB)}
		rec, err := store.GetGuild(ctx, "guild123")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		want := &domain.GuildRecord{
			ID:              "guild123",
			Name:            "Tilted",
			FortniteWeights: []int{10, 0, domain.UnsetWeight, 7},
			ApexWeights:     []int{5, 5},
			DefaultGame:     domain.GameApex,
			AudioMuted:      true,
			Schema:          domain.SchemaVersion{Major: 2},
			NumAccesses:     42,
		}
		if diff := cmp.Diff(want, rec); diff != "" {
			t.Errorf("GetGuild mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		mockDB := &MockDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &MockRow{ScanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
			},
		}

		store := &PostgresStore{q: db.New(mockDB)}
		_, err := store.GetGuild(ctx, "unknown")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Database Error", func(t *testing.T) {
		mockDB := &MockDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &MockRow{ScanFunc: func(dest ...any) error { return errors.New("connection reset") }}
			},
		}

		store := &PostgresStore{q: db.New(mockDB)}
		_, err := store.GetGuild(ctx, "guild123")
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Expected a storage error, got %v", err)
		}
	})

	t.Run("Corrupt Weights", func(t *testing.T) {
		mockDB := &MockDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &MockRow{ScanFunc: func(dest ...any) error {
					_ = guildRow(dest)
					*dest[2].(*[]byte) = []byte(`[1,2,3]`)
					return nil
				}}
			},
		}

		store := &PostgresStore{q: db.New(mockDB)}
		if _, err := store.GetGuild(ctx, "guild123"); err == nil {
			t.Fatal("Expected decode error, got nil")
		}
	})
}

func TestPostgresStore_CreateGuild(t *testing.T) {
	ctx := context.Background()
	rec := domain.GuildRecord{
		ID:              "guild123",
		Name:            "Tilted",
		FortniteWeights: []int{5, 5},
		ApexWeights:     []int{1},
		DefaultGame:     domain.GameFortnite,
		Schema:          domain.CurrentSchema,
	}

	tests := []struct {
		name        string
		tag         string
		wantCreated bool
	}{
		{"Inserted", "INSERT 0 1", true},
		{"Conflict", "INSERT 0 0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := &MockDB{
				ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
					if !strings.Contains(sql, "ON CONFLICT (id) DO NOTHING") {
						t.Errorf("expected conflict-safe insert, got %s", sql)
					}
					if len(args) != 9 {
						return pgconn.CommandTag{}, fmt.Errorf("expected 9 args, got %d", len(args))
					}
					if got := string(args[2].([]byte)); got != `{"0":5,"1":5}` {
						t.Errorf("unexpected weights encoding %s", got)
					}
					return pgconn.NewCommandTag(tt.tag), nil
				},
			}

			store := &PostgresStore{q: db.New(mockDB)}
			created, err := store.CreateGuild(ctx, rec)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if created != tt.wantCreated {
				t.Errorf("Expected created=%v, got %v", tt.wantCreated, created)
			}
		})
	}
}

func TestPostgresStore_UpdateGuild(t *testing.T) {
	ctx := context.Background()
	rec := domain.GuildRecord{ID: "guild123", FortniteWeights: []int{1}, ApexWeights: []int{1}}

	t.Run("Success", func(t *testing.T) {
		mockDB := &MockDB{
			ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				if !strings.Contains(sql, "num_accesses = num_accesses + 1") {
					t.Errorf("expected atomic access increment, got %s", sql)
				}
				return pgconn.NewCommandTag("UPDATE 1"), nil
			},
		}

		store := &PostgresStore{q: db.New(mockDB)}
		if err := store.UpdateGuild(ctx, rec); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	t.Run("Missing Row", func(t *testing.T) {
		mockDB := &MockDB{
			ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("UPDATE 0"), nil
			},
		}

		store := &PostgresStore{q: db.New(mockDB)}
		if err := store.UpdateGuild(ctx, rec); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Error", func(t *testing.T) {
		mockDB := &MockDB{
			ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.CommandTag{}, errors.New("db error")
			},
		}

		store := &PostgresStore{q: db.New(mockDB)}
		if err := store.UpdateGuild(ctx, rec); err == nil {
			t.Fatal("Expected error, got nil")
		}
	})
}

func TestPostgresStore_GetUser(t *testing.T) {
	ctx := context.Background()
	seen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		accessTime pgtype.Timestamptz
		want       time.Time
	}{
		{"With Access Time", pgtype.Timestamptz{Time: seen, Valid: true}, seen},
		{"Never Accessed", pgtype.Timestamptz{}, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := &MockDB{
				QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
					return &MockRow{ScanFunc: func(dest ...any) error {
						*dest[0].(*string) = "user1"
						*dest[1].(*string) = "alice"
						*dest[2].(*string) = "0001"
						*dest[3].(*pgtype.Timestamptz) = tt.accessTime
						*dest[4].(*int32) = 3
						*dest[5].(*bool) = true
						*dest[6].(*bool) = false
						*dest[7].(*bool) = true
						*dest[8].(*int64) = 9
						return nil
					}}
				},
			}

			store := &PostgresStore{q: db.New(mockDB)}
			rec, err := store.GetUser(ctx, "user1")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			want := &domain.UserRecord{
				ID:            "user1",
				Name:          "alice",
				Discriminator: "0001",
				AccessTime:    tt.want,
				StrikeCount:   3,
				Blocked:       true,
				Warned:        true,
				NumAccesses:   9,
			}
			if diff := cmp.Diff(want, rec); diff != "" {
				t.Errorf("GetUser mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("Not Found", func(t *testing.T) {
		mockDB := &MockDB{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &MockRow{ScanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
			},
		}

		store := &PostgresStore{q: db.New(mockDB)}
		if _, err := store.GetUser(ctx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestPostgresStore_CreateAndUpdateUser(t *testing.T) {
	ctx := context.Background()
	var captured []any

	mockDB := &MockDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			captured = args
			if strings.Contains(sql, "INSERT INTO users") {
				return pgconn.NewCommandTag("INSERT 0 1"), nil
			}
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}
	store := &PostgresStore{q: db.New(mockDB)}

	created, err := store.CreateUser(ctx, domain.UserRecord{ID: "user1", Name: "alice", IsVoter: true})
	if err != nil || !created {
		t.Fatalf("Expected create, got %v %v", created, err)
	}
	if ts := captured[3].(pgtype.Timestamptz); ts.Valid {
		t.Error("zero access time must be stored as NULL")
	}

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if err := store.UpdateUser(ctx, domain.UserRecord{ID: "user1", AccessTime: now, StrikeCount: 2}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ts := captured[3].(pgtype.Timestamptz); !ts.Valid || !ts.Time.Equal(now) {
		t.Errorf("unexpected access time arg: %+v", ts)
	}
	if captured[4].(int32) != 2 {
		t.Errorf("unexpected strike count arg: %v", captured[4])
	}
}

func TestWeightsEncoding(t *testing.T) {
	tests := []struct {
		name    string
		weights []int
	}{
		{"Empty", []int{}},
		{"Mixed", []int{0, 10, 5, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := encodeWeights(tt.weights)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := decodeWeights(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != len(tt.weights) {
				t.Fatalf("expected %v, got %v", tt.weights, got)
			}
			for i := range got {
				if got[i] != tt.weights[i] {
					t.Fatalf("expected %v, got %v", tt.weights, got)
				}
			}
		})
	}

	if _, err := decodeWeights([]byte(`{"x": 1}`)); err == nil {
		t.Error("expected error for non-numeric index")
	}
	got, err := decodeWeights([]byte(`{"0": 4, "999999999": 7}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0] != 4 {
		t.Errorf("expected out of range index to be ignored, got %v", got)
	}
	if got, err := decodeWeights(nil); err != nil || got != nil {
		t.Errorf("expected nil table for empty column, got %v %v", got, err)
	}
}
