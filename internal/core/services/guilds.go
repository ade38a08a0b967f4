package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"drop-bot/internal/adapters/metrics"
	"drop-bot/internal/core/domain"
	"drop-bot/internal/core/ports"
	"drop-bot/internal/core/registry"
)

// Writer accepts fire-and-forget storage writes.
type Writer interface {
	Submit(key, op string, fn WriteFunc)
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type GuildService struct {
	repo    ports.GuildRepository
	catalog *domain.Catalog
	writer  Writer
	rng     domain.Rand
	guilds  *registry.Registry[*domain.GuildState]
}

// NewGuildService uses the process-wide random source when rng is nil.
func NewGuildService(repo ports.GuildRepository, catalog *domain.Catalog, writer Writer, rng domain.Rand) *GuildService {
	if rng == nil {
		rng = globalRand{}
	}
	return &GuildService{
		repo:    repo,
		catalog: catalog,
		writer:  writer,
		rng:     rng,
		guilds:  registry.New[*domain.GuildState](),
	}
}

func (s *GuildService) Catalog() *domain.Catalog {
	return s.catalog
}

func (s *GuildService) Cached() int {
	return s.guilds.Len()
}

// Loading counts ids whose first load is still in flight.
func (s *GuildService) Loading() int {
	return s.guilds.Loading()
}

// Load returns the single in-memory state for guildID, reading it from storage
// or creating it on first access.
func (s *GuildService) Load(ctx context.Context, guildID, guildName string) (*domain.GuildState, error) {
	g, err := s.guilds.Get(ctx, guildID, func(ctx context.Context) (*domain.GuildState, error) {
		return s.loadOrCreate(ctx, guildID, guildName)
	})
	if err != nil {
		return nil, err
	}

	if g.Rename(guildName) {
		s.persist(g, "rename")
	}
	metrics.CachedEntities.WithLabelValues("guild").Set(float64(s.guilds.Len()))
	return g, nil
}

func (s *GuildService) loadOrCreate(ctx context.Context, guildID, guildName string) (*domain.GuildState, error) {
	rec, err := s.repo.GetGuild(ctx, guildID)
	if err == nil {
		return domain.RestoreGuildState(*rec, s.catalog), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get guild: %w", err)
	}

	g := domain.NewGuildState(guildID, guildName, s.catalog)
	created, err := s.repo.CreateGuild(ctx, g.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("create guild: %w", err)
	}
	if !created {
		rec, err := s.repo.GetGuild(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("reload guild: %w", err)
		}
		return domain.RestoreGuildState(*rec, s.catalog), nil
	}

	slog.Info("Registered new guild", "guild_id", guildID, "guild_name", guildName)
	return g, nil
}

func (s *GuildService) SetMuted(g *domain.GuildState, muted bool) {
	if g.SetMuted(muted) {
		s.persist(g, "mute")
	}
}

func (s *GuildService) SetDefaultGame(g *domain.GuildState, game domain.Game) error {
	changed, err := g.SetDefaultGame(game)
	if err != nil {
		return err
	}
	if changed {
		s.persist(g, "default_game")
	}
	return nil
}

// SetWeight applies a weight change. A rejected change leaves the table as it
// was and issues no write.
func (s *GuildService) SetWeight(g *domain.GuildState, game domain.Game, index, weight int) domain.WeightResult {
	res := domain.WeightResult{
		Game:          game,
		LocationIndex: index,
		LocationName:  s.catalog.LocationName(game, index),
		Weight:        weight,
	}

	total, err := g.SetWeight(game, index, weight)
	res.NewTotal = total
	if err != nil {
		res.Reason = err
		return res
	}

	res.Accepted = true
	s.persist(g, "set_weight")
	return res
}

// Reset re-seeds both tables from the catalog and clears mute and default game.
func (s *GuildService) Reset(g *domain.GuildState) *domain.GuildState {
	g.Reset(s.catalog)
	s.persist(g, "reset")
	return g
}

// Draw selects a location for game. The second result is true the first time
// a guild draws after a changelog bump.
func (s *GuildService) Draw(g *domain.GuildState, game domain.Game) (domain.DropResult, bool, error) {
	index, chance, err := g.Draw(game, s.rng)
	if err != nil {
		return domain.DropResult{}, false, err
	}

	notice := g.ConsumeUpdateNotice()
	s.persist(g, "drop")
	metrics.Drops.WithLabelValues(string(game)).Inc()

	return domain.DropResult{
		Game:          game,
		LocationIndex: index,
		LocationName:  s.catalog.LocationName(game, index),
		ChancePercent: chance,
	}, notice, nil
}

func (s *GuildService) Weights(g *domain.GuildState, game domain.Game) (domain.WeightsView, error) {
	set, err := g.Weights(game)
	if err != nil {
		return domain.WeightsView{}, err
	}

	view := domain.WeightsView{
		Game:      game,
		Total:     set.Total(),
		Locations: make([]domain.LocationChance, set.Len()),
	}
	for i := range view.Locations {
		view.Locations[i] = domain.LocationChance{
			Index:         i,
			Name:          s.catalog.LocationName(game, i),
			Weight:        set.Weight(i),
			ChancePercent: set.ChancePercent(i),
		}
	}
	return view, nil
}

func (s *GuildService) persist(g *domain.GuildState, op string) {
	rec := g.Snapshot()
	s.writer.Submit("guild:"+rec.ID, op, func(ctx context.Context) error {
		return s.repo.UpdateGuild(ctx, rec)
	})
}
