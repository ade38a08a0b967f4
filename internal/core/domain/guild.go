package domain

import (
	"fmt"
	"sync"
)

type SchemaVersion struct {
	Major int
	Minor int
}

// CurrentSchema is bumped whenever guilds should see the changelog notice once.
var CurrentSchema = SchemaVersion{Major: 2, Minor: 1}

func (v SchemaVersion) Less(o SchemaVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

func (v SchemaVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GuildRecord is the persisted form of a guild.
type GuildRecord struct {
	ID              string
	Name            string
	FortniteWeights []int
	ApexWeights     []int
	DefaultGame     Game
	AudioMuted      bool
	UpdateNotice    bool
	Schema          SchemaVersion
	NumAccesses     int64
}

// GuildState is the in-memory owner of one guild's settings. It is safe for
// concurrent use.
type GuildState struct {
	mu sync.Mutex

	id                  string
	name                string
	defaultGame         Game
	audioMuted          bool
	fortnite            *WeightedLocationSet
	apex                *WeightedLocationSet
	schema              SchemaVersion
	pendingUpdateNotice bool
}

func NewGuildState(id, name string, catalog *Catalog) *GuildState {
	return &GuildState{
		id:          id,
		name:        name,
		defaultGame: GameFortnite,
		fortnite:    NewWeightedLocationSet(catalog.DefaultWeights(GameFortnite), catalog.MaxWeight),
		apex:        NewWeightedLocationSet(catalog.DefaultWeights(GameApex), catalog.MaxWeight),
		schema:      CurrentSchema,
	}
}

func RestoreGuildState(rec GuildRecord, catalog *Catalog) *GuildState {
	game := rec.DefaultGame
	if !game.Valid() {
		game = GameFortnite
	}
	return &GuildState{
		id:                  rec.ID,
		name:                rec.Name,
		defaultGame:         game,
		audioMuted:          rec.AudioMuted,
		fortnite:            RestoreWeightedLocationSet(catalog.DefaultWeights(GameFortnite), rec.FortniteWeights, catalog.MaxWeight),
		apex:                RestoreWeightedLocationSet(catalog.DefaultWeights(GameApex), rec.ApexWeights, catalog.MaxWeight),
		schema:              rec.Schema,
		pendingUpdateNotice: rec.UpdateNotice || rec.Schema.Less(CurrentSchema),
	}
}

func (g *GuildState) ID() string {
	return g.id
}

func (g *GuildState) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.name
}

// Rename updates the cached guild name and reports whether it changed.
func (g *GuildState) Rename(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if name == "" || name == g.name {
		return false
	}
	g.name = name
	return true
}

func (g *GuildState) DefaultGame() Game {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.defaultGame
}

func (g *GuildState) AudioMuted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.audioMuted
}

func (g *GuildState) PendingUpdateNotice() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pendingUpdateNotice
}

// SetMuted reports whether the value changed.
func (g *GuildState) SetMuted(muted bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.audioMuted == muted {
		return false
	}
	g.audioMuted = muted
	return true
}

// SetDefaultGame reports whether the value changed.
func (g *GuildState) SetDefaultGame(game Game) (bool, error) {
	if !game.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.defaultGame == game {
		return false, nil
	}
	g.defaultGame = game
	return true, nil
}

func (g *GuildState) SetWeight(game Game, index, weight int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, err := g.set(game)
	if err != nil {
		return 0, err
	}
	return set.SetWeight(index, weight)
}

// Draw returns the drawn index and its chance at the time of the draw.
func (g *GuildState) Draw(game Game, rng Rand) (int, float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, err := g.set(game)
	if err != nil {
		return 0, 0, err
	}
	index, err := set.Draw(rng)
	if err != nil {
		return 0, 0, err
	}
	return index, set.ChancePercent(index), nil
}

// Weights returns a detached copy of the game's table.
func (g *GuildState) Weights(game Game) (*WeightedLocationSet, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, err := g.set(game)
	if err != nil {
		return nil, err
	}
	return set.clone(), nil
}

// Reset re-seeds both tables from the catalog and clears the overrides.
func (g *GuildState) Reset(catalog *Catalog) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fortnite.ResetToDefaults(catalog.DefaultWeights(GameFortnite))
	g.apex.ResetToDefaults(catalog.DefaultWeights(GameApex))
	g.audioMuted = false
	g.defaultGame = GameFortnite
}

// ConsumeUpdateNotice returns true exactly once per pending notice and stamps
// the guild with the current schema version.
func (g *GuildState) ConsumeUpdateNotice() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.pendingUpdateNotice {
		return false
	}
	g.pendingUpdateNotice = false
	g.schema = CurrentSchema
	return true
}

func (g *GuildState) Snapshot() GuildRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GuildRecord{
		ID:              g.id,
		Name:            g.name,
		FortniteWeights: g.fortnite.Weights(),
		ApexWeights:     g.apex.Weights(),
		DefaultGame:     g.defaultGame,
		AudioMuted:      g.audioMuted,
		UpdateNotice:    g.pendingUpdateNotice,
		Schema:          g.schema,
	}
}

func (g *GuildState) set(game Game) (*WeightedLocationSet, error) {
	switch game {
	case GameFortnite:
		return g.fortnite, nil
	case GameApex:
		return g.apex, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGame, game)
}
