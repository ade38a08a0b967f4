package discord

import (
	"context"
	"log/slog"

	"drop-bot/internal/adapters/metrics"

	"github.com/bwmarrin/discordgo"
)

type DiscordSession interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
}

// Adapter resolves guild names for incoming commands. Names arrive with the
// gateway's guild events and fall back to a REST lookup on a cache miss.
type Adapter struct {
	session DiscordSession
	cache   *guildCache
}

func NewAdapter(session DiscordSession) *Adapter {
	return &Adapter{
		session: session,
		cache:   newGuildCache(),
	}
}

// GuildName returns the display name of guildID, or "" when it cannot be
// resolved before ctx is done. Commands still run without a name.
func (a *Adapter) GuildName(ctx context.Context, guildID string) string {
	if guildID == "" {
		return ""
	}

	if name, ok := a.cache.Get(guildID); ok {
		metrics.DiscordGuildLookups.WithLabelValues("cache").Inc()
		return name
	}

	guild, err := a.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		slog.Warn("Failed to fetch guild", "guild_id", guildID, "error", err)
		metrics.DiscordGuildLookups.WithLabelValues("failure").Inc()
		return ""
	}

	metrics.DiscordGuildLookups.WithLabelValues("api").Inc()
	a.cache.Set(guildID, guild.Name)
	return guild.Name
}

func (a *Adapter) OnGuildCreate(_ *discordgo.Session, e *discordgo.GuildCreate) {
	if e.Guild == nil || e.Unavailable {
		return
	}
	a.cache.Set(e.ID, e.Name)
}

func (a *Adapter) OnGuildUpdate(_ *discordgo.Session, e *discordgo.GuildUpdate) {
	if e.Guild == nil {
		return
	}
	a.cache.Set(e.ID, e.Name)
}

func (a *Adapter) OnGuildDelete(_ *discordgo.Session, e *discordgo.GuildDelete) {
	if e.Guild == nil {
		return
	}
	a.cache.Invalidate(e.ID)
}
