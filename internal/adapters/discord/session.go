package discord

import (
	"log/slog"

	"drop-bot/internal/config"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates the gateway session. Slash commands only need the guilds
// intent; message content is never read.
func NewSession(cfg *config.Config) (*discordgo.Session, error) {
	discord, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		slog.Error("Failed to create discord session", "error", err)
		return nil, err
	}

	discord.Identify.Intents = discordgo.IntentsGuilds

	return discord, nil
}
