package commands

import (
	"context"

	"drop-bot/internal/core/domain"

	"github.com/bwmarrin/discordgo"
)

type DiscordSession interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

type CommandSession interface {
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// Core is the command core the interactions are handed to.
type Core interface {
	Handle(ctx context.Context, cmd domain.Command) (domain.Outcome, error)
}

// GuildNamer resolves a guild's display name. It returns "" when ctx ends
// before a name is found.
type GuildNamer interface {
	GuildName(ctx context.Context, guildID string) string
}
