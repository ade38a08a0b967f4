package commands

import (
	"drop-bot/internal/adapters/discord/formatting"

	"github.com/bwmarrin/discordgo"
)

type Middleware func(CommandHandler) CommandHandler

func WithAdmin(next CommandHandler) CommandHandler {
	return func(s DiscordSession, i *discordgo.InteractionCreate) {
		if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
			respond(s, i, formatting.MsgAdminRequired, true)
			return
		}
		next(s, i)
	}
}

// WithGuild answers slash commands used outside a server. Autocomplete passes
// through so option hints still work.
func WithGuild(next CommandHandler) CommandHandler {
	return func(s DiscordSession, i *discordgo.InteractionCreate) {
		if i.Type == discordgo.InteractionApplicationCommand && i.GuildID == "" {
			respond(s, i, formatting.MsgGuildOnly, true)
			return
		}
		next(s, i)
	}
}
