package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"drop-bot/internal/adapters/discord/formatting"
	"drop-bot/internal/core/domain"

	"github.com/bwmarrin/discordgo"
)

// Interactions must be answered within three seconds.
const interactionDeadline = 2500 * time.Millisecond

// A guild name lookup may use part of the interaction deadline, the core
// gets the rest.
const guildLookupBudget = time.Second

const maxChoices = 25

// BotHandler turns slash command interactions into core commands and renders
// the outcome back to the channel.
type BotHandler struct {
	Core    Core
	Guilds  GuildNamer
	Catalog *domain.Catalog

	// options holds the declared option order per command, which is the
	// argument order the core expects.
	options map[string][]string
}

func NewBotHandler(core Core, guilds GuildNamer, catalog *domain.Catalog, defs []*discordgo.ApplicationCommand) *BotHandler {
	h := &BotHandler{
		Core:    core,
		Guilds:  guilds,
		Catalog: catalog,
		options: make(map[string][]string, len(defs)),
	}
	for _, def := range defs {
		names := make([]string, 0, len(def.Options))
		for _, opt := range def.Options {
			names = append(names, opt.Name)
		}
		h.options[def.Name] = names
	}
	return h
}

// Routes registers every declared command on r, guarding the admin ones.
// Commands only run inside a server.
func (h *BotHandler) Routes(r *Router) {
	r.Use(WithGuild)
	for name := range h.options {
		handler := h.Execute
		if IsAdminCommand(name) {
			handler = WithAdmin(handler)
		}
		r.Register(name, handler)
	}
}

func ReadyHandler(session *discordgo.Session, ready *discordgo.Ready) {
	slog.Info("Drop bot is online!", "user", ready.User.Username, "guilds", len(ready.Guilds))
}

func (h *BotHandler) Execute(s DiscordSession, i *discordgo.InteractionCreate) {
	if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
		h.handleLocationAutocomplete(s, i)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionDeadline)
	defer cancel()

	cmd := h.toCommand(ctx, i)

	out, err := h.Core.Handle(ctx, cmd)
	if err != nil {
		if isUserError(err) {
			slog.Debug("Command rejected", "command", cmd.Name, "guild_id", cmd.GuildID, "error", err)
		} else {
			slog.Error("Command failed", "command", cmd.Name, "guild_id", cmd.GuildID, "error", err)
		}
		respond(s, i, formatting.MsgError(err), true)
		return
	}

	msg, ephemeral := formatting.Render(out)
	respond(s, i, msg, ephemeral)
}

func (h *BotHandler) toCommand(ctx context.Context, i *discordgo.InteractionCreate) domain.Command {
	data := i.ApplicationCommandData()
	user := caller(i)

	cmd := domain.Command{
		Name:                data.Name,
		Args:                h.args(data),
		CallerID:            user.ID,
		CallerName:          user.Username,
		CallerDiscriminator: user.Discriminator,
		GuildID:             i.GuildID,
		ChannelID:           i.ChannelID,
	}
	if h.Guilds != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, guildLookupBudget)
		cmd.GuildName = h.Guilds.GuildName(lookupCtx, i.GuildID)
		cancel()
	}
	// The interaction id carries the moment the user issued the command.
	if ts, err := discordgo.SnowflakeTimestamp(i.ID); err == nil {
		cmd.Timestamp = ts
	}
	return cmd
}

func (h *BotHandler) args(data discordgo.ApplicationCommandInteractionData) []string {
	names := h.options[data.Name]
	args := make([]string, len(names))
	for idx, name := range names {
		args[idx] = getStringOption(data.Options, name)
	}
	for len(args) > 0 && args[len(args)-1] == "" {
		args = args[:len(args)-1]
	}
	return args
}

func (h *BotHandler) handleLocationAutocomplete(s DiscordSession, i *discordgo.InteractionCreate) {
	opts := i.ApplicationCommandData().Options
	query := getFocusedOption(opts)

	game, err := domain.ParseGame(getStringOption(opts, "game"))
	if err != nil {
		game = domain.GameFortnite
	}

	choices := buildLocationChoices(h.Catalog, game, query)
	if err := respondAutocomplete(s, i, choices); err != nil {
		slog.Error("Failed to send autocomplete response", "error", err)
	}
}

func buildLocationChoices(catalog *domain.Catalog, game domain.Game, query string) []*discordgo.ApplicationCommandOptionChoice {
	if catalog == nil {
		return nil
	}

	query = strings.ToLower(query)
	var choices []*discordgo.ApplicationCommandOptionChoice
	for idx, loc := range catalog.Locations(game) {
		if strings.Contains(strings.ToLower(loc.Name), query) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  fmt.Sprintf("%d. %s", idx, loc.Name),
				Value: loc.Name,
			})
		}
		if len(choices) >= maxChoices {
			break
		}
	}
	return choices
}

// isUserError reports whether err was caused by the caller's input rather
// than by the bot.
func isUserError(err error) bool {
	for _, target := range []error{
		domain.ErrUnknownCommand,
		domain.ErrNotPermitted,
		domain.ErrUnknownGame,
		domain.ErrUnknownLocation,
		domain.ErrOutOfRange,
		domain.ErrInvalidArgument,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
