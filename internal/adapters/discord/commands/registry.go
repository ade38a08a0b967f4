package commands

import (
	"log/slog"

	"drop-bot/internal/core/domain"

	"github.com/bwmarrin/discordgo"
)

var adminPerms = int64(discordgo.PermissionAdministrator)

// adminCommands change guild configuration and require Administrator.
var adminCommands = map[string]bool{
	"set-weight":   true,
	"reset":        true,
	"mute":         true,
	"unmute":       true,
	"default-game": true,
}

func IsAdminCommand(name string) bool {
	return adminCommands[name]
}

func GetApplicationCommands(maxWeight int) []*discordgo.ApplicationCommand {
	minWeight := 0.0

	cmds := []*discordgo.ApplicationCommand{
		{
			Name:        "drop",
			Description: "Pick a random drop location",
			Options: []*discordgo.ApplicationCommandOption{
				gameOption(false),
			},
		},
		{
			Name:        "fortnite",
			Description: "Pick a random Fortnite drop location",
		},
		{
			Name:        "apex",
			Description: "Pick a random Apex Legends drop location",
		},
		{
			Name:        "weights",
			Description: "Show the drop chances for every location",
			Options: []*discordgo.ApplicationCommandOption{
				gameOption(false),
			},
		},
		{
			Name:        "set-weight",
			Description: "Change how likely a location is to be picked",
			Options: []*discordgo.ApplicationCommandOption{
				gameOption(true),
				stringOption("location", "Location name or number", true, true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "weight",
					Description: "New weight, 0 disables the location",
					Required:    true,
					MinValue:    &minWeight,
					MaxValue:    float64(maxWeight),
				},
			},
		},
		{
			Name:        "reset",
			Description: "Restore the default weights and settings for this server",
		},
		{
			Name:        "mute",
			Description: "Mute drop audio for this server",
		},
		{
			Name:        "unmute",
			Description: "Unmute drop audio for this server",
		},
		{
			Name:        "default-game",
			Description: "Set the game used when none is given",
			Options: []*discordgo.ApplicationCommandOption{
				gameOption(true),
			},
		},
		{
			Name:        "settings",
			Description: "Show this server's settings",
		},
		{
			Name:        "help",
			Description: "List the available commands",
		},
		{
			Name:        "info",
			Description: "Show bot statistics and cooldowns",
		},
		{
			Name:        "stop",
			Description: "Stop the current drop announcement",
		},
		{
			Name:        "block",
			Description: "Block a user from using the bot",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(),
			},
		},
		{
			Name:        "unblock",
			Description: "Unblock a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(),
			},
		},
		{
			Name:        "toggle",
			Description: "Switch the strike or vote system on or off",
			Options: []*discordgo.ApplicationCommandOption{
				choiceOption("system", "System to switch", "strikes", "votes"),
				choiceOption("state", "New state", "on", "off"),
			},
		},
	}

	for _, cmd := range cmds {
		if IsAdminCommand(cmd.Name) {
			cmd.DefaultMemberPermissions = &adminPerms
		}
	}
	return cmds
}

func stringOption(name, description string, required, autocomplete bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         name,
		Description:  description,
		Required:     required,
		Autocomplete: autocomplete,
	}
}

func gameOption(required bool) *discordgo.ApplicationCommandOption {
	opt := stringOption("game", "Game to use", required, false)
	for _, g := range domain.Games {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  g.DisplayName(),
			Value: string(g),
		})
	}
	return opt
}

func choiceOption(name, description string, values ...string) *discordgo.ApplicationCommandOption {
	opt := stringOption(name, description, true, false)
	for _, v := range values {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	return opt
}

func userOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: "Target user",
		Required:    true,
	}
}

func RegisterCommands(session CommandSession, commands []*discordgo.ApplicationCommand, userID, guildID string) []*discordgo.ApplicationCommand {
	registered := make([]*discordgo.ApplicationCommand, len(commands))

	for i, cmd := range commands {
		result, err := session.ApplicationCommandCreate(userID, guildID, cmd)
		if err != nil {
			slog.Error("Cannot create command", "name", cmd.Name, "error", err)
			continue
		}
		registered[i] = result
		slog.Info("Registered command", "name", cmd.Name, "guild", guildID)
	}

	return registered
}

func CleanupCommands(session CommandSession, commands []*discordgo.ApplicationCommand, userID, guildID string) {
	for _, cmd := range commands {
		if cmd == nil {
			continue
		}
		if err := session.ApplicationCommandDelete(userID, guildID, cmd.ID); err != nil {
			slog.Error("Cannot delete command", "name", cmd.Name, "error", err)
		}
	}
}
