package commands

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestRespond(t *testing.T) {
	t.Run("ephemeral message", func(t *testing.T) {
		session := &mockDiscordSession{}
		interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}

		respond(session, interaction, "test message", true)

		if session.lastInteractionResponse == nil {
			t.Fatal("expected response to be sent")
		}
		if session.lastInteractionResponse.Data.Content != "test message" {
			t.Errorf("expected 'test message', got '%s'", session.lastInteractionResponse.Data.Content)
		}
		if session.lastInteractionResponse.Data.Flags != discordgo.MessageFlagsEphemeral {
			t.Error("expected ephemeral flag")
		}
	})

	t.Run("public message", func(t *testing.T) {
		session := &mockDiscordSession{}
		interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}

		respond(session, interaction, "public message", false)

		if session.lastInteractionResponse.Data.Flags != 0 {
			t.Error("expected no flags for public message")
		}
	})

	t.Run("session error does not panic", func(t *testing.T) {
		session := &mockDiscordSession{
			interactionRespondFunc: func(i *discordgo.Interaction, r *discordgo.InteractionResponse) error {
				return errors.New("unknown interaction")
			},
		}
		interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{ID: "1"}}

		respond(session, interaction, "late", true)
	})
}

func TestRespondAutocomplete(t *testing.T) {
	t.Run("returns choices", func(t *testing.T) {
		session := &mockDiscordSession{}
		interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}

		choices := []*discordgo.ApplicationCommandOptionChoice{
			{Name: "0. Pleasant Park", Value: "Pleasant Park"},
			{Name: "1. Retail Row", Value: "Retail Row"},
		}

		if err := respondAutocomplete(session, interaction, choices); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.lastInteractionResponse.Type != discordgo.InteractionApplicationCommandAutocompleteResult {
			t.Error("expected autocomplete response type")
		}
		if len(session.lastInteractionResponse.Data.Choices) != 2 {
			t.Errorf("expected 2 choices, got %d", len(session.lastInteractionResponse.Data.Choices))
		}
	})

	t.Run("returns error from session", func(t *testing.T) {
		session := &mockDiscordSession{
			interactionRespondFunc: func(i *discordgo.Interaction, r *discordgo.InteractionResponse) error {
				return errors.New("discord error")
			},
		}
		interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}

		err := respondAutocomplete(session, interaction, nil)

		if err == nil || err.Error() != "discord error" {
			t.Errorf("expected 'discord error', got %v", err)
		}
	})
}

func TestGetStringOption(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "game", Type: discordgo.ApplicationCommandOptionString, Value: "apex"},
		{Name: "weight", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(7)},
	}

	tests := []struct {
		name string
		opts []*discordgo.ApplicationCommandInteractionDataOption
		key  string
		want string
	}{
		{"string option", opts, "game", "apex"},
		{"integer option", opts, "weight", "7"},
		{"missing option", opts, "missing", ""},
		{"nil slice", nil, "game", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getStringOption(tt.opts, tt.key); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGetFocusedOption(t *testing.T) {
	t.Run("finds focused option", func(t *testing.T) {
		opts := []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "game", Type: discordgo.ApplicationCommandOptionString, Value: "fortnite"},
			{Name: "location", Type: discordgo.ApplicationCommandOptionString, Value: "ret", Focused: true},
		}

		if result := getFocusedOption(opts); result != "ret" {
			t.Errorf("expected 'ret', got '%s'", result)
		}
	})

	t.Run("returns empty when no focused option", func(t *testing.T) {
		opts := []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "game", Type: discordgo.ApplicationCommandOptionString, Value: "fortnite"},
		}

		if result := getFocusedOption(opts); result != "" {
			t.Errorf("expected empty, got '%s'", result)
		}
	})

	t.Run("handles nil slice", func(t *testing.T) {
		if result := getFocusedOption(nil); result != "" {
			t.Errorf("expected empty, got '%s'", result)
		}
	})
}

func TestOptionString(t *testing.T) {
	tests := []struct {
		name string
		opt  *discordgo.ApplicationCommandInteractionDataOption
		want string
	}{
		{"nil value", &discordgo.ApplicationCommandInteractionDataOption{}, ""},
		{"string", &discordgo.ApplicationCommandInteractionDataOption{Type: discordgo.ApplicationCommandOptionString, Value: "Retail Row"}, "Retail Row"},
		{"integer", &discordgo.ApplicationCommandInteractionDataOption{Type: discordgo.ApplicationCommandOptionInteger, Value: float64(10)}, "10"},
		{"number", &discordgo.ApplicationCommandInteractionDataOption{Type: discordgo.ApplicationCommandOptionNumber, Value: 2.5}, "2.5"},
		{"boolean", &discordgo.ApplicationCommandInteractionDataOption{Type: discordgo.ApplicationCommandOptionBoolean, Value: true}, "true"},
		{"user id", &discordgo.ApplicationCommandInteractionDataOption{Type: discordgo.ApplicationCommandOptionUser, Value: "123456789012345678"}, "123456789012345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := optionString(tt.opt); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCaller(t *testing.T) {
	member := &discordgo.User{ID: "1", Username: "member"}
	direct := &discordgo.User{ID: "2", Username: "direct"}

	tests := []struct {
		name        string
		interaction *discordgo.Interaction
		want        string
	}{
		{"guild member", &discordgo.Interaction{Member: &discordgo.Member{User: member}, User: direct}, "1"},
		{"direct message", &discordgo.Interaction{User: direct}, "2"},
		{"nobody", &discordgo.Interaction{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := caller(&discordgo.InteractionCreate{Interaction: tt.interaction})
			if got.ID != tt.want {
				t.Errorf("expected caller %q, got %q", tt.want, got.ID)
			}
		})
	}
}
