package commands

import (
	"log/slog"
	"runtime/debug"
	"time"

	"drop-bot/internal/adapters/discord/formatting"
	"drop-bot/internal/adapters/metrics"

	"github.com/bwmarrin/discordgo"
)

type CommandHandler func(s DiscordSession, i *discordgo.InteractionCreate)

// Router dispatches slash commands and their autocomplete requests by name.
// Middleware added with Use wraps every route, outermost first.
type Router struct {
	routes     map[string]CommandHandler
	middleware []Middleware
}

func NewRouter() *Router {
	return &Router{
		routes: make(map[string]CommandHandler),
	}
}

func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

func (r *Router) Register(name string, handler CommandHandler) {
	r.routes[name] = handler
}

func (r *Router) Len() int {
	return len(r.routes)
}

// Handle answers a command that is registered with Discord but not here, and
// keeps a panicking handler from taking the gateway goroutine down with it.
func (r *Router) Handle(s DiscordSession, i *discordgo.InteractionCreate) {
	kind, ok := interactionKind(i.Type)
	if !ok {
		return
	}

	name := i.ApplicationCommandData().Name
	start := time.Now()
	status := "ok"
	defer func() {
		if v := recover(); v != nil {
			status = "panic"
			slog.Error("Interaction handler panicked", "name", name, "kind", kind, "panic", v, "stack", string(debug.Stack()))
		}
		metrics.DiscordInteractionDuration.WithLabelValues(name, kind, status).Observe(time.Since(start).Seconds())
	}()

	handler, ok := r.routes[name]
	if !ok {
		status = "unknown"
		slog.Warn("No handler found for command", "name", name, "kind", kind)
		if kind == "command" {
			respond(s, i, formatting.MsgUnknownCommand, true)
		}
		return
	}

	slog.Debug("Dispatching interaction", "name", name, "kind", kind, "guild_id", i.GuildID)
	for idx := len(r.middleware) - 1; idx >= 0; idx-- {
		handler = r.middleware[idx](handler)
	}
	handler(s, i)
}

func (r *Router) HandleFunc() func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		r.Handle(s, i)
	}
}

func interactionKind(t discordgo.InteractionType) (string, bool) {
	switch t {
	case discordgo.InteractionApplicationCommand:
		return "command", true
	case discordgo.InteractionApplicationCommandAutocomplete:
		return "autocomplete", true
	}
	return "", false
}
