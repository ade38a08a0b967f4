package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"drop-bot/internal/adapters/metrics"
	"drop-bot/internal/core/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Request is what a command handler sees once guild and user are resolved and
// the rate limiter has let the attempt through.
type Request struct {
	Command domain.Command
	Guild   *domain.GuildState
	User    *domain.UserState
	Log     *slog.Logger
}

type Handler func(ctx context.Context, req *Request) (domain.Outcome, error)

type route struct {
	handler Handler
	usage   string
}

// CommandRouter is the single entry point from the chat transport into the
// core: resolve state, gate, dispatch.
type CommandRouter struct {
	guilds  *GuildService
	users   *UserService
	limiter *RateLimiter
	routes  map[string]route
	now     func() time.Time
}

func NewCommandRouter(guilds *GuildService, users *UserService, limiter *RateLimiter) *CommandRouter {
	r := &CommandRouter{
		guilds:  guilds,
		users:   users,
		limiter: limiter,
		routes:  make(map[string]route),
		now:     time.Now,
	}
	r.registerBuiltins()
	return r
}

func (r *CommandRouter) Register(name, usage string, h Handler) {
	r.routes[name] = route{handler: h, usage: usage}
}

func (r *CommandRouter) Handle(ctx context.Context, cmd domain.Command) (domain.Outcome, error) {
	cmd.Name = strings.ToLower(strings.TrimSpace(cmd.Name))
	rt, ok := r.routes[cmd.Name]
	if !ok {
		return domain.Outcome{}, fmt.Errorf("%w: %q", domain.ErrUnknownCommand, cmd.Name)
	}
	if cmd.GuildID == "" {
		return domain.Outcome{}, fmt.Errorf("%w: command must be used in a server", domain.ErrInvalidArgument)
	}
	if cmd.Timestamp.IsZero() {
		cmd.Timestamp = r.now()
	}

	log := slog.With(
		"request_id", uuid.NewString(),
		"command", cmd.Name,
		"guild_id", cmd.GuildID,
		"user_id", cmd.CallerID,
	)

	var (
		guild *domain.GuildState
		user  *domain.UserState
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		guild, err = r.guilds.Load(egCtx, cmd.GuildID, cmd.GuildName)
		return err
	})
	eg.Go(func() error {
		var err error
		user, err = r.users.Load(egCtx, cmd.CallerID, cmd.CallerName, cmd.CallerDiscriminator)
		return err
	})
	if err := eg.Wait(); err != nil {
		log.Error("Failed to resolve guild or user state", "error", err)
		metrics.CommandsHandled.WithLabelValues(cmd.Name, "state_error").Inc()
		return domain.Outcome{}, fmt.Errorf("resolve state: %w", err)
	}

	decision := r.limiter.Evaluate(ctx, cmd, user)
	if !decision.Allowed() {
		log.Debug("Command gated", "state", decision.State, "seconds_remaining", decision.SecondsRemaining)
		metrics.CommandsHandled.WithLabelValues(cmd.Name, decision.State.String()).Inc()
		return domain.Outcome{Command: cmd.Name, Gate: decision}, nil
	}

	out, err := rt.handler(ctx, &Request{Command: cmd, Guild: guild, User: user, Log: log})
	out.Command = cmd.Name
	out.Gate = decision
	if err != nil {
		log.Info("Command rejected", "error", err)
		metrics.CommandsHandled.WithLabelValues(cmd.Name, "error").Inc()
		return out, err
	}

	metrics.CommandsHandled.WithLabelValues(cmd.Name, "ok").Inc()
	return out, nil
}

// Usage lists every registered command with its argument synopsis.
func (r *CommandRouter) Usage() []string {
	lines := make([]string, 0, len(r.routes))
	for name, rt := range r.routes {
		if rt.usage == "" {
			lines = append(lines, name)
			continue
		}
		lines = append(lines, name+" "+rt.usage)
	}
	sort.Strings(lines)
	return lines
}

func (r *CommandRouter) registerBuiltins() {
	r.Register("drop", "[game]", r.drop(""))
	r.Register("fortnite", "", r.drop(domain.GameFortnite))
	r.Register("apex", "", r.drop(domain.GameApex))
	r.Register("weights", "[game]", r.weights)
	r.Register("set-weight", "<game> <location> <weight>", r.setWeight)
	r.Register("reset", "", r.reset)
	r.Register("mute", "", r.setMuted(true))
	r.Register("unmute", "", r.setMuted(false))
	r.Register("default-game", "<game>", r.setDefaultGame)
	r.Register("settings", "", r.settings)
	r.Register("help", "", r.help)
	r.Register("info", "", r.info)
	r.Register("stop", "", r.stop)
	r.Register("block", "<user>", r.setBlocked(true))
	r.Register("unblock", "<user>", r.setBlocked(false))
	r.Register("toggle", "<strikes|votes> <on|off>", r.toggle)
}

// gameArg resolves an optional game argument, falling back to the guild's
// default game.
func gameArg(req *Request, i int) (domain.Game, error) {
	if arg := req.Command.Arg(i); arg != "" {
		return domain.ParseGame(arg)
	}
	return req.Guild.DefaultGame(), nil
}

func (r *CommandRouter) drop(fixed domain.Game) Handler {
	return func(ctx context.Context, req *Request) (domain.Outcome, error) {
		game := fixed
		if game == "" {
			var err error
			if game, err = gameArg(req, 0); err != nil {
				return domain.Outcome{}, err
			}
		}

		res, notice, err := r.guilds.Draw(req.Guild, game)
		if err != nil {
			req.Log.Error("Draw failed", "game", game, "error", err)
			return domain.Outcome{}, fmt.Errorf("draw %s: %w", game, err)
		}
		return domain.Outcome{Drop: &res, UpdateNotice: notice}, nil
	}
}

func (r *CommandRouter) weights(ctx context.Context, req *Request) (domain.Outcome, error) {
	game, err := gameArg(req, 0)
	if err != nil {
		return domain.Outcome{}, err
	}
	view, err := r.guilds.Weights(req.Guild, game)
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.Outcome{Weights: &view}, nil
}

func (r *CommandRouter) setWeight(ctx context.Context, req *Request) (domain.Outcome, error) {
	cmd := req.Command
	if len(cmd.Args) < 3 {
		return domain.Outcome{}, fmt.Errorf("%w: usage: set-weight <game> <location> <weight>", domain.ErrInvalidArgument)
	}

	game, err := domain.ParseGame(cmd.Arg(0))
	if err != nil {
		return domain.Outcome{}, err
	}
	index, err := r.guilds.Catalog().Lookup(game, cmd.Arg(1))
	if err != nil {
		return domain.Outcome{}, err
	}
	weight, err := strconv.Atoi(strings.TrimSpace(cmd.Arg(2)))
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("%w: weight %q is not a number", domain.ErrInvalidArgument, cmd.Arg(2))
	}

	res := r.guilds.SetWeight(req.Guild, game, index, weight)
	if res.Accepted {
		req.Log.Info("Weight updated", "game", game, "location", index, "weight", weight, "total", res.NewTotal)
	}
	return domain.Outcome{Weight: &res}, nil
}

func (r *CommandRouter) reset(ctx context.Context, req *Request) (domain.Outcome, error) {
	g := r.guilds.Reset(req.Guild)
	req.Log.Info("Guild settings reset")
	return domain.Outcome{Settings: settingsOf(g)}, nil
}

func (r *CommandRouter) setMuted(muted bool) Handler {
	return func(ctx context.Context, req *Request) (domain.Outcome, error) {
		r.guilds.SetMuted(req.Guild, muted)
		return domain.Outcome{Settings: settingsOf(req.Guild)}, nil
	}
}

func (r *CommandRouter) setDefaultGame(ctx context.Context, req *Request) (domain.Outcome, error) {
	arg := req.Command.Arg(0)
	if arg == "" {
		return domain.Outcome{}, fmt.Errorf("%w: usage: default-game <game>", domain.ErrInvalidArgument)
	}
	game, err := domain.ParseGame(arg)
	if err != nil {
		return domain.Outcome{}, err
	}
	if err := r.guilds.SetDefaultGame(req.Guild, game); err != nil {
		return domain.Outcome{}, err
	}
	return domain.Outcome{Settings: settingsOf(req.Guild)}, nil
}

func (r *CommandRouter) settings(ctx context.Context, req *Request) (domain.Outcome, error) {
	return domain.Outcome{Settings: settingsOf(req.Guild)}, nil
}

func (r *CommandRouter) help(ctx context.Context, req *Request) (domain.Outcome, error) {
	return domain.Outcome{Message: "Commands:\n" + strings.Join(r.Usage(), "\n")}, nil
}

func (r *CommandRouter) info(ctx context.Context, req *Request) (domain.Outcome, error) {
	p := r.limiter.Policy()
	msg := fmt.Sprintf(
		"Guilds cached: %d (%d loading)\nUsers cached: %d (%d loading)\nVoter cooldown: %ds\nNon-voter cooldown: %ds\nStrike system: %s\nVote system: %s",
		r.guilds.Cached(), r.guilds.Loading(), r.users.Cached(), r.users.Loading(), p.VoteTimeoutSec, p.NoVoteTimeoutSec,
		onOff(p.StrikesEnabled), onOff(p.VotesEnabled),
	)
	return domain.Outcome{Message: msg}, nil
}

// stop has nothing to interrupt without audio playback; it only acknowledges.
func (r *CommandRouter) stop(ctx context.Context, req *Request) (domain.Outcome, error) {
	return domain.Outcome{Message: "Stopped."}, nil
}

func (r *CommandRouter) setBlocked(blocked bool) Handler {
	return func(ctx context.Context, req *Request) (domain.Outcome, error) {
		if !r.limiter.Policy().IsDeveloper(req.Command.CallerID) {
			return domain.Outcome{}, domain.ErrNotPermitted
		}
		target := req.Command.Arg(0)
		if target == "" {
			return domain.Outcome{}, fmt.Errorf("%w: a user is required", domain.ErrInvalidArgument)
		}

		changed, err := r.users.SetBlocked(ctx, target, blocked)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("set blocked: %w", err)
		}

		verb := "unblocked"
		if blocked {
			verb = "blocked"
		}
		if !changed {
			return domain.Outcome{Message: fmt.Sprintf("User %s was already %s.", target, verb)}, nil
		}
		req.Log.Info("User block state changed", "target", target, "blocked", blocked)
		return domain.Outcome{Message: fmt.Sprintf("User %s %s.", target, verb)}, nil
	}
}

func (r *CommandRouter) toggle(ctx context.Context, req *Request) (domain.Outcome, error) {
	p := r.limiter.Policy()
	if !p.IsDeveloper(req.Command.CallerID) {
		return domain.Outcome{}, domain.ErrNotPermitted
	}

	enabled, err := strconv.ParseBool(normalizeSwitch(req.Command.Arg(1)))
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("%w: expected on or off, got %q", domain.ErrInvalidArgument, req.Command.Arg(1))
	}

	switch strings.ToLower(req.Command.Arg(0)) {
	case "strikes":
		p.StrikesEnabled = enabled
	case "votes":
		p.VotesEnabled = enabled
	default:
		return domain.Outcome{}, fmt.Errorf("%w: unknown system %q", domain.ErrInvalidArgument, req.Command.Arg(0))
	}

	r.limiter.SetPolicy(p)
	req.Log.Info("Policy updated", "strikes", p.StrikesEnabled, "votes", p.VotesEnabled)
	return domain.Outcome{Message: fmt.Sprintf("Strike system: %s\nVote system: %s", onOff(p.StrikesEnabled), onOff(p.VotesEnabled))}, nil
}

func settingsOf(g *domain.GuildState) *domain.GuildSettings {
	return &domain.GuildSettings{DefaultGame: g.DefaultGame(), AudioMuted: g.AudioMuted()}
}

func normalizeSwitch(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "enable", "enabled", "yes":
		return "true"
	case "off", "disable", "disabled", "no":
		return "false"
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
