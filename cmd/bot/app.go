package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"drop-bot/internal/adapters/discord"
	"drop-bot/internal/adapters/discord/commands"
	"drop-bot/internal/adapters/storage/postgres"
	"drop-bot/internal/adapters/topgg"
	"drop-bot/internal/config"
	"drop-bot/internal/core/domain"
	"drop-bot/internal/core/ports"
	"drop-bot/internal/core/services"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	config             *config.Config
	store              ports.Repository
	persister          *services.Persister
	discord            *discordgo.Session
	router             *commands.Router
	commands           []*discordgo.ApplicationCommand
	registeredCommands []*discordgo.ApplicationCommand
	metricsServer      *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	catalog, err := domain.LoadCatalog(cfg.LocationsFile)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}

	store, err := postgres.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate storage: %w", err)
	}

	// A checker is built whenever credentials exist so the vote system can be
	// toggled on at runtime.
	var votes ports.VoteChecker
	if cfg.TopGGToken != "" && cfg.TopGGBotID != "" {
		client, err := topgg.NewClient(cfg.TopGGBaseURL, cfg.TopGGToken, cfg.TopGGBotID)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create top.gg client: %w", err)
		}
		votes = client
	}

	persister := services.NewPersister(cfg.PersistWorkers, cfg.PersistTimeout)
	guilds := services.NewGuildService(store, catalog, persister, nil)
	users := services.NewUserService(store, persister)
	limiter := services.NewRateLimiter(policyFromConfig(cfg), users, votes, cfg.VoteCheckTimeout)
	core := services.NewCommandRouter(guilds, users, limiter)

	session, err := discord.NewSession(cfg)
	if err != nil {
		persister.Close()
		store.Close()
		return nil, err
	}

	names := discord.NewAdapter(session)
	defs := commands.GetApplicationCommands(catalog.MaxWeight)
	handler := commands.NewBotHandler(core, names, catalog, defs)
	router := commands.NewRouter()
	handler.Routes(router)

	session.AddHandler(commands.ReadyHandler)
	session.AddHandler(router.HandleFunc())
	session.AddHandler(names.OnGuildCreate)
	session.AddHandler(names.OnGuildUpdate)
	session.AddHandler(names.OnGuildDelete)

	return &App{
		config:    cfg,
		store:     store,
		persister: persister,
		discord:   session,
		router:    router,
		commands:  defs,
	}, nil
}

func policyFromConfig(cfg *config.Config) services.Policy {
	return services.Policy{
		VoteTimeoutSec:   cfg.VoteTimeoutSec,
		NoVoteTimeoutSec: cfg.NoVoteTimeoutSec,
		MaxStrikes:       cfg.MaxStrikes,
		StrikesEnabled:   cfg.StrikeSystemEnabled,
		VotesEnabled:     cfg.VoteSystemEnabled,
		DeveloperID:      cfg.DeveloperID,
	}
}

func (a *App) Run() error {
	if err := a.discord.Open(); err != nil {
		slog.Error("Failed to open discord session", "error", err)
		return err
	}

	a.registeredCommands = commands.RegisterCommands(a.discord, a.commands, a.discord.State.User.ID, a.config.DiscordGuildID)
	a.startMetricsServer()

	slog.Info("Drop bot started", "commands", a.router.Len(), "guild_scope", a.config.DiscordGuildID)
	return nil
}

func (a *App) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	a.metricsServer = &http.Server{
		Addr:              a.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Metrics server listening", "addr", a.config.MetricsAddr)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
}

// Shutdown stops intake first, then drains pending writes before the pool
// goes away.
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down...")

	var errs []error

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
	}

	if a.discord != nil {
		// Guild scoped commands only exist for development and are removed.
		if a.config.DiscordGuildID != "" && a.discord.State != nil && a.discord.State.User != nil {
			commands.CleanupCommands(a.discord, a.registeredCommands, a.discord.State.User.ID, a.config.DiscordGuildID)
		}
		if err := a.discord.Close(); err != nil {
			errs = append(errs, fmt.Errorf("discord session: %w", err))
		}
	}

	if a.persister != nil {
		a.persister.Close()
	}

	if a.store != nil {
		a.store.Close()
	}

	return errors.Join(errs...)
}
