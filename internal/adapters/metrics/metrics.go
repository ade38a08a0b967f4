package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dropbot_commands_total",
		Help: "Total number of commands handled",
	}, []string{"command", "status"})

	GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dropbot_gate_decisions_total",
		Help: "Rate limiter decisions by resulting state",
	}, []string{"state"})

	StrikesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dropbot_strikes_total",
		Help: "Total number of strikes recorded against users",
	})

	UsersBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dropbot_users_blocked_total",
		Help: "Total number of users blocked by the strike system",
	})

	VoteChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dropbot_vote_checks_total",
		Help: "Vote rechecks by result",
	}, []string{"result"})

	Drops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dropbot_drops_total",
		Help: "Total number of drop locations selected",
	}, []string{"game"})

	PersistenceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dropbot_persistence_writes_total",
		Help: "Asynchronous persistence writes by operation and status",
	}, []string{"op", "status"})

	CachedEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dropbot_cached_entities",
		Help: "Number of guilds and users held in memory",
	}, []string{"kind"})

	TopGGRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "topgg_request_duration_seconds",
		Help:    "Duration of top.gg API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	TopGGRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topgg_requests_total",
		Help: "Total number of top.gg API requests",
	}, []string{"endpoint", "status"})

	DiscordResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discord_responses_total",
		Help: "Total number of interaction responses sent",
	}, []string{"status"})

	DiscordInteractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "discord_interaction_duration_seconds",
		Help:    "Time spent handling an interaction by command, kind and outcome",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"command", "kind", "status"})

	DiscordGuildLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discord_guild_lookups_total",
		Help: "Guild name lookups by source",
	}, []string{"source"})
)
