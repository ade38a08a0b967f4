package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token          string
	DatabaseURL    string
	DiscordGuildID string
	DeveloperID    string

	VoteTimeoutSec      int
	NoVoteTimeoutSec    int
	MaxStrikes          int
	StrikeSystemEnabled bool
	VoteSystemEnabled   bool

	TopGGToken       string
	TopGGBotID       string
	TopGGBaseURL     string
	VoteCheckTimeout time.Duration

	PersistWorkers int
	PersistTimeout time.Duration

	MetricsAddr   string
	LocationsFile string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	token := secretOrEnv("discord_token", "DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is not set (via secret or env var)")
	}

	dbURL := secretOrEnv("database_url", "DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set (via secret or env var)")
	}

	cfg := &Config{
		Token:          token,
		DatabaseURL:    dbURL,
		DiscordGuildID: envString("DISCORD_GUILD_ID", ""),
		DeveloperID:    envString("DEVELOPER_ID", ""),

		VoteTimeoutSec:      envInt("VOTE_USER_TIMEOUT_SEC", 1),
		NoVoteTimeoutSec:    envInt("NO_VOTE_USER_TIMEOUT_SEC", 60),
		MaxStrikes:          envInt("MAX_STRIKES", 10),
		StrikeSystemEnabled: envBool("STRIKE_SYSTEM_ENABLED", true),
		VoteSystemEnabled:   envBool("VOTE_SYSTEM_ENABLED", true),

		TopGGToken:       secretOrEnv("topgg_token", "TOPGG_TOKEN"),
		TopGGBotID:       envString("TOPGG_BOT_ID", ""),
		TopGGBaseURL:     envString("TOPGG_BASE_URL", ""),
		VoteCheckTimeout: envDuration("VOTE_CHECK_TIMEOUT", 3*time.Second),

		PersistWorkers: envInt("PERSIST_WORKERS", 4),
		PersistTimeout: envDuration("PERSIST_TIMEOUT", 5*time.Second),

		MetricsAddr:   envString("METRICS_ADDR", ":2112"),
		LocationsFile: envString("LOCATIONS_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var secretsDir = "/run/secrets/"

func readSecret(name string) string {
	data, err := os.ReadFile(secretsDir + name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// secretOrEnv prefers a Docker secret over the environment variable.
func secretOrEnv(secret, key string) string {
	if v := readSecret(secret); v != "" {
		return v
	}
	return os.Getenv(key)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
