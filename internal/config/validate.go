package config

import (
	"errors"
	"fmt"
	"time"
)

// Validation constants define acceptable bounds for configuration values
const (
	// Token validation
	minTokenLength = 50 // Discord tokens are typically 50+ characters

	// Cooldowns, in seconds
	minVoteTimeout   = 1
	maxVoteTimeout   = 3600
	maxNoVoteTimeout = 24 * 3600

	minMaxStrikes = 1
	maxMaxStrikes = 1000

	minPersistWorkers = 1
	maxPersistWorkers = 64

	minTimeout        = 100 * time.Millisecond
	maxPersistTimeout = time.Minute
	maxVoteCheck      = 30 * time.Second
)

// Validate checks if the configuration values are valid and within acceptable ranges.
// It returns all validation errors at once using errors.Join.
//
// Validated fields:
//   - Token: at least 50 characters (Discord token format)
//   - Cooldowns: voter between 1s and 1h, non-voter between the voter cooldown and 24h
//   - MaxStrikes: between 1 and 1000
//   - Vote system: requires TOPGG_TOKEN and TOPGG_BOT_ID while enabled
//   - Persistence: 1 to 64 workers, write timeout between 100ms and 1m
//   - Snowflake ids: numeric when set
func (c *Config) Validate() error {
	var errs []error

	if err := c.validateToken(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateCooldowns(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateStrikes(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateVoteSystem(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validatePersistence(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateSnowflakes(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %w", errors.Join(errs...))
	}

	return nil
}

// validateToken ensures the Discord token is present and has valid length
func (c *Config) validateToken() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required but not set")
	}

	if len(c.Token) < minTokenLength {
		return fmt.Errorf(
			"DISCORD_TOKEN appears invalid (too short: %d chars, expected %d+)",
			len(c.Token), minTokenLength,
		)
	}

	return nil
}

func (c *Config) validateCooldowns() error {
	if c.VoteTimeoutSec < minVoteTimeout || c.VoteTimeoutSec > maxVoteTimeout {
		return fmt.Errorf(
			"VOTE_USER_TIMEOUT_SEC must be between %d and %d, got %d",
			minVoteTimeout, maxVoteTimeout, c.VoteTimeoutSec,
		)
	}

	if c.NoVoteTimeoutSec < c.VoteTimeoutSec || c.NoVoteTimeoutSec > maxNoVoteTimeout {
		return fmt.Errorf(
			"NO_VOTE_USER_TIMEOUT_SEC must be between VOTE_USER_TIMEOUT_SEC (%d) and %d, got %d",
			c.VoteTimeoutSec, maxNoVoteTimeout, c.NoVoteTimeoutSec,
		)
	}

	return nil
}

func (c *Config) validateStrikes() error {
	if c.MaxStrikes < minMaxStrikes || c.MaxStrikes > maxMaxStrikes {
		return fmt.Errorf(
			"MAX_STRIKES must be between %d and %d, got %d",
			minMaxStrikes, maxMaxStrikes, c.MaxStrikes,
		)
	}
	return nil
}

// validateVoteSystem ensures the vote checker can be built while the vote
// system is on
func (c *Config) validateVoteSystem() error {
	if !c.VoteSystemEnabled {
		return nil
	}

	var errs []error
	if c.TopGGToken == "" {
		errs = append(errs, fmt.Errorf("TOPGG_TOKEN is required while VOTE_SYSTEM_ENABLED is true"))
	}
	if c.TopGGBotID == "" {
		errs = append(errs, fmt.Errorf("TOPGG_BOT_ID is required while VOTE_SYSTEM_ENABLED is true"))
	}
	if c.VoteCheckTimeout < minTimeout || c.VoteCheckTimeout > maxVoteCheck {
		errs = append(errs, fmt.Errorf(
			"VOTE_CHECK_TIMEOUT must be between %v and %v, got %v",
			minTimeout, maxVoteCheck, c.VoteCheckTimeout,
		))
	}

	return errors.Join(errs...)
}

func (c *Config) validatePersistence() error {
	var errs []error

	if c.PersistWorkers < minPersistWorkers || c.PersistWorkers > maxPersistWorkers {
		errs = append(errs, fmt.Errorf(
			"PERSIST_WORKERS must be between %d and %d, got %d",
			minPersistWorkers, maxPersistWorkers, c.PersistWorkers,
		))
	}

	if c.PersistTimeout < minTimeout || c.PersistTimeout > maxPersistTimeout {
		errs = append(errs, fmt.Errorf(
			"PERSIST_TIMEOUT must be between %v and %v, got %v",
			minTimeout, maxPersistTimeout, c.PersistTimeout,
		))
	}

	return errors.Join(errs...)
}

func (c *Config) validateSnowflakes() error {
	var errs []error

	for _, f := range []struct{ name, value string }{
		{"DISCORD_GUILD_ID", c.DiscordGuildID},
		{"DEVELOPER_ID", c.DeveloperID},
		{"TOPGG_BOT_ID", c.TopGGBotID},
	} {
		if err := validateSnowflake(f.name, f.value); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// validateSnowflake accepts an empty value or a numeric Discord id
func validateSnowflake(fieldName, value string) error {
	if value == "" {
		return nil
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return fmt.Errorf("%s must be a numeric Discord id, got %q", fieldName, value)
		}
	}
	return nil
}
