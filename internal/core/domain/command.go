package domain

import "time"

// Command is one parsed invocation delivered by the chat transport.
type Command struct {
	Name                string
	Args                []string
	CallerID            string
	CallerName          string
	CallerDiscriminator string
	GuildID             string
	GuildName           string
	ChannelID           string
	Timestamp           time.Time
}

func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

type GateState int

const (
	GateAllowed GateState = iota
	GateRateLimited
	GateWarnedNonVoter
	GateBlocked
)

func (s GateState) String() string {
	switch s {
	case GateAllowed:
		return "allowed"
	case GateRateLimited:
		return "rate_limited"
	case GateWarnedNonVoter:
		return "warned_non_voter"
	case GateBlocked:
		return "blocked"
	}
	return "unknown"
}

// Decision is the rate limiter's verdict for one command attempt.
type Decision struct {
	State            GateState
	SecondsRemaining int
	// VoteAcknowledged is set when a recheck found a fresh vote on this attempt.
	VoteAcknowledged bool
	BecameBlocked    bool
	Strikes          int
}

func (d Decision) Allowed() bool {
	return d.State == GateAllowed
}

type DropResult struct {
	Game          Game
	LocationIndex int
	LocationName  string
	ChancePercent float64
}

type WeightResult struct {
	Game          Game
	LocationIndex int
	LocationName  string
	Weight        int
	NewTotal      int
	Accepted      bool
	Reason        error
}

type LocationChance struct {
	Index         int
	Name          string
	Weight        int
	ChancePercent float64
}

type WeightsView struct {
	Game      Game
	Total     int
	Locations []LocationChance
}

type GuildSettings struct {
	DefaultGame Game
	AudioMuted  bool
}

// Outcome is what the core hands back to the presentation layer. Gate is
// always set; at most one of the result fields is.
type Outcome struct {
	Command      string
	Gate         Decision
	Drop         *DropResult
	Weight       *WeightResult
	Weights      *WeightsView
	Settings     *GuildSettings
	Message      string
	UpdateNotice bool
}
