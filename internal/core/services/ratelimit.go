package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"drop-bot/internal/adapters/metrics"
	"drop-bot/internal/core/domain"
	"drop-bot/internal/core/ports"
)

const defaultVoteTimeout = 3 * time.Second

// Policy holds the tunables of the rate limiter. It is replaced as a whole.
type Policy struct {
	VoteTimeoutSec   int
	NoVoteTimeoutSec int
	MaxStrikes       int
	StrikesEnabled   bool
	VotesEnabled     bool
	// DeveloperID is never rate limited or blocked.
	DeveloperID string
	// FloorExempt commands always use a one second interval.
	FloorExempt map[string]bool
}

func DefaultFloorExempt() map[string]bool {
	return map[string]bool{"stop": true, "help": true, "info": true}
}

func (p Policy) IsDeveloper(userID string) bool {
	return p.DeveloperID != "" && userID == p.DeveloperID
}

func (p Policy) requiredInterval(command string, voter bool) int {
	if p.FloorExempt[command] {
		return 1
	}
	if voter {
		return p.VoteTimeoutSec
	}
	return p.NoVoteTimeoutSec
}

// RateLimiter decides for every command attempt whether the caller is
// allowed, rate limited or blocked, rechecking votes for non-voters.
type RateLimiter struct {
	policy      atomic.Pointer[Policy]
	users       *UserService
	votes       ports.VoteChecker
	voteTimeout time.Duration
}

func NewRateLimiter(policy Policy, users *UserService, votes ports.VoteChecker, voteTimeout time.Duration) *RateLimiter {
	if voteTimeout <= 0 {
		voteTimeout = defaultVoteTimeout
	}
	l := &RateLimiter{
		users:       users,
		votes:       votes,
		voteTimeout: voteTimeout,
	}
	l.SetPolicy(policy)
	return l
}

func (l *RateLimiter) Policy() Policy {
	return *l.policy.Load()
}

func (l *RateLimiter) SetPolicy(p Policy) {
	if p.FloorExempt == nil {
		p.FloorExempt = DefaultFloorExempt()
	}
	l.policy.Store(&p)
}

// Evaluate runs the gate for one attempt at cmd.Timestamp. On Allowed the
// user's success is already recorded.
//
// Evaluations for one user run one at a time, so concurrent attempts inside a
// window cannot all read the same last command time.
func (l *RateLimiter) Evaluate(ctx context.Context, cmd domain.Command, u *domain.UserState) domain.Decision {
	release, err := u.AcquireGate(ctx)
	if err != nil {
		slog.Warn("Gave up waiting for rate limit gate", "user_id", u.ID(), "error", err)
		d := l.busy(cmd, u)
		metrics.GateDecisions.WithLabelValues(d.State.String()).Inc()
		return d
	}
	defer release()

	d := l.evaluate(ctx, cmd, u)
	metrics.GateDecisions.WithLabelValues(d.State.String()).Inc()
	return d
}

// busy denies an attempt that could not be evaluated in time. It records no
// strike and leaves the window alone.
func (l *RateLimiter) busy(cmd domain.Command, u *domain.UserState) domain.Decision {
	p := l.Policy()
	v := u.View()
	if v.Blocked && !p.IsDeveloper(cmd.CallerID) {
		return domain.Decision{State: domain.GateBlocked, Strikes: v.StrikeCount}
	}
	required := p.requiredInterval(cmd.Name, v.IsVoter || !p.VotesEnabled)
	return domain.Decision{
		State:            domain.GateRateLimited,
		SecondsRemaining: max(required-elapsedSeconds(cmd.Timestamp, v.LastCommand), 1),
	}
}

func (l *RateLimiter) evaluate(ctx context.Context, cmd domain.Command, u *domain.UserState) domain.Decision {
	p := l.Policy()
	now := cmd.Timestamp
	privileged := p.IsDeveloper(cmd.CallerID)
	v := u.View()

	// A block is honoured even while the strike system is switched off.
	if v.Blocked && !privileged {
		return domain.Decision{State: domain.GateBlocked, Strikes: v.StrikeCount}
	}

	voter := v.IsVoter || !p.VotesEnabled
	required := p.requiredInterval(cmd.Name, voter)
	elapsed := elapsedSeconds(now, v.LastCommand)

	if elapsed >= required || privileged {
		l.users.RecordSuccessfulCommand(u, now)
		return domain.Decision{State: domain.GateAllowed}
	}

	if voter {
		return domain.Decision{State: domain.GateRateLimited, SecondsRemaining: required - elapsed}
	}

	if l.hasVoted(ctx, u.ID()) {
		l.users.SetVoter(u, true)
		required = p.requiredInterval(cmd.Name, true)
		if elapsed >= required {
			l.users.RecordSuccessfulCommand(u, now)
			return domain.Decision{State: domain.GateAllowed, VoteAcknowledged: true}
		}
		return domain.Decision{
			State:            domain.GateRateLimited,
			SecondsRemaining: required - elapsed,
			VoteAcknowledged: true,
		}
	}

	d := domain.Decision{State: domain.GateRateLimited, SecondsRemaining: required - elapsed}
	if p.StrikesEnabled {
		d.Strikes, d.BecameBlocked = l.users.RecordStrike(u, p.MaxStrikes)
	} else {
		d.Strikes = v.StrikeCount
	}
	if u.MarkWarned() {
		d.State = domain.GateWarnedNonVoter
	}

	// A denied attempt still restarts the window.
	u.Touch(now)
	l.users.Save(u, "denied")

	return d
}

func (l *RateLimiter) hasVoted(ctx context.Context, userID string) bool {
	if l.votes == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, l.voteTimeout)
	defer cancel()

	voted, err := l.votes.HasVoted(ctx, userID)
	if err != nil {
		slog.Warn("Vote check failed, treating user as not voted", "user_id", userID, "error", err)
		metrics.VoteChecks.WithLabelValues("error").Inc()
		return false
	}
	if voted {
		metrics.VoteChecks.WithLabelValues("voted").Inc()
	} else {
		metrics.VoteChecks.WithLabelValues("not_voted").Inc()
	}
	return voted
}

// elapsedSeconds rounds up to whole seconds and treats exactly one second as
// zero, absorbing delivery delay right at the boundary.
func elapsedSeconds(now, last time.Time) int {
	ms := now.Sub(last).Milliseconds()
	if ms <= 0 {
		return 0
	}
	elapsed := int((ms + 999) / 1000)
	if elapsed == 1 {
		return 0
	}
	return elapsed
}
